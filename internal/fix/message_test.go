package fix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionID(t *testing.T) {
	msg := &Message{SenderCompID: "BANKA", TargetCompID: "BANKB"}
	assert.Equal(t, "BANKA-BANKB", msg.SessionID())
}

func TestMessageTypedGetters(t *testing.T) {
	d := NewDecoder()
	msg, err := d.Decode(wire(
		"8=FIX.4.4", "9=80", "35=D", "49=BANKA", "56=BANKB", "34=12",
		"52=20240101-00:00:00", "55=AAPL", "54=1", "38=250", "44=99.25",
	))
	require.NoError(t, err)

	assert.Equal(t, "AAPL", msg.GetString(TagSymbol))
	assert.Equal(t, 250, msg.GetInt(TagOrderQty))
	assert.Equal(t, 99.25, msg.GetFloat(TagPrice))
	assert.Equal(t, 12, msg.GetInt(TagMsgSeqNum))

	// Absent fields resolve to zero values, never an error.
	assert.Equal(t, "", msg.GetString(TagText))
	assert.Equal(t, 0, msg.GetInt(TagHeartBtInt))
	assert.Equal(t, 0.0, msg.GetFloat(TagLastPx))
}
