package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixsecurity/fixsentry/internal/anomaly"
	"github.com/fixsecurity/fixsentry/internal/compliance"
	"github.com/fixsecurity/fixsentry/internal/fix"
)

// recordingProducer captures what the pipeline hands to the broker.
type recordingProducer struct {
	parsed []*fix.Message
	raw    []string
	fail   bool
}

func (p *recordingProducer) PublishParsed(_ context.Context, msg *fix.Message) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.parsed = append(p.parsed, msg)
	return nil
}

func (p *recordingProducer) PublishRaw(_ context.Context, sessionID, raw string) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.raw = append(p.raw, raw)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func newTestService(producer *recordingProducer) (*Service, *anomaly.Store) {
	logger := zap.NewNop()
	store := anomaly.NewStore()
	return NewService(
		logger,
		fix.NewDecoder(),
		compliance.NewEngine(logger),
		anomaly.NewDetector(store, anomaly.DefaultConfig(), logger),
		producer,
	), store
}

func wireOrder() string {
	fields := []string{
		"8=FIX.4.4", "9=120", "35=D", "49=BANKA", "56=BANKB", "34=1",
		"52=20240101-00:00:00", "55=AAPL", "54=1", "38=100", "44=150.00",
	}
	body := strings.Join(fields, fix.SOH) + fix.SOH
	sum := 0
	for i := 0; i < len(body); i++ {
		sum += int(body[i])
	}
	return body + fmt.Sprintf("10=%03d", sum%256) + fix.SOH
}

func TestProcessEndToEnd(t *testing.T) {
	producer := &recordingProducer{}
	svc, store := newTestService(producer)

	result, err := svc.Process(context.Background(), wireOrder())
	require.NoError(t, err)

	assert.Equal(t, "D", result.Message.MsgType)
	assert.Equal(t, "AAPL", result.Message.Symbol)
	assert.Equal(t, 100.0, result.Message.OrderQty)

	require.Len(t, result.Compliance.Evaluations, 3)
	assert.True(t, result.Compliance.Compliant)

	assert.False(t, result.Anomalies.HasAnomalies)

	snap, ok := store.Snapshot("BANKA-BANKB")
	require.True(t, ok)
	assert.Equal(t, int64(1), snap.MessageCount)
	assert.Equal(t, 1, snap.LastSeqNum)

	require.Len(t, producer.parsed, 1)
	assert.Equal(t, "BANKA", producer.parsed[0].SenderCompID)
	require.Len(t, producer.raw, 1)
	assert.Equal(t, wireOrder(), producer.raw[0])
}

func TestProcessDecodeFailure(t *testing.T) {
	producer := &recordingProducer{}
	svc, store := newTestService(producer)

	_, err := svc.Process(context.Background(), "not a fix message")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fix.ErrMalformedField))

	// Nothing downstream runs for a rejected message.
	assert.Empty(t, producer.parsed)
	assert.Zero(t, store.Len())
}

func TestProcessChecksumFailureKind(t *testing.T) {
	producer := &recordingProducer{}
	svc, _ := newTestService(producer)

	corrupted := strings.Replace(wireOrder(), "55=AAPL", "55=AAPX", 1)
	_, err := svc.Process(context.Background(), corrupted)
	require.Error(t, err)

	var decodeErr *fix.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, fix.KindChecksumMismatch, decodeErr.Kind)
}

func TestProcessSurvivesBrokerOutage(t *testing.T) {
	producer := &recordingProducer{fail: true}
	svc, _ := newTestService(producer)

	result, err := svc.Process(context.Background(), wireOrder())
	require.NoError(t, err, "publish failures never abort the pipeline")
	assert.NotNil(t, result.Compliance)
	assert.NotNil(t, result.Anomalies)
}
