package fix

import "strconv"

// Message is the structured form of one checksum-validated FIX message.
// The decoder is the only writer; everything downstream treats it as a
// read-only value.
type Message struct {
	MsgType      string `json:"msg_type"`
	SenderCompID string `json:"sender_comp_id"`
	TargetCompID string `json:"target_comp_id"`
	MsgSeqNum    int    `json:"msg_seq_num"`
	SendingTime  string `json:"sending_time"`

	// NewOrderSingle (35=D)
	Symbol      string  `json:"symbol,omitempty"`
	Side        string  `json:"side,omitempty"`
	OrderQty    float64 `json:"order_qty,omitempty"`
	Price       float64 `json:"price,omitempty"`
	OrdType     string  `json:"ord_type,omitempty"`
	TimeInForce string  `json:"time_in_force,omitempty"`
	ClOrdID     string  `json:"cl_ord_id,omitempty"`

	// ExecutionReport (35=8)
	OrderID   string  `json:"order_id,omitempty"`
	ExecID    string  `json:"exec_id,omitempty"`
	ExecType  string  `json:"exec_type,omitempty"`
	OrdStatus string  `json:"ord_status,omitempty"`
	LastQty   float64 `json:"last_qty,omitempty"`
	LastPx    float64 `json:"last_px,omitempty"`
	CumQty    float64 `json:"cum_qty,omitempty"`
	AvgPx     float64 `json:"avg_px,omitempty"`

	// Logon (35=A)
	EncryptMethod int    `json:"encrypt_method,omitempty"`
	HeartBtInt    int    `json:"heart_bt_int,omitempty"`
	Username      string `json:"username,omitempty"`

	// Logout (35=5)
	Text string `json:"text,omitempty"`

	// AllFields holds every header and body field keyed by wire tag,
	// whether or not the field was promoted to a named attribute above.
	// The trailer is excluded. When a tag repeats, the last occurrence
	// wins.
	AllFields map[string]string `json:"all_fields"`
}

// SessionID returns the counterparty session key that scopes baseline
// statistics.
func (m *Message) SessionID() string {
	return m.SenderCompID + "-" + m.TargetCompID
}

// GetString returns the raw value for a wire tag, or "" when the field is
// absent.
func (m *Message) GetString(tag string) string {
	return m.AllFields[tag]
}

// GetInt returns the integer value for a wire tag. An absent or
// non-numeric field resolves to 0.
func (m *Message) GetInt(tag string) int {
	n, err := strconv.Atoi(m.AllFields[tag])
	if err != nil {
		return 0
	}
	return n
}

// GetFloat returns the float value for a wire tag. An absent or
// non-numeric field resolves to 0.
func (m *Message) GetFloat(tag string) float64 {
	f, err := strconv.ParseFloat(m.AllFields[tag], 64)
	if err != nil {
		return 0
	}
	return f
}
