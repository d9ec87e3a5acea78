package fix

import (
	"strconv"
	"strings"
)

// SOH is the FIX field delimiter byte, as a string for splitting.
const SOH = "\x01"

// Decoder decodes raw tag=value wire messages into Message values. It is
// stateless and safe for concurrent use.
type Decoder struct{}

// NewDecoder creates a wire decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

type rawField struct {
	tag   string
	value string
}

// fields holds the partitioned fields of one message. Lookup checks the
// header first, then falls back to the body; absence at both tiers
// resolves to a zero value, never an error.
type fields struct {
	header map[string]string
	body   map[string]string
}

func (f *fields) getString(tag string) string {
	if v, ok := f.header[tag]; ok {
		return v
	}
	return f.body[tag]
}

func (f *fields) getInt(tag string) int {
	v := f.getString(tag)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func (f *fields) getFloat(tag string) float64 {
	v := f.getString(tag)
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return n
}

// Decode parses a raw FIX message, validates its checksum and builds the
// structured Message. It returns a *DecodeError for malformed fields,
// checksum mismatches, or input that is not recognizable tag=value data.
func (d *Decoder) Decode(raw string) (*Message, error) {
	pairs, err := splitFields(raw)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, unsupportedf("empty message")
	}
	if pairs[0].tag != TagBeginString {
		return nil, unsupportedf("message must start with BeginString (8)")
	}
	trailer := pairs[len(pairs)-1]
	if trailer.tag != TagCheckSum {
		return nil, unsupportedf("missing CheckSum (10) trailer")
	}
	if err := verifyChecksum(raw, trailer.value); err != nil {
		return nil, err
	}

	f := partition(pairs[:len(pairs)-1])
	return buildMessage(f), nil
}

// ValidateChecksum reports whether the trailing CheckSum field matches the
// mod-256 byte sum of everything preceding it. It never returns an error;
// structurally broken input simply validates false.
func (d *Decoder) ValidateChecksum(raw string) bool {
	idx := strings.LastIndex(raw, SOH+TagCheckSum+"=")
	if idx < 0 {
		return false
	}
	transmitted := strings.TrimSuffix(raw[idx+len(SOH+TagCheckSum+"="):], SOH)
	n, err := strconv.Atoi(transmitted)
	if err != nil {
		return false
	}
	return n == checksum(raw[:idx+1])
}

// checksum is the FIX integrity sum: every byte up to and including the
// delimiter before the CheckSum field, modulo 256.
func checksum(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		sum += int(s[i])
	}
	return sum % 256
}

func verifyChecksum(raw, transmitted string) error {
	n, err := strconv.Atoi(transmitted)
	if err != nil {
		return malformedf("invalid CheckSum value %q", transmitted)
	}
	idx := strings.LastIndex(raw, SOH+TagCheckSum+"=")
	if idx < 0 {
		return unsupportedf("missing CheckSum (10) trailer")
	}
	if computed := checksum(raw[:idx+1]); computed != n {
		return &DecodeError{
			Kind:   KindChecksumMismatch,
			Detail: "expected " + strconv.Itoa(computed) + ", got " + transmitted,
		}
	}
	return nil
}

// splitFields breaks the raw text into ordered tag=value pairs. A pair
// without '=' or with a non-numeric tag is a malformed field.
func splitFields(raw string) ([]rawField, error) {
	parts := strings.Split(raw, SOH)
	pairs := make([]rawField, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			// Trailing delimiter after the last field.
			if i == len(parts)-1 {
				continue
			}
			return nil, malformedf("empty field at position %d", i)
		}
		eq := strings.IndexByte(part, '=')
		if eq <= 0 {
			return nil, malformedf("field %q missing tag=value separator", part)
		}
		tag := part[:eq]
		if !isNumeric(tag) {
			return nil, malformedf("non-numeric tag %q", tag)
		}
		pairs = append(pairs, rawField{tag: tag, value: part[eq+1:]})
	}
	return pairs, nil
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// partition splits the ordered pairs (trailer already removed) into the
// fixed standard-header set and the body. Later occurrences of a repeated
// tag overwrite earlier ones.
func partition(pairs []rawField) *fields {
	f := &fields{
		header: make(map[string]string),
		body:   make(map[string]string),
	}
	for _, p := range pairs {
		if headerTags[p.tag] {
			f.header[p.tag] = p.value
		} else {
			f.body[p.tag] = p.value
		}
	}
	return f
}

// buildMessage promotes named fields from the partitioned field set. The
// common header is always promoted; type-specific fields depend on the
// message type. Unknown types keep only the header, which is not an
// error.
func buildMessage(f *fields) *Message {
	msg := &Message{
		MsgType:      f.getString(TagMsgType),
		SenderCompID: f.getString(TagSenderCompID),
		TargetCompID: f.getString(TagTargetCompID),
		MsgSeqNum:    f.getInt(TagMsgSeqNum),
		SendingTime:  f.getString(TagSendingTime),
	}

	switch msg.MsgType {
	case MsgTypeNewOrderSingle:
		msg.Symbol = f.getString(TagSymbol)
		msg.Side = f.getString(TagSide)
		msg.OrderQty = f.getFloat(TagOrderQty)
		msg.Price = f.getFloat(TagPrice)
		msg.OrdType = f.getString(TagOrdType)
		msg.TimeInForce = f.getString(TagTimeInForce)
		msg.ClOrdID = f.getString(TagClOrdID)
	case MsgTypeExecutionReport:
		msg.OrderID = f.getString(TagOrderID)
		msg.ExecID = f.getString(TagExecID)
		msg.ExecType = f.getString(TagExecType)
		msg.OrdStatus = f.getString(TagOrdStatus)
		msg.LastQty = f.getFloat(TagLastQty)
		msg.LastPx = f.getFloat(TagLastPx)
		msg.CumQty = f.getFloat(TagCumQty)
		msg.AvgPx = f.getFloat(TagAvgPx)
	case MsgTypeLogon:
		msg.EncryptMethod = f.getInt(TagEncryptMethod)
		msg.HeartBtInt = f.getInt(TagHeartBtInt)
		msg.Username = f.getString(TagUsername)
	case MsgTypeLogout:
		msg.Text = f.getString(TagText)
	}

	msg.AllFields = make(map[string]string, len(f.header)+len(f.body))
	for tag, v := range f.header {
		msg.AllFields[tag] = v
	}
	for tag, v := range f.body {
		msg.AllFields[tag] = v
	}
	return msg
}
