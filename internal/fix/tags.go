package fix

// Standard FIX tag numbers used by the decoder. Tags are kept as strings
// because field maps are keyed by the raw wire tag.
const (
	TagAvgPx         = "6"
	TagBeginString   = "8"
	TagBodyLength    = "9"
	TagCheckSum      = "10"
	TagClOrdID       = "11"
	TagCumQty        = "14"
	TagExecID        = "17"
	TagLastPx        = "31"
	TagLastQty       = "32"
	TagMsgSeqNum     = "34"
	TagMsgType       = "35"
	TagOrderID       = "37"
	TagOrderQty      = "38"
	TagOrdStatus     = "39"
	TagOrdType       = "40"
	TagPossDupFlag   = "43"
	TagPrice         = "44"
	TagSenderCompID  = "49"
	TagSenderSubID   = "50"
	TagSendingTime   = "52"
	TagSide          = "54"
	TagSymbol        = "55"
	TagTargetCompID  = "56"
	TagTargetSubID   = "57"
	TagText          = "58"
	TagTimeInForce   = "59"
	TagPossResend    = "97"
	TagEncryptMethod = "98"
	TagHeartBtInt    = "108"
	TagOnBehalfOf    = "115"
	TagDeliverTo     = "128"
	TagExecType      = "150"
	TagUsername      = "553"
)

// Message types the decoder promotes named fields for. Any other value
// decodes with header fields only, which is not an error.
const (
	MsgTypeNewOrderSingle  = "D"
	MsgTypeExecutionReport = "8"
	MsgTypeLogon           = "A"
	MsgTypeLogout          = "5"
)

// headerTags is the fixed set of standard-header tags. Everything else up
// to the trailer belongs to the body.
var headerTags = map[string]bool{
	TagBeginString:  true,
	TagBodyLength:   true,
	TagMsgSeqNum:    true,
	TagMsgType:      true,
	TagPossDupFlag:  true,
	TagSenderCompID: true,
	TagSenderSubID:  true,
	TagSendingTime:  true,
	TagTargetCompID: true,
	TagTargetSubID:  true,
	TagPossResend:   true,
	TagOnBehalfOf:   true,
	TagDeliverTo:    true,
}
