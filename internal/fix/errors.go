package fix

import "fmt"

// ErrorKind discriminates decode failures so callers can branch on the
// failure class rather than matching message text.
type ErrorKind string

const (
	KindMalformedField    ErrorKind = "MALFORMED_FIELD"
	KindChecksumMismatch  ErrorKind = "CHECKSUM_MISMATCH"
	KindUnsupportedFormat ErrorKind = "UNSUPPORTED_FORMAT"
)

// DecodeError is returned for any structurally invalid wire message. A
// failed decode never yields a Message.
type DecodeError struct {
	Kind   ErrorKind
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is matches any DecodeError of the same kind, so
// errors.Is(err, ErrChecksumMismatch) works regardless of detail text.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Kind == e.Kind
}

// Sentinel values for errors.Is checks.
var (
	ErrMalformedField    = &DecodeError{Kind: KindMalformedField}
	ErrChecksumMismatch  = &DecodeError{Kind: KindChecksumMismatch}
	ErrUnsupportedFormat = &DecodeError{Kind: KindUnsupportedFormat}
)

func malformedf(format string, args ...any) *DecodeError {
	return &DecodeError{Kind: KindMalformedField, Detail: fmt.Sprintf(format, args...)}
}

func unsupportedf(format string, args ...any) *DecodeError {
	return &DecodeError{Kind: KindUnsupportedFormat, Detail: fmt.Sprintf(format, args...)}
}
