package wire

import "errors"

var (
	// ErrMalformedRequest is the class of every request parse failure.
	ErrMalformedRequest = errors.New("malformed request")

	ErrInvalidUTF8    = newParseError("request is not valid utf-8")
	ErrBadRequestLine = newParseError("request line must have exactly 3 tokens")
	ErrUnknownMethod  = newParseError("unknown method")
	ErrUnknownVersion = newParseError("unknown http version")

	// ErrUnknownStatus is returned when a response carrying StatusUnknown
	// is serialized.
	ErrUnknownStatus = errors.New("status has no wire representation")
)

// parseError unwraps to ErrMalformedRequest so callers can match the whole
// class with a single errors.Is.
type parseError struct {
	msg string
}

func newParseError(msg string) error { return &parseError{msg: msg} }

func (e *parseError) Error() string { return "malformed request: " + e.msg }

func (e *parseError) Unwrap() error { return ErrMalformedRequest }
