package contract

import (
	"errors"
	"fmt"
)

// Input parse errors. Every error returned by ParseValue wraps exactly one.
var (
	ErrInputEmpty          = errors.New("this field cannot be empty")
	ErrInvalidInteger      = errors.New("invalid integer")
	ErrInvalidBoolean      = errors.New("invalid boolean")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrMalformedArray      = errors.New("malformed array")
	ErrMalformedStructured = errors.New("malformed structured input")
	ErrMalformedTuple      = errors.New("malformed tuple")
	ErrUnsupportedType     = errors.New("unsupported type")
)

// ParseError describes why a raw text field does not parse as its declared
// type, with an example of input that would.
type ParseError struct {
	Kind    error  // one of the Err* sentinels above
	Type    string // declared type string
	Input   string
	Example string
	Err     error // underlying element or decoder error, if any
}

func (e *ParseError) Error() string {
	if e.Kind == ErrInputEmpty {
		return ErrInputEmpty.Error()
	}
	msg := fmt.Sprintf("%s for type %s: %q", e.Kind, e.Type, e.Input)
	if e.Err != nil {
		msg += " (" + e.Err.Error() + ")"
	}
	if e.Example != "" {
		msg += "\nexample: " + e.Example
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func parseErr(kind error, t Type, input, example string, cause error) *ParseError {
	return &ParseError{Kind: kind, Type: t.String(), Input: input, Example: example, Err: cause}
}
