package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors for codec failures. Wrapped values carry context and
// remain matchable with errors.Is.
var (
	// ErrInvalidCommand reports a command value outside its declared range.
	// Commands failing this way never reach the radio.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrMalformedFrame reports a characteristic record that cannot be
	// decoded (wrong length or header markers).
	ErrMalformedFrame = errors.New("malformed frame")
)

func invalidCommandf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidCommand, fmt.Sprintf(format, args...))
}

func malformedFramef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedFrame, fmt.Sprintf(format, args...))
}
