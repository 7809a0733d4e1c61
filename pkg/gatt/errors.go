package gatt

import (
	"errors"
	"fmt"
)

// Transport error taxonomy. Unreachable is transient and retried by the
// connection manager; mismatch is permanent for the device and never
// retried.
var (
	// ErrDeviceUnreachable reports a radio-level failure: the device did not
	// answer, the link dropped, or the adapter rejected the operation.
	ErrDeviceUnreachable = errors.New("device unreachable")

	// ErrProtocolMismatch reports a device that connected but does not
	// expose the expected hood service or characteristics.
	ErrProtocolMismatch = errors.New("protocol mismatch")
)

// MismatchError carries detail about which GATT resource was missing. It
// matches ErrProtocolMismatch under errors.Is.
type MismatchError struct {
	Resource string // "service" or "characteristic"
	UUID     string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("protocol mismatch: expected %s %q not found", e.Resource, e.UUID)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrProtocolMismatch
}

// unreachable tags a radio-level failure while keeping the cause matchable
// (context cancellation in particular must stay visible to errors.Is).
func unreachable(err error) error {
	return fmt.Errorf("%w: %w", ErrDeviceUnreachable, err)
}
