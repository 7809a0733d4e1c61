// Package gatt is the transport boundary between the hood session core and
// a physical BLE radio. The hood package talks to Link and Dialer only;
// production code plugs in the go-ble implementation from this package and
// tests plug in fakes.
package gatt

import "context"

// Link is an established GATT connection to one hood. Implementations do
// not serialize callers; the connection manager in pkg/hood guarantees a
// single in-flight operation per link.
type Link interface {
	// Read reads the current value of a characteristic, addressed by
	// normalized UUID.
	Read(ctx context.Context, characteristic string) ([]byte, error)

	// Write writes a payload to a characteristic, addressed by normalized
	// UUID, with response.
	Write(ctx context.Context, characteristic string, payload []byte) error

	// Close releases the link. Safe to call more than once.
	Close() error
}

// Dialer establishes Links to hoods by BLE address. Dial must validate that
// the device exposes the expected service and characteristics and fail with
// ErrProtocolMismatch if it does not; radio-level failures surface as
// ErrDeviceUnreachable.
type Dialer interface {
	Dial(ctx context.Context, address string) (Link, error)
}
