package hood

import (
	"errors"
	"fmt"
)

// ConnectionState tracks the link lifecycle of one session. The session's
// connection manager is the sole mutator.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateFailed
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNotConnected reports an operation attempted without an established
	// link.
	ErrNotConnected = errors.New("not connected")

	// ErrConnectionExhausted is raised exactly once per connect cycle after
	// the retry budget is spent. The session stays in StateFailed until an
	// explicit reconnect is requested.
	ErrConnectionExhausted = errors.New("connection attempts exhausted")

	// ErrUnsupportedProtocol reports a legacy or unknown device. Permanent
	// for that device; no command or poll traffic is attempted.
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
)

// UnsupportedProtocolError carries a human-readable explanation of why a
// device cannot be driven. It matches ErrUnsupportedProtocol under
// errors.Is.
type UnsupportedProtocolError struct {
	Name     string
	Address  string
	Protocol Protocol
	Reason   string
}

func (e *UnsupportedProtocolError) Error() string {
	name := e.Name
	if name == "" {
		name = e.Address
	}
	return fmt.Sprintf("unsupported protocol: %s device %q: %s", e.Protocol, name, e.Reason)
}

func (e *UnsupportedProtocolError) Is(target error) bool {
	return target == ErrUnsupportedProtocol
}
