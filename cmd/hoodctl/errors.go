package main

import (
	"errors"

	"github.com/hoodlink/hoodlink/pkg/gatt"
	"github.com/hoodlink/hoodlink/pkg/hood"
	"github.com/hoodlink/hoodlink/pkg/protocol"
)

// formatUserError maps the library error taxonomy to actionable one-liners;
// anything unrecognized passes through verbatim.
func formatUserError(err error) string {
	switch {
	case errors.Is(err, hood.ErrUnsupportedProtocol):
		return err.Error() + " (legacy hoods use a PIN/ASCII dialect this tool does not speak)"
	case errors.Is(err, hood.ErrConnectionExhausted):
		return err.Error() + " (check that the hood is powered and in radio range, then retry)"
	case errors.Is(err, gatt.ErrProtocolMismatch):
		return err.Error() + " (the device at this address is not a supported hood; re-pair or re-scan)"
	case errors.Is(err, gatt.ErrDeviceUnreachable):
		return err.Error() + " (the hood did not answer; it may be busy with another BLE client)"
	case errors.Is(err, protocol.ErrInvalidCommand):
		return err.Error()
	default:
		return err.Error()
	}
}
