package hood

import (
	"strings"

	"github.com/hoodlink/hoodlink/pkg/gatt"
)

// Protocol classifies a hood's GATT dialect.
type Protocol int

const (
	// ProtocolUnknown means the advertisement carried nothing recognizable.
	// Unknown devices are refused just like legacy ones.
	ProtocolUnknown Protocol = iota

	// ProtocolModern is the binary 31-byte frame dialect this package
	// implements.
	ProtocolModern

	// ProtocolLegacy is the pre-2019 HOOD_PER dialect: PIN-prefixed ASCII
	// commands over an RX characteristic, state via advertisement
	// manufacturer data. Detection only; never driven.
	ProtocolLegacy
)

func (p Protocol) String() string {
	switch p {
	case ProtocolModern:
		return "modern"
	case ProtocolLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Advertised names that identify a modern hood.
var modernNameMarkers = []string{"SKE", "BERBEL"}

// Classify derives the protocol dialect from an advertised name and service
// UUID set. Pure; called once at discovery, the result is immutable on the
// DeviceIdentity afterwards.
func Classify(name string, serviceUUIDs []string) Protocol {
	upper := strings.ToUpper(name)
	if strings.Contains(upper, gatt.LegacyDeviceName) {
		return ProtocolLegacy
	}

	legacy := map[string]bool{
		gatt.NormalizeUUID(gatt.LegacyServiceHood):     true,
		gatt.NormalizeUUID(gatt.LegacyServiceHood2018): true,
	}
	modern := gatt.NormalizeUUID(gatt.ServiceHood)
	for _, raw := range serviceUUIDs {
		uuid := gatt.NormalizeUUID(raw)
		if legacy[uuid] {
			return ProtocolLegacy
		}
		if uuid == modern {
			return ProtocolModern
		}
	}

	for _, marker := range modernNameMarkers {
		if strings.Contains(upper, marker) {
			return ProtocolModern
		}
	}
	return ProtocolUnknown
}

// DeviceIdentity describes one physical hood as seen at discovery time.
// Derived once; immutable thereafter.
type DeviceIdentity struct {
	Address      string
	Name         string
	ServiceUUIDs []string
	Protocol     Protocol
}

// NewDeviceIdentity normalizes the advertised service UUIDs and classifies
// the device's protocol dialect.
func NewDeviceIdentity(address, name string, serviceUUIDs []string) DeviceIdentity {
	normalized := gatt.NormalizeUUIDs(serviceUUIDs)
	return DeviceIdentity{
		Address:      address,
		Name:         name,
		ServiceUUIDs: normalized,
		Protocol:     Classify(name, normalized),
	}
}
