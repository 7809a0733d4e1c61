package gatt

import "strings"

// Vendor GATT layout for modern hoods. Commands are 31-byte frames written
// to CharCommand; full state is read from CharStatus, CharBrightness and
// CharColor. Brightness and color are read/write characteristics.
const (
	ServiceHood = "c9cd8c81-331e-4f34-9b73-c613c413a12b"

	CharStatus     = "c9cd8c82-331e-4f34-9b73-c613c413a12b"
	CharCommand    = "c9cd8c84-331e-4f34-9b73-c613c413a12b"
	CharBrightness = "c9cd8c85-331e-4f34-9b73-c613c413a12b"
	CharColor      = "c9cd8c86-331e-4f34-9b73-c613c413a12b"
)

// Legacy (pre-2019) hood layout, detection only. These devices advertise as
// HOOD_PER, expect PIN-prefixed URL-encoded ASCII commands on the RX
// characteristic and broadcast state via manufacturer data. No command
// mapping or state parsing is implemented for them.
const (
	LegacyDeviceName = "HOOD_PER"

	LegacyServiceHood     = "0000ffe0-0000-1000-8000-00805f9b34fb"
	LegacyServiceHood2018 = "0000fff0-0000-1000-8000-00805f9b34fb"

	LegacyCharRX     = "0000ffe1-0000-1000-8000-00805f9b34fb"
	LegacyCharRX2018 = "0000fff1-0000-1000-8000-00805f9b34fb"
	LegacyCharTX     = "0000ffe2-0000-1000-8000-00805f9b34fb"
)

// bluetoothBaseSuffix is the tail of the Bluetooth base UUID
// (0000xxxx-0000-1000-8000-00805f9b34fb) that 16- and 32-bit shorthand
// UUIDs expand onto.
const bluetoothBaseSuffix = "00001000800000805f9b34fb"

// NormalizeUUID converts a UUID string to the internal BLE library format
// (lowercase, no dashes). Accepts dashed and already-normalized input;
// 16- and 32-bit shorthand, as advertisements often carry, is expanded
// onto the Bluetooth base UUID so it compares equal to the full form.
func NormalizeUUID(uuid string) string {
	u := strings.ToLower(strings.ReplaceAll(uuid, "-", ""))
	switch len(u) {
	case 4:
		return "0000" + u + bluetoothBaseSuffix
	case 8:
		return u + bluetoothBaseSuffix
	}
	return u
}

// NormalizeUUIDs normalizes a slice of UUID strings.
func NormalizeUUIDs(uuids []string) []string {
	normalized := make([]string, len(uuids))
	for i, uuid := range uuids {
		normalized[i] = NormalizeUUID(uuid)
	}
	return normalized
}
