package gatt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUUID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"dashed lowercase", "c9cd8c81-331e-4f34-9b73-c613c413a12b", "c9cd8c81331e4f349b73c613c413a12b"},
		{"dashed uppercase", "C9CD8C81-331E-4F34-9B73-C613C413A12B", "c9cd8c81331e4f349b73c613c413a12b"},
		{"already normalized", "c9cd8c81331e4f349b73c613c413a12b", "c9cd8c81331e4f349b73c613c413a12b"},
		{"16-bit shorthand expands", "FFE0", "0000ffe000001000800000805f9b34fb"},
		{"32-bit shorthand expands", "0000FFF0", "0000fff000001000800000805f9b34fb"},
		{"shorthand matches full form", "FFE0", NormalizeUUID(LegacyServiceHood)},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeUUID(tt.input))
		})
	}
}

func TestNormalizeUUIDs(t *testing.T) {
	got := NormalizeUUIDs([]string{ServiceHood, "FFE0"})
	assert.Equal(t, []string{"c9cd8c81331e4f349b73c613c413a12b", "0000ffe000001000800000805f9b34fb"}, got)

	assert.Empty(t, NormalizeUUIDs(nil))
}

func TestMismatchErrorMatchesSentinel(t *testing.T) {
	err := &MismatchError{Resource: "characteristic", UUID: CharCommand}
	assert.ErrorIs(t, err, ErrProtocolMismatch)
	assert.Contains(t, err.Error(), CharCommand)
}
