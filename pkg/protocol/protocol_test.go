package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(set map[int]byte) []byte {
	f := make([]byte, CommandFrameLen)
	for i, b := range set {
		f[i] = b
	}
	return f
}

func TestEncodeFanFrames(t *testing.T) {
	tests := []struct {
		name  string
		level int
		want  []byte
	}{
		{"off", 0, frame(map[int]byte{0: 0x01, 1: 0x31, 4: 0x00})},
		{"level 1", 1, frame(map[int]byte{0: 0x01, 1: 0x31, 4: 0x01})},
		{"level 2", 2, frame(map[int]byte{0: 0x01, 1: 0x31, 4: 0x02})},
		{"level 3", 3, frame(map[int]byte{0: 0x01, 1: 0x31, 4: 0x03})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := SetFanLevel(tt.level)
			require.NoError(t, err)

			got, err := Encode(cmd, Snapshot{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, CommandFrameLen)
		})
	}
}

func TestEncodeLightBrightnessPreservesOtherZone(t *testing.T) {
	current := Snapshot{
		Top:    Light{On: true, Brightness: 75},
		Bottom: Light{On: true, Brightness: 40},
	}

	cmd, err := SetLightBrightness(ZoneTop, 80)
	require.NoError(t, err)

	got, err := Encode(cmd, current)
	require.NoError(t, err)

	// Bottom stays at 40% (0x66), top moves to 80% (0xCC).
	assert.Equal(t, frame(map[int]byte{0: 0x01, 1: 0x63, 4: 0x66, 5: 0xCC}), got)
}

func TestEncodeLightBrightnessTreatsOffZoneAsZero(t *testing.T) {
	// A zone that is off must not be turned back on by a command addressed
	// to the other zone, even if it remembers a brightness.
	current := Snapshot{
		Top:    Light{On: false, Brightness: 90},
		Bottom: Light{On: true, Brightness: 40},
	}

	cmd, err := SetLightBrightness(ZoneBottom, 100)
	require.NoError(t, err)

	got, err := Encode(cmd, current)
	require.NoError(t, err)
	assert.Equal(t, frame(map[int]byte{0: 0x01, 1: 0x63, 4: 0xFF, 5: 0x00}), got)
}

func TestEncodeLightPower(t *testing.T) {
	current := Snapshot{
		Top:    Light{On: true, Brightness: 75},
		Bottom: Light{On: false},
	}

	on, err := SetLightPower(ZoneBottom, true)
	require.NoError(t, err)
	got, err := Encode(on, current)
	require.NoError(t, err)
	// On restores full brightness: bottom 100% (0xFF), top preserved at 75% (0xBF).
	assert.Equal(t, frame(map[int]byte{0: 0x01, 1: 0x63, 4: 0xFF, 5: 0xBF}), got)

	off, err := SetLightPower(ZoneTop, false)
	require.NoError(t, err)
	got, err = Encode(off, current)
	require.NoError(t, err)
	assert.Equal(t, frame(map[int]byte{0: 0x01, 1: 0x63, 4: 0x00, 5: 0x00}), got)
}

func TestEncodeColorTempRefusesCommandCharacteristic(t *testing.T) {
	cmd, err := SetLightColorTemp(ZoneTop, 4000)
	require.NoError(t, err)

	_, err = Encode(cmd, Snapshot{})
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestUpdateColorRecord(t *testing.T) {
	record := []byte{0xAA, 0xBB, 0x00, 0x00, 0x00, 0x00, 0x40, 0x80, 0xEE}

	got, err := UpdateColorRecord(record, ZoneTop, 2700)
	require.NoError(t, err)
	// Only byte 7 changes; unknown bytes pass through, including the tail.
	assert.Equal(t, []byte{0xAA, 0xBB, 0x00, 0x00, 0x00, 0x00, 0x40, 0xFF, 0xEE}, got)
	assert.Equal(t, record[7], byte(0x80), "input record must not be mutated")

	got, err = UpdateColorRecord(record, ZoneBottom, 6500)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, 0xEE}, got)
}

func TestUpdateColorRecordRejectsShortRecord(t *testing.T) {
	_, err := UpdateColorRecord([]byte{0x00, 0x01}, ZoneTop, 3000)
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestCommandValidation(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (Command, error)
		wantErr bool
	}{
		{"fan below range", func() (Command, error) { return SetFanLevel(-1) }, true},
		{"fan above range", func() (Command, error) { return SetFanLevel(4) }, true},
		{"fan max ok", func() (Command, error) { return SetFanLevel(3) }, false},
		{"brightness above range", func() (Command, error) { return SetLightBrightness(ZoneTop, 101) }, true},
		{"brightness below range", func() (Command, error) { return SetLightBrightness(ZoneTop, -1) }, true},
		{"brightness zero ok", func() (Command, error) { return SetLightBrightness(ZoneBottom, 0) }, false},
		{"kelvin too warm", func() (Command, error) { return SetLightColorTemp(ZoneTop, 2699) }, true},
		{"kelvin too cool", func() (Command, error) { return SetLightColorTemp(ZoneTop, 6501) }, true},
		{"kelvin bounds ok", func() (Command, error) { return SetLightColorTemp(ZoneBottom, 6500) }, false},
		{"bad zone", func() (Command, error) { return SetLightBrightness(Zone(5), 50) }, true},
		{"bad power zone", func() (Command, error) { return SetLightPower(Zone(-1), true) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCommand)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeStateFullSnapshot(t *testing.T) {
	// Fan level 2, postrun inactive, top light on at 75% and warmest color
	// (wire 0xFF = 2700K), bottom light off.
	status := []byte{0x00, 0x10, 0x10, 0x00, 0x00, 0x00}
	brightness := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0xC0}
	colors := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF}

	snap, err := DecodeState(status, brightness, colors)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.FanLevel)
	assert.False(t, snap.PostrunActive)
	assert.True(t, snap.Top.On)
	assert.Equal(t, 75, snap.Top.Brightness)
	assert.Equal(t, 2700, snap.Top.ColorTempK)
	assert.False(t, snap.Bottom.On)
	assert.Equal(t, 0, snap.Bottom.Brightness)
	assert.Equal(t, 6500, snap.Bottom.ColorTempK)
	assert.False(t, snap.CapturedAt.IsZero())
}

func TestDecodeFanLevels(t *testing.T) {
	tests := []struct {
		name   string
		status []byte
		want   int
	}{
		{"all off", []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, 0},
		{"level 1", []byte{0x10, 0x00, 0x00, 0x00, 0x00, 0x00}, 1},
		{"level 2", []byte{0x00, 0x10, 0x00, 0x00, 0x00, 0x00}, 2},
		{"level 3", []byte{0x00, 0x18, 0x00, 0x00, 0x00, 0x00}, 3},
		{"intensive clamps to 3", []byte{0x00, 0x19, 0x00, 0x00, 0x00, 0x00}, 3},
	}

	brightness := make([]byte, 6)
	colors := make([]byte, 8)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := DecodeState(tt.status, brightness, colors)
			require.NoError(t, err)
			assert.Equal(t, tt.want, snap.FanLevel)
		})
	}
}

func TestDecodePostrun(t *testing.T) {
	brightness := make([]byte, 6)
	colors := make([]byte, 8)

	snap, err := DecodeState([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x90}, brightness, colors)
	require.NoError(t, err)
	assert.True(t, snap.PostrunActive)

	// 0x10 shares a bit with the mask but is not the postrun marker.
	snap, err = DecodeState([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x10}, brightness, colors)
	require.NoError(t, err)
	assert.False(t, snap.PostrunActive)
}

func TestDecodeStateMalformedRecords(t *testing.T) {
	status := make([]byte, 6)
	brightness := make([]byte, 6)
	colors := make([]byte, 8)

	tests := []struct {
		name                       string
		status, brightness, colors []byte
	}{
		{"short status", status[:4], brightness, colors},
		{"short brightness", status, brightness[:3], colors},
		{"short colors", status, brightness, colors[:7]},
		{"empty status", nil, brightness, colors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeState(tt.status, tt.brightness, tt.colors)
			assert.ErrorIs(t, err, ErrMalformedFrame)
		})
	}
}

func TestKelvinRoundTrip(t *testing.T) {
	// Encode a color temperature, decode it from the record position and
	// verify the round trip stays within the wire's 15K quantization step.
	for _, kelvin := range []int{2700, 3000, 4000, 5300, 6500} {
		record := make([]byte, 8)
		updated, err := UpdateColorRecord(record, ZoneTop, kelvin)
		require.NoError(t, err)

		status := make([]byte, 6)
		brightness := make([]byte, 6)
		snap, err := DecodeState(status, brightness, updated)
		require.NoError(t, err)
		assert.InDelta(t, kelvin, snap.Top.ColorTempK, 15, "kelvin %d", kelvin)
	}
}

func TestCommandString(t *testing.T) {
	cmd, err := SetLightBrightness(ZoneBottom, 55)
	require.NoError(t, err)
	assert.Equal(t, "set_light_brightness(bottom, 55%)", cmd.String())

	cmd, err = SetFanLevel(2)
	require.NoError(t, err)
	assert.Equal(t, "set_fan_level(2)", cmd.String())
}
