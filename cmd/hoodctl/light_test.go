package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoodlink/hoodlink/pkg/protocol"
)

func resetLightFlags() {
	lightBrightness = -1
	lightColorTemp = 0
	lightOn = false
	lightOff = false
}

func TestParseZone(t *testing.T) {
	zone, err := parseZone("top")
	require.NoError(t, err)
	assert.Equal(t, protocol.ZoneTop, zone)

	zone, err = parseZone("bottom")
	require.NoError(t, err)
	assert.Equal(t, protocol.ZoneBottom, zone)

	_, err = parseZone("middle")
	assert.Error(t, err)
}

func TestBuildLightCommand(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		wantKind protocol.Kind
		wantErr  bool
	}{
		{
			name:     "brightness",
			setup:    func() { lightBrightness = 60 },
			wantKind: protocol.KindSetLightBrightness,
		},
		{
			name:     "color temperature",
			setup:    func() { lightColorTemp = 4000 },
			wantKind: protocol.KindSetLightColorTemp,
		},
		{
			name:     "power on",
			setup:    func() { lightOn = true },
			wantKind: protocol.KindSetLightPower,
		},
		{
			name:     "power off",
			setup:    func() { lightOff = true },
			wantKind: protocol.KindSetLightPower,
		},
		{
			name:    "no selector",
			setup:   func() {},
			wantErr: true,
		},
		{
			name:    "two selectors",
			setup:   func() { lightBrightness = 60; lightOn = true },
			wantErr: true,
		},
		{
			name:    "on and off together",
			setup:   func() { lightOn = true; lightOff = true },
			wantErr: true,
		},
		{
			name:    "brightness out of range",
			setup:   func() { lightBrightness = 101 },
			wantErr: true,
		},
		{
			name:    "color temperature out of range",
			setup:   func() { lightColorTemp = 9000 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetLightFlags()
			tt.setup()

			cmd, err := buildLightCommand(protocol.ZoneTop)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, cmd.Kind())
		})
	}
}
