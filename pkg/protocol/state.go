package protocol

import "time"

// Light is the state of one light zone.
type Light struct {
	On         bool
	Brightness int // 0-100%
	ColorTempK int // 2700-6500 Kelvin
}

// Snapshot is an immutable full-state capture of the hood. Every successful
// read produces a new Snapshot that replaces the previous one; there are no
// partial merges because the device returns full state per read.
type Snapshot struct {
	FanLevel      int // 0-3
	PostrunActive bool
	Top           Light
	Bottom        Light
	CapturedAt    time.Time
}

// DecodeState parses the three state records the hood exposes: the status
// record plus the brightness and color characteristic records. Records that
// are shorter than their fixed layout fail with ErrMalformedFrame.
//
// Status layout: byte 0 flags fan level 1 (0x10), byte 1 carries levels 2-4
// (0x10/0x18/0x19), bytes 2 and 4 carry the light-on mask (0x10), byte 5 the
// postrun mask (0x90). Brightness: bottom at byte 4, top at byte 5 (0-255).
// Colors: bottom at byte 6, top at byte 7 (0=6500K, 255=2700K).
func DecodeState(status, brightness, colors []byte) (Snapshot, error) {
	if len(status) < statusRecordLen {
		return Snapshot{}, malformedFramef("status record is %d bytes, need at least %d", len(status), statusRecordLen)
	}
	if len(brightness) < brightnessRecordLen {
		return Snapshot{}, malformedFramef("brightness record is %d bytes, need at least %d", len(brightness), brightnessRecordLen)
	}
	if len(colors) < colorRecordLen {
		return Snapshot{}, malformedFramef("color record is %d bytes, need at least %d", len(colors), colorRecordLen)
	}

	snap := Snapshot{
		FanLevel:      decodeFanLevel(status),
		PostrunActive: status[statusPostrunByte]&postrunMask == postrunMask,
		Top: Light{
			On:         status[statusLightTopByte]&lightOnMask != 0,
			Brightness: wireToPercent(brightness[brightnessTopByte]),
			ColorTempK: wireToKelvin(colors[colorTopByte]),
		},
		Bottom: Light{
			On:         status[statusLightBotByte]&lightOnMask != 0,
			Brightness: wireToPercent(brightness[brightnessBottomByte]),
			ColorTempK: wireToKelvin(colors[colorBottomByte]),
		},
		CapturedAt: time.Now(),
	}
	return snap, nil
}

func decodeFanLevel(status []byte) int {
	switch {
	case status[statusFanLevel1Byte] == fanLevel1Marker:
		return 1
	case status[statusFanLevel24Byte] == fanLevel2Marker:
		return 2
	case status[statusFanLevel24Byte] == fanLevel3Marker:
		return 3
	case status[statusFanLevel24Byte] == fanLevel4Marker:
		// Intensive level on some firmwares; clamp to the supported range.
		return MaxFanLevel
	default:
		return 0
	}
}
