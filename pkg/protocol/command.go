package protocol

import "fmt"

// Zone identifies one of the hood's two light zones.
type Zone int

const (
	ZoneTop Zone = iota
	ZoneBottom
)

func (z Zone) String() string {
	switch z {
	case ZoneTop:
		return "top"
	case ZoneBottom:
		return "bottom"
	default:
		return fmt.Sprintf("zone(%d)", int(z))
	}
}

func (z Zone) valid() bool {
	return z == ZoneTop || z == ZoneBottom
}

// Kind tags the command variant.
type Kind int

const (
	KindSetFanLevel Kind = iota
	KindSetLightBrightness
	KindSetLightColorTemp
	KindSetLightPower
)

func (k Kind) String() string {
	switch k {
	case KindSetFanLevel:
		return "set_fan_level"
	case KindSetLightBrightness:
		return "set_light_brightness"
	case KindSetLightColorTemp:
		return "set_light_color_temp"
	case KindSetLightPower:
		return "set_light_power"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Command is a validated, immutable control intent. Construct commands
// through the SetXxx constructors; they reject out-of-range values with
// ErrInvalidCommand before any radio I/O happens.
type Command struct {
	kind    Kind
	zone    Zone
	level   int // fan level 0-3
	percent int // brightness 0-100
	kelvin  int // color temperature 2700-6500
	on      bool
}

// SetFanLevel builds a fan speed command (0 = off, 1-3 = speed).
func SetFanLevel(level int) (Command, error) {
	if level < MinFanLevel || level > MaxFanLevel {
		return Command{}, invalidCommandf("fan level %d out of range %d-%d", level, MinFanLevel, MaxFanLevel)
	}
	return Command{kind: KindSetFanLevel, level: level}, nil
}

// SetLightBrightness builds a brightness command for one zone (0-100%).
func SetLightBrightness(zone Zone, percent int) (Command, error) {
	if !zone.valid() {
		return Command{}, invalidCommandf("unknown light zone %d", int(zone))
	}
	if percent < 0 || percent > 100 {
		return Command{}, invalidCommandf("brightness %d%% out of range 0-100", percent)
	}
	return Command{kind: KindSetLightBrightness, zone: zone, percent: percent}, nil
}

// SetLightColorTemp builds a color temperature command for one zone
// (2700-6500 Kelvin).
func SetLightColorTemp(zone Zone, kelvin int) (Command, error) {
	if !zone.valid() {
		return Command{}, invalidCommandf("unknown light zone %d", int(zone))
	}
	if kelvin < MinKelvin || kelvin > MaxKelvin {
		return Command{}, invalidCommandf("color temperature %dK out of range %d-%d", kelvin, MinKelvin, MaxKelvin)
	}
	return Command{kind: KindSetLightColorTemp, zone: zone, kelvin: kelvin}, nil
}

// SetLightPower builds an on/off command for one zone. On restores the zone
// to full brightness, matching the vendor app behavior.
func SetLightPower(zone Zone, on bool) (Command, error) {
	if !zone.valid() {
		return Command{}, invalidCommandf("unknown light zone %d", int(zone))
	}
	return Command{kind: KindSetLightPower, zone: zone, on: on}, nil
}

// Kind reports the command variant.
func (c Command) Kind() Kind { return c.kind }

// Zone reports the target light zone; meaningful for light commands only.
func (c Command) Zone() Zone { return c.zone }

// Kelvin reports the requested color temperature for KindSetLightColorTemp.
func (c Command) Kelvin() int { return c.kelvin }

func (c Command) String() string {
	switch c.kind {
	case KindSetFanLevel:
		return fmt.Sprintf("%s(%d)", c.kind, c.level)
	case KindSetLightBrightness:
		return fmt.Sprintf("%s(%s, %d%%)", c.kind, c.zone, c.percent)
	case KindSetLightColorTemp:
		return fmt.Sprintf("%s(%s, %dK)", c.kind, c.zone, c.kelvin)
	case KindSetLightPower:
		return fmt.Sprintf("%s(%s, %t)", c.kind, c.zone, c.on)
	default:
		return c.kind.String()
	}
}

// Encode renders a command frame for the command characteristic. Light
// commands affect a single zone on the wire by carrying both zone levels in
// one frame, so the other zone's level is preserved from current.
//
// KindSetLightColorTemp is not carried on the command characteristic; encode
// it with UpdateColorRecord against the color characteristic instead.
func Encode(cmd Command, current Snapshot) ([]byte, error) {
	switch cmd.kind {
	case KindSetFanLevel:
		return encodeFanFrame(cmd.level), nil

	case KindSetLightBrightness:
		top, bottom := currentLevels(current)
		if cmd.zone == ZoneTop {
			top = cmd.percent
		} else {
			bottom = cmd.percent
		}
		return encodeLightFrame(top, bottom), nil

	case KindSetLightPower:
		top, bottom := currentLevels(current)
		level := 0
		if cmd.on {
			level = 100
		}
		if cmd.zone == ZoneTop {
			top = level
		} else {
			bottom = level
		}
		return encodeLightFrame(top, bottom), nil

	case KindSetLightColorTemp:
		return nil, invalidCommandf("%s is carried on the color characteristic, not the command characteristic", cmd.kind)

	default:
		return nil, invalidCommandf("unknown command kind %d", int(cmd.kind))
	}
}

// currentLevels extracts the effective brightness per zone from a snapshot;
// a zone that is off contributes 0 so an unrelated command does not turn it
// back on.
func currentLevels(s Snapshot) (top, bottom int) {
	if s.Top.On {
		top = s.Top.Brightness
	}
	if s.Bottom.On {
		bottom = s.Bottom.Brightness
	}
	return top, bottom
}

func encodeLightFrame(topPercent, bottomPercent int) []byte {
	frame := make([]byte, CommandFrameLen)
	frame[0] = frameMarker
	frame[1] = opcodeLight
	frame[cmdBrightnessBottomByte] = percentToWire(bottomPercent)
	frame[cmdBrightnessTopByte] = percentToWire(topPercent)
	return frame
}

func encodeFanFrame(level int) []byte {
	frame := make([]byte, CommandFrameLen)
	frame[0] = frameMarker
	frame[1] = opcodeFan
	frame[cmdFanLevelByte] = byte(level)
	return frame
}

// UpdateColorRecord returns a copy of the color characteristic record with
// the given zone's color byte set to kelvin. The record is read straight off
// the device so unrelated bytes are passed through unchanged.
func UpdateColorRecord(record []byte, zone Zone, kelvin int) ([]byte, error) {
	if !zone.valid() {
		return nil, invalidCommandf("unknown light zone %d", int(zone))
	}
	if kelvin < MinKelvin || kelvin > MaxKelvin {
		return nil, invalidCommandf("color temperature %dK out of range %d-%d", kelvin, MinKelvin, MaxKelvin)
	}
	if len(record) < colorRecordLen {
		return nil, malformedFramef("color record is %d bytes, need at least %d", len(record), colorRecordLen)
	}
	out := make([]byte, len(record))
	copy(out, record)
	if zone == ZoneTop {
		out[colorTopByte] = kelvinToWire(kelvin)
	} else {
		out[colorBottomByte] = kelvinToWire(kelvin)
	}
	return out, nil
}
