// Package protocol implements the vendor GATT frame codec for Berbel-style
// range hoods: command frames written to the command characteristic and the
// state records read back from the status, brightness and color
// characteristics. All functions are pure; connection handling lives in
// pkg/hood.
package protocol

// Command frames are fixed 31-byte records.
const CommandFrameLen = 31

// Command frame layout. All frames start with a marker byte followed by an
// opcode; the remainder is zero-padded.
const (
	frameMarker = 0x01

	opcodeLight = 0x63
	opcodeFan   = 0x31

	cmdBrightnessBottomByte = 4
	cmdBrightnessTopByte    = 5
	cmdFanLevelByte         = 4
)

// Status record layout (status characteristic).
const (
	statusFanLevel1Byte  = 0
	statusFanLevel24Byte = 1
	statusLightTopByte   = 2
	statusLightBotByte   = 4
	statusPostrunByte    = 5

	statusRecordLen = 6

	fanLevel1Marker = 0x10
	fanLevel2Marker = 0x10
	fanLevel3Marker = 0x18
	fanLevel4Marker = 0x19

	lightOnMask = 0x10
	postrunMask = 0x90
)

// Brightness and color record layout (their own characteristics).
const (
	brightnessBottomByte = 4
	brightnessTopByte    = 5
	brightnessRecordLen  = 6

	colorBottomByte = 6
	colorTopByte    = 7
	colorRecordLen  = 8
)

// Color temperature range of both light zones. The wire encodes color as a
// single byte where 0x00 is the coolest (6500K) and 0xFF the warmest (2700K).
const (
	MinKelvin = 2700
	MaxKelvin = 6500
)

// Fan level range. Hardware reports an intensive level 4 on some firmwares;
// it is clamped to MaxFanLevel on decode.
const (
	MinFanLevel = 0
	MaxFanLevel = 3
)

// percentToWire scales 0-100% to a 0-255 wire byte, truncating like the
// device firmware does.
func percentToWire(percent int) byte {
	return byte(percent * 255 / 100)
}

// wireToPercent scales a 0-255 wire byte back to 0-100%.
func wireToPercent(b byte) int {
	return int(b) * 100 / 255
}

// kelvinToWire maps a color temperature to the wire code (0=6500K, 255=2700K,
// linear in between).
func kelvinToWire(kelvin int) byte {
	return byte((MaxKelvin - kelvin) * 255 / (MaxKelvin - MinKelvin))
}

// wireToKelvin maps a wire color code back to Kelvin.
func wireToKelvin(b byte) int {
	return MaxKelvin - int(b)*(MaxKelvin-MinKelvin)/255
}
