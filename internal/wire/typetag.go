package wire

// TypeTag identifies the operation record that follows it in a Tx payload.
// A firmware version that does not recognize a tag rejects the frame with
// AckNotSupportedTag.
type TypeTag uint8

const (
	TagNop                     TypeTag = 0x00
	TagClear                   TypeTag = 0x01
	TagSync                    TypeTag = 0x02
	TagFirmInfo                TypeTag = 0x03
	TagConfigFPGAClock         TypeTag = 0x04
	TagModulation              TypeTag = 0x10
	TagModulationSwapSegment   TypeTag = 0x11
	TagSilencer                TypeTag = 0x21
	TagGain                    TypeTag = 0x30
	TagGainSwapSegment         TypeTag = 0x31
	TagGainSTM                 TypeTag = 0x41
	TagFociSTM                 TypeTag = 0x42
	TagGainSTMSwapSegment      TypeTag = 0x43
	TagFociSTMSwapSegment      TypeTag = 0x44
	TagForceFan                TypeTag = 0x60
	TagReadsFPGAState          TypeTag = 0x61
	TagConfigPulseWidthEncoder TypeTag = 0x72
	TagPhaseCorrection         TypeTag = 0x80
	TagOutputMask              TypeTag = 0x90
	TagDebug                   TypeTag = 0xF0
	TagEmulateGPIOIn           TypeTag = 0xF1
	TagCPUGPIOOut              TypeTag = 0xF2
)

// Flag bits carried in the byte immediately following a multi-frame
// operation's TypeTag (modulation, STM, pulse-width-encoder table).
const (
	FlagBegin  uint8 = 1 << 0
	FlagEnd    uint8 = 1 << 1
	FlagUpdate uint8 = 1 << 2
)
