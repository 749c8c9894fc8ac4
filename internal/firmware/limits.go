package firmware

// Limits bounds the sizes a Datagram is allowed to request, per negotiated
// firmware version. Every Datagram validates its inputs against these
// during operation generation, before anything is sent.
type Limits struct {
	// ModulationBufSizeMax is the largest amplitude-envelope buffer a
	// single Modulation datagram may write into one segment.
	ModulationBufSizeMax int
	// FociSTMBufSizeMax is the largest number of focal points a single
	// FociSTM datagram may write into one segment.
	FociSTMBufSizeMax int
	// FociSTMFociPerPointMax bounds how many simultaneous foci a single
	// FociSTM sample point may specify.
	FociSTMFociPerPointMax int
	// GainSTMBufSizeMax is the largest number of gain frames a single
	// GainSTM datagram may write into one segment.
	GainSTMBufSizeMax int
	// SilencerStepsMax bounds FixedCompletionSteps.Intensity/Phase.
	SilencerStepsMax uint16
	// PulseWidthEncoderTableSize is the fixed depth of the pulse-width
	// lookup table this version exposes.
	PulseWidthEncoderTableSize int
}

// For returns the numeric limits bound to a negotiated Version.
func For(v Version) Limits {
	switch v {
	case V10:
		return Limits{
			ModulationBufSizeMax:       32000,
			FociSTMBufSizeMax:          8000,
			FociSTMFociPerPointMax:     4,
			GainSTMBufSizeMax:          1024,
			SilencerStepsMax:           65535,
			PulseWidthEncoderTableSize: 256,
		}
	case V11:
		return Limits{
			ModulationBufSizeMax:       65536,
			FociSTMBufSizeMax:          16384,
			FociSTMFociPerPointMax:     8,
			GainSTMBufSizeMax:          1024,
			SilencerStepsMax:           65535,
			PulseWidthEncoderTableSize: 256,
		}
	case V12, V12_1:
		return Limits{
			ModulationBufSizeMax:       65536,
			FociSTMBufSizeMax:          65536,
			FociSTMFociPerPointMax:     8,
			GainSTMBufSizeMax:          2048,
			SilencerStepsMax:           65535,
			PulseWidthEncoderTableSize: 512,
		}
	default:
		return Limits{}
	}
}
