// Package silencer models the device-side low-pass filter that bounds the
// per-sample change in intensity/phase, and the interlock that keeps it
// from outrunning whatever modulation/STM sampling period is active.
package silencer

import "github.com/phasedctl/hostdriver/internal/sampling"

// WithSampling is implemented by whatever state currently drives output
// (modulation, GainSTM, FociSTM) so the strict interlock can ask it for the
// sampling periods in force.
type WithSampling interface {
	SamplingConfigIntensity() (sampling.Config, bool)
	SamplingConfigPhase() (sampling.Config, bool)
}

// Config is the Silencer datagram's payload: either a fixed update rate (no
// interlock) or a fixed step count subject to the strict interlock.
type Config struct {
	// Mode selects which of the two representations below is meaningful.
	Mode Mode
	// Intensity/Phase are update-rate divisors when Mode==FixedUpdateRate,
	// or completion-step counts when Mode==FixedCompletionSteps.
	Intensity uint16
	Phase     uint16
	// Strict enables the completion-steps-vs-sampling-period interlock.
	// Meaningless when Mode==FixedUpdateRate.
	Strict bool
}

// Mode distinguishes the two SilencerConfig representations.
type Mode uint8

const (
	FixedUpdateRate Mode = iota
	FixedCompletionSteps
)

// Disable returns the permissive silencer used by Sender.close: fixed
// completion steps at the widest allowed value, non-strict, so it can never
// be rejected regardless of what is currently playing.
func Disable(stepsMax uint16) Config {
	return Config{Mode: FixedCompletionSteps, Intensity: stepsMax, Phase: stepsMax, Strict: false}
}

// ErrInvalidSetting is returned when a strict FixedCompletionSteps config
// would outrun the currently active sampling period.
type ErrInvalidSetting struct {
	Reason string
}

func (e *ErrInvalidSetting) Error() string { return "silencer: " + e.Reason }

// Validate checks a FixedCompletionSteps config in strict mode against
// whatever modulation/STM state is currently active. Non-strict configs,
// and FixedUpdateRate configs (which have no constraint vs. sampling),
// always pass.
func (c Config) Validate(active WithSampling) error {
	if c.Mode != FixedCompletionSteps || !c.Strict {
		return nil
	}

	if cfg, ok := active.SamplingConfigIntensity(); ok {
		if c.Intensity > cfg.Division() {
			return &ErrInvalidSetting{Reason: "intensity completion steps exceed active modulation sampling period"}
		}
	}
	if cfg, ok := active.SamplingConfigPhase(); ok {
		if c.Phase > cfg.Division() {
			return &ErrInvalidSetting{Reason: "phase completion steps exceed active STM sampling period"}
		}
	}
	return nil
}
