// Package sampling reconciles the SamplingConfig union (divider, frequency,
// or period) onto the one canonical representation the firmware actually
// stores: an integer divider against the base ultrasound frequency.
package sampling

import (
	"fmt"
	"math"
	"time"

	"github.com/phasedctl/hostdriver/internal/environment"
)

// BasePeriod is the period of one base-frequency cycle: 1/40kHz = 25µs.
const BasePeriod = time.Second / time.Duration(environment.BaseFrequencyHz)

const (
	minDivision = 1
	maxDivision = 65535
)

// Config is a sampling configuration in its canonical divider form: the
// device samples once every Division base-frequency cycles.
type Config struct {
	division uint16
}

// ErrOutOfRange is returned when a requested frequency/period cannot be
// expressed as a divider in [1, 65535], or isn't exactly reachable for the
// non-Nearest constructors.
type ErrOutOfRange struct {
	Reason string
}

func (e *ErrOutOfRange) Error() string { return "sampling: " + e.Reason }

// FromDivision builds a Config directly from the canonical divider. n must
// be nonzero.
func FromDivision(n uint16) (Config, error) {
	if n == 0 {
		return Config{}, &ErrOutOfRange{Reason: "division must be nonzero"}
	}
	return Config{division: n}, nil
}

// FromFreq builds a Config from a requested sampling frequency in Hz. The
// frequency must divide the base frequency exactly and land on an integer
// divider in range; otherwise use FromFreqNearest.
func FromFreq(hz float64) (Config, error) {
	if hz <= 0 {
		return Config{}, &ErrOutOfRange{Reason: fmt.Sprintf("frequency %g Hz must be positive", hz)}
	}
	raw := float64(environment.BaseFrequencyHz) / hz
	n := math.Round(raw)
	if math.Abs(raw-n) > 1e-9*math.Max(1, raw) {
		return Config{}, &ErrOutOfRange{Reason: fmt.Sprintf("frequency %g Hz is not exactly reachable", hz)}
	}
	return fromExactDivision(n)
}

// FromPeriod builds a Config from a requested sampling period. The period
// must be an exact integer multiple of BasePeriod and in range; otherwise
// use FromPeriodNearest.
func FromPeriod(d time.Duration) (Config, error) {
	if d <= 0 {
		return Config{}, &ErrOutOfRange{Reason: "period must be positive"}
	}
	if d%BasePeriod != 0 {
		return Config{}, &ErrOutOfRange{Reason: fmt.Sprintf("period %s is not an exact multiple of the base period %s", d, BasePeriod)}
	}
	return fromExactDivision(float64(d / BasePeriod))
}

func fromExactDivision(n float64) (Config, error) {
	if n < minDivision || n > maxDivision {
		return Config{}, &ErrOutOfRange{Reason: fmt.Sprintf("divider %g out of range [%d, %d]", n, minDivision, maxDivision)}
	}
	return Config{division: uint16(n)}, nil
}

func clampDivision(n float64) uint16 {
	if n < minDivision {
		return minDivision
	}
	if n > maxDivision {
		return maxDivision
	}
	return uint16(math.Round(n))
}

// FromFreqNearest rounds the requested frequency to the nearest reachable
// divider, clamping to [1, 65535].
func FromFreqNearest(hz float64) Config {
	if hz <= 0 {
		return Config{division: maxDivision}
	}
	raw := float64(environment.BaseFrequencyHz) / hz
	return Config{division: clampDivision(raw)}
}

// FromPeriodNearest rounds the requested period to the nearest reachable
// divider, clamping to [1, 65535].
func FromPeriodNearest(d time.Duration) Config {
	if d <= 0 {
		return Config{division: minDivision}
	}
	raw := float64(d) / float64(BasePeriod)
	return Config{division: clampDivision(raw)}
}

// Division returns the canonical divider N.
func (c Config) Division() uint16 { return c.division }

// Freq returns the sampling frequency in Hz implied by the divider.
func (c Config) Freq() float64 {
	return float64(environment.BaseFrequencyHz) / float64(c.division)
}

// Period returns the sampling period implied by the divider.
func (c Config) Period() time.Duration {
	return BasePeriod * time.Duration(c.division)
}

// Equal compares two configs by their canonical divider, the only form the
// Silencer interlock and segment logic ever consult.
func (c Config) Equal(other Config) bool {
	return c.division == other.division
}

// IntoNearest is idempotent: rounding an already-canonical Config changes
// nothing, since it is already an exact divider.
func (c Config) IntoNearest() Config {
	return c
}
