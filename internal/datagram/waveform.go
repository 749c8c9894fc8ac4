package datagram

import (
	"fmt"
	"math"

	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/sampling"
	"github.com/phasedctl/hostdriver/internal/segment"
)

// Sine builds a sine-wave amplitude envelope: floor(intensity/2 *
// sin(2*pi*freq*t + phase) + offset) at each sample of Clock.
type Sine struct {
	FreqHz     float64
	Intensity  uint8
	Offset     uint8
	Phase      float64
	Clamp      bool
	Clock      sampling.Config
	Segment    segment.Segment
	Loop       segment.LoopBehavior
	Transition segment.TransitionMode
}

// defaultClock is the reference 4kHz sampling rate new waveforms start
// from; BaseFrequencyHz/4000 is always an exact, in-range divider.
var defaultClock = mustClock(sampling.FromDivision(environment.BaseFrequencyHz / 4000))

func mustClock(c sampling.Config, err error) sampling.Config {
	if err != nil {
		panic(err)
	}
	return c
}

// NewSine returns a Sine with the reference defaults: full intensity,
// mid-scale offset, zero phase, clamping disabled, 4kHz sampling.
func NewSine(freqHz float64) Sine {
	return Sine{
		FreqHz:    freqHz,
		Intensity: 255,
		Offset:    0x80,
		Clock:     defaultClock,
	}
}

// Modulation renders the waveform into a Modulation datagram ready to send.
func (s Sine) Modulation() (Modulation, error) {
	buf, err := sineBuffer(s.FreqHz, s.Intensity, s.Offset, s.Phase, s.Clock, s.Clamp)
	if err != nil {
		return Modulation{}, err
	}
	return Modulation{
		Buffer:     buf,
		Clock:      s.Clock,
		Segment:    s.Segment,
		Loop:       s.Loop,
		Transition: s.Transition,
	}, nil
}

// Square builds a duty-cycle square wave: High for the first
// floor(size*Duty) samples of every sampled period, Low for the rest.
type Square struct {
	FreqHz     float64
	Low        uint8
	High       uint8
	Duty       float64
	Clock      sampling.Config
	Segment    segment.Segment
	Loop       segment.LoopBehavior
	Transition segment.TransitionMode
}

// NewSquare returns a Square with the reference defaults: Low=0, High=255,
// Duty=0.5, 4kHz sampling.
func NewSquare(freqHz float64) Square {
	return Square{
		FreqHz: freqHz,
		High:   255,
		Duty:   0.5,
		Clock:  defaultClock,
	}
}

// Modulation renders the waveform into a Modulation datagram ready to send.
func (s Square) Modulation() (Modulation, error) {
	buf, err := squareBuffer(s.FreqHz, s.Low, s.High, s.Duty, s.Clock)
	if err != nil {
		return Modulation{}, err
	}
	return Modulation{
		Buffer:     buf,
		Clock:      s.Clock,
		Segment:    s.Segment,
		Loop:       s.Loop,
		Transition: s.Transition,
	}, nil
}

// maxWaveformSamples bounds the rational period search; a requested
// frequency that needs more samples than this to land exactly on a cycle
// boundary is treated as unreachable at the given sampling rate.
const maxWaveformSamples = 1 << 20

// rationalPeriods reduces freqHz/samplingFreq to lowest terms, returning the
// sample count of one full repeating block (n) and how many waveform
// periods it spans (rep). freqHz is rounded to the nearest microhertz
// before reduction so that integer-Hz inputs (the common case) land on
// exact small fractions.
func rationalPeriods(freqHz float64, division uint16) (n, rep int64, err error) {
	freqScaled := int64(math.Round(freqHz * 1e6))
	denom := int64(environment.BaseFrequencyHz) * 1_000_000
	numerator := freqScaled * int64(division)
	g := gcdInt64(numerator, denom)
	if g == 0 {
		return 0, 0, errs.New(errs.InputOutOfRange, "frequency must not be zero")
	}
	n = denom / g
	rep = numerator / g
	if n <= 0 || n > maxWaveformSamples {
		return 0, 0, errs.New(errs.InputOutOfRange, fmt.Sprintf("frequency %g Hz cannot be exactly reached at this sampling rate", freqHz))
	}
	return n, rep, nil
}

func gcdInt64(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func sineBuffer(freqHz float64, intensity, offset uint8, phase float64, clock sampling.Config, clamp bool) ([]uint8, error) {
	sFreq := clock.Freq()
	if freqHz <= 0 {
		return nil, errs.New(errs.InputOutOfRange, "frequency must be a positive value")
	}
	if freqHz >= sFreq/2 {
		return nil, errs.New(errs.InputOutOfRange, fmt.Sprintf("frequency (%g Hz) is at or above the Nyquist frequency (%g Hz)", freqHz, sFreq/2))
	}
	n, rep, err := rationalPeriods(freqHz, clock.Division())
	if err != nil {
		return nil, err
	}

	buf := make([]uint8, n)
	for i := int64(0); i < n; i++ {
		v := float64(intensity)/2*math.Sin(2*math.Pi*float64(rep*i)/float64(n)+phase) + float64(offset)
		iv := int64(math.Floor(v))
		if iv < 0 || iv > 255 {
			if !clamp {
				return nil, errs.New(errs.InputOutOfRange, fmt.Sprintf("sine modulation value (%d) is out of range [0, 255]", iv))
			}
			if iv < 0 {
				iv = 0
			} else {
				iv = 255
			}
		}
		buf[i] = uint8(iv)
	}
	return buf, nil
}

func squareBuffer(freqHz float64, low, high uint8, duty float64, clock sampling.Config) ([]uint8, error) {
	if duty < 0 || duty > 1 {
		return nil, errs.New(errs.InputOutOfRange, "duty must be in range [0, 1]")
	}
	sFreq := clock.Freq()
	if freqHz <= 0 {
		return nil, errs.New(errs.InputOutOfRange, "frequency must be a positive value")
	}
	if freqHz >= sFreq/2 {
		return nil, errs.New(errs.InputOutOfRange, fmt.Sprintf("frequency (%g Hz) is at or above the Nyquist frequency (%g Hz)", freqHz, sFreq/2))
	}
	n, rep, err := rationalPeriods(freqHz, clock.Division())
	if err != nil {
		return nil, err
	}

	buf := make([]uint8, 0, n)
	for i := int64(0); i < rep; i++ {
		size := (n + i) / rep
		nHigh := int64(float64(size) * duty)
		for j := int64(0); j < nHigh; j++ {
			buf = append(buf, high)
		}
		for j := nHigh; j < size; j++ {
			buf = append(buf, low)
		}
	}
	return buf, nil
}
