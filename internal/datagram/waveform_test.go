package datagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phasedctl/hostdriver/internal/sampling"
)

func Test_Sine_150HzAt4kHzSampling_MatchesReferenceSamples(t *testing.T) {
	clock, err := sampling.FromDivision(10) // 40kHz/10 = 4kHz
	require.NoError(t, err)

	s := Sine{FreqHz: 150, Intensity: 255, Offset: 128, Clock: clock}
	buf, err := sineBuffer(s.FreqHz, s.Intensity, s.Offset, s.Phase, s.Clock, s.Clamp)
	require.NoError(t, err)

	require.Len(t, buf, 80)
	want := []uint8{128, 157, 185, 210, 231, 245, 253, 255, 249, 236}
	assert.Equal(t, want, buf[:len(want)])
	assert.EqualValues(t, 128, buf[40], "sample 40 completes one and a half waveform periods back to the offset")
}

func Test_Sine_ZeroOffsetNoClamp_RejectsNegativeSample(t *testing.T) {
	clock, err := sampling.FromDivision(10)
	require.NoError(t, err)
	_, err = sineBuffer(200, 255, 0, 0, clock, false)
	assert.Error(t, err)
}

func Test_Sine_ZeroOffsetWithClamp_ClampsToZero(t *testing.T) {
	clock, err := sampling.FromDivision(10)
	require.NoError(t, err)
	buf, err := sineBuffer(200, 255, 0, 0, clock, true)
	require.NoError(t, err)
	assert.EqualValues(t, 0, buf[15])
}

func Test_Square_200HzDuty0_5At4kHzSampling_TenHighTenLow(t *testing.T) {
	clock, err := sampling.FromDivision(10)
	require.NoError(t, err)

	buf, err := squareBuffer(200, 0, 255, 0.5, clock)
	require.NoError(t, err)
	require.Len(t, buf, 20)
	for i := 0; i < 10; i++ {
		assert.EqualValues(t, 255, buf[i])
	}
	for i := 10; i < 20; i++ {
		assert.EqualValues(t, 0, buf[i])
	}
}

func Test_Square_DutyZero_AllLow(t *testing.T) {
	clock, err := sampling.FromDivision(10)
	require.NoError(t, err)
	buf, err := squareBuffer(200, 0, 255, 0, clock)
	require.NoError(t, err)
	for _, b := range buf {
		assert.EqualValues(t, 0, b)
	}
}

func Test_Square_DutyOne_AllHigh(t *testing.T) {
	clock, err := sampling.FromDivision(10)
	require.NoError(t, err)
	buf, err := squareBuffer(200, 0, 255, 1, clock)
	require.NoError(t, err)
	for _, b := range buf {
		assert.EqualValues(t, 255, b)
	}
}

func Test_Square_RejectsDutyOutOfRange(t *testing.T) {
	clock, err := sampling.FromDivision(10)
	require.NoError(t, err)
	_, err = squareBuffer(200, 0, 255, -0.1, clock)
	assert.Error(t, err)
}

func Test_Sine_Modulation_ProducesValidDatagram(t *testing.T) {
	s := NewSine(150)
	s.Clock, _ = sampling.FromDivision(10)
	m, err := s.Modulation()
	require.NoError(t, err)
	assert.Len(t, m.Buffer, 80)
}

func Test_Square_RejectsFrequencyAtNyquist(t *testing.T) {
	clock, err := sampling.FromDivision(10) // sampling freq 4kHz, Nyquist 2kHz
	require.NoError(t, err)
	_, err = squareBuffer(2000, 0, 255, 0.5, clock)
	assert.Error(t, err)
}
