package firmware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_VersionFromCPUInfo(t *testing.T) {
	cases := []struct {
		major, minor uint8
		want         Version
		ok           bool
	}{
		{0xA2, 0, V10, true},
		{0xA3, 0, V11, true},
		{0xA4, 0, V12, true},
		{0xA4, 1, V12_1, true},
		{0xA4, 7, V12_1, true},
		{0xFF, 0, 0, false},
	}
	for _, c := range cases {
		got, ok := VersionFromCPUInfo(c.major, c.minor)
		assert.Equal(t, c.ok, ok)
		if c.ok {
			assert.Equal(t, c.want, got)
		}
	}
}

func Test_SupportsNop(t *testing.T) {
	assert.False(t, V10.SupportsNop())
	assert.True(t, V11.SupportsNop())
	assert.True(t, V12.SupportsNop())
	assert.True(t, V12_1.SupportsNop())
}

func Test_SupportsOutputMask(t *testing.T) {
	assert.False(t, V10.SupportsOutputMask())
	assert.False(t, V11.SupportsOutputMask())
	assert.True(t, V12.SupportsOutputMask())
	assert.True(t, V12_1.SupportsOutputMask())
}

func Test_String(t *testing.T) {
	assert.Equal(t, "v10", V10.String())
	assert.Equal(t, "v12.1", V12_1.String())
}

func Test_For_EachVersionHasNonZeroLimits(t *testing.T) {
	for _, v := range []Version{V10, V11, V12, V12_1} {
		l := For(v)
		assert.Positive(t, l.ModulationBufSizeMax)
		assert.Positive(t, l.FociSTMBufSizeMax)
		assert.Positive(t, l.GainSTMBufSizeMax)
		assert.Positive(t, l.PulseWidthEncoderTableSize)
	}
}

func Test_For_V12AndV12_1ShareLimits(t *testing.T) {
	assert.Equal(t, For(V12), For(V12_1))
}
