package datagram

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/segment"
	"github.com/phasedctl/hostdriver/internal/silencer"
	"github.com/phasedctl/hostdriver/internal/wire"
)

func Test_Silencer_EncodesModeStrictBitAndValues(t *testing.T) {
	geo := testGeo(1)
	d := Silencer{Config: silencer.Config{
		Mode:      silencer.FixedCompletionSteps,
		Intensity: 1234,
		Phase:     5678,
		Strict:    true,
	}}
	gen, err := d.OperationGenerator(geo, environment.Default(), geometry.AllEnabledMask(), firmware.For(firmware.V12), firmware.V12)
	require.NoError(t, err)

	pair := gen.Generate(geo.Device(0))
	require.NotNil(t, pair)

	buf := make([]byte, 16)
	n, err := pair.Op1.Pack(geo.Device(0), buf)
	require.NoError(t, err)
	require.Equal(t, 6, n) // tag + 5-byte body

	assert.Equal(t, byte(wire.TagSilencer), buf[0])
	assert.Equal(t, byte(silencer.FixedCompletionSteps)|0x80, buf[1])
	assert.Equal(t, uint16(1234), binary.LittleEndian.Uint16(buf[2:4]))
	assert.Equal(t, uint16(5678), binary.LittleEndian.Uint16(buf[4:6]))
}

func Test_Silencer_RejectsValuesOverFirmwareMax(t *testing.T) {
	geo := testGeo(1)
	limits := firmware.For(firmware.V12)
	d := Silencer{Config: silencer.Config{Mode: silencer.FixedUpdateRate, Intensity: limits.SilencerStepsMax + 1}}
	_, err := d.OperationGenerator(geo, environment.Default(), geometry.AllEnabledMask(), limits, firmware.V12)
	require.Error(t, err)
}

func Test_SwapSegment_SelectsTagPerTargetKind(t *testing.T) {
	cases := []struct {
		target segment.Kind
		want   wire.TypeTag
	}{
		{segment.KindModulation, wire.TagModulationSwapSegment},
		{segment.KindGain, wire.TagGainSwapSegment},
		{segment.KindGainSTM, wire.TagGainSTMSwapSegment},
		{segment.KindFociSTM, wire.TagFociSTMSwapSegment},
	}
	for _, c := range cases {
		d := SwapSegment{Target: c.target, Transition: segment.ImmediateTransition()}
		assert.Equal(t, c.want, d.tag())
	}
}

func Test_SwapSegment_PacksSegmentAndTransition(t *testing.T) {
	geo := testGeo(1)
	d := SwapSegment{Target: segment.KindModulation, Segment: segment.S1, Transition: segment.SyncIdxTransition()}
	gen, err := d.OperationGenerator(geo, environment.Default(), geometry.AllEnabledMask(), firmware.For(firmware.V12), firmware.V12)
	require.NoError(t, err)

	pair := gen.Generate(geo.Device(0))
	require.NotNil(t, pair)

	buf := make([]byte, 16)
	n, err := pair.Op1.Pack(geo.Device(0), buf)
	require.NoError(t, err)
	assert.Equal(t, byte(wire.TagModulationSwapSegment), buf[0])
	assert.Equal(t, byte(1), buf[1]) // S1
	assert.True(t, pair.Op1.IsDone())
	assert.Equal(t, 1+1+9, n)
}

// Test_SwapSegment_GainRejectsNonImmediateTransition covers scenario 4 from
// the boundary-scenario seeds: Gain supports only an Immediate transition.
func Test_SwapSegment_GainRejectsNonImmediateTransition(t *testing.T) {
	geo := testGeo(1)

	ok := SwapSegment{Target: segment.KindGain, Segment: segment.S0, Transition: segment.ImmediateTransition()}
	_, err := ok.OperationGenerator(geo, environment.Default(), geometry.AllEnabledMask(), firmware.For(firmware.V12), firmware.V12)
	require.NoError(t, err)

	bad := SwapSegment{Target: segment.KindGain, Segment: segment.S0, Transition: segment.ExtTransition()}
	_, err = bad.OperationGenerator(geo, environment.Default(), geometry.AllEnabledMask(), firmware.For(firmware.V12), firmware.V12)
	require.Error(t, err)
	var driverErr *errs.Error
	require.ErrorAs(t, err, &driverErr)
	assert.Equal(t, errs.InvalidTransitionMode, driverErr.Kind)
}
