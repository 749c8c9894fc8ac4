package datagram

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
)

func Test_GainSTM_RejectsSampleCountOutOfRange(t *testing.T) {
	geo := testGeo(2)
	limits := firmware.For(firmware.V12)
	calc := func(dev *geometry.Device, idx int) []GainValue { return make([]GainValue, dev.NumTransducers()) }

	_, err := GainSTM{Calc: calc, NumSamples: 0}.OperationGenerator(geo, environment.Default(), geometry.AllEnabledMask(), limits, firmware.V12)
	require.Error(t, err)

	_, err = GainSTM{Calc: calc, NumSamples: limits.GainSTMBufSizeMax + 1}.OperationGenerator(geo, environment.Default(), geometry.AllEnabledMask(), limits, firmware.V12)
	require.Error(t, err)
}

func Test_GainSTM_PacksAllSampleData(t *testing.T) {
	geo := testGeo(2)
	limits := firmware.For(firmware.V12)
	calc := func(dev *geometry.Device, idx int) []GainValue {
		vs := make([]GainValue, dev.NumTransducers())
		for i := range vs {
			vs[i] = GainValue{Intensity: uint8(idx), Phase: uint8(i)}
		}
		return vs
	}
	d := GainSTM{Calc: calc, NumSamples: 3}
	gen, err := d.OperationGenerator(geo, environment.Default(), geometry.AllEnabledMask(), limits, firmware.V12)
	require.NoError(t, err)

	pair := gen.Generate(geo.Device(0))
	require.NotNil(t, pair)

	dev := geo.Device(0)
	var total int
	for !pair.Op1.IsDone() {
		buf := make([]byte, 64)
		n, err := pair.Op1.Pack(dev, buf)
		require.NoError(t, err)
		total += n
	}
	// 3 samples * 2 transducers * 2 bytes/transducer of actual gain data,
	// plus the tag/flags/header overhead each chunk carried.
	assert.Greater(t, total, 3*2*2)
}

func Test_FociSTM_RejectsTooManyFociPerPoint(t *testing.T) {
	geo := testGeo(1)
	limits := firmware.For(firmware.V12)
	calc := func(idx int) []Focus {
		return make([]Focus, limits.FociSTMFociPerPointMax+1)
	}
	_, err := FociSTM{Calc: calc, NumSamples: 1}.OperationGenerator(geo, environment.Default(), geometry.AllEnabledMask(), limits, firmware.V12)
	require.Error(t, err)
}

func Test_FociSTM_AcceptsSingleFocusPerPoint(t *testing.T) {
	geo := testGeo(1)
	limits := firmware.For(firmware.V12)
	calc := func(idx int) []Focus {
		return []Focus{{Position: r3.Vector{X: 0.01, Y: 0, Z: 0.1}, Intensity: 0xFF}}
	}
	gen, err := FociSTM{Calc: calc, NumSamples: 2}.OperationGenerator(geo, environment.Default(), geometry.AllEnabledMask(), limits, firmware.V12)
	require.NoError(t, err)
	assert.NotNil(t, gen.Generate(geo.Device(0)))
}
