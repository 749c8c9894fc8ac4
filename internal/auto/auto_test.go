package auto_test

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phasedctl/hostdriver/internal/auto"
	"github.com/phasedctl/hostdriver/internal/emulator"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
)

func testGeo(n int) *geometry.Geometry {
	devices := make([]geometry.Device, n)
	for i := range devices {
		devices[i] = geometry.NewDevice(i, r3.Vector{}, geometry.Identity(), []r3.Vector{{}}, false)
	}
	return geometry.NewGeometry(devices)
}

func Test_Probe_ResolvesEmulatedVersion(t *testing.T) {
	ctx := context.Background()
	geo := testGeo(3)
	emu := emulator.New(firmware.V12)
	require.NoError(t, emu.Open(ctx, geo))
	defer emu.Close()

	ver, err := auto.Probe(ctx, emu, geo)
	require.NoError(t, err)
	assert.Equal(t, firmware.V12, ver)
}

func Test_Probe_V12_1IsDistinguishedByCPUMinor(t *testing.T) {
	ctx := context.Background()
	geo := testGeo(1)
	emu := emulator.New(firmware.V12_1)
	require.NoError(t, emu.Open(ctx, geo))
	defer emu.Close()

	ver, err := auto.Probe(ctx, emu, geo)
	require.NoError(t, err)
	assert.Equal(t, firmware.V12_1, ver)
}

func Test_Probe_FailsWhenLinkNeverOpened(t *testing.T) {
	ctx := context.Background()
	geo := testGeo(1)
	emu := emulator.New(firmware.V10)

	_, err := auto.Probe(ctx, emu, geo)
	assert.Error(t, err)
}
