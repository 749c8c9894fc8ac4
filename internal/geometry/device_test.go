package geometry_test

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phasedctl/hostdriver/internal/geometry"
)

func Test_NewDevice_AABBCoversRotatedTransducers(t *testing.T) {
	local := []r3.Vector{{X: -1, Y: -1}, {X: 1, Y: 1}}
	rot := geometry.FromAxisAngle(r3.Vector{Z: 1}, 90*3.141592653589793/180)
	dev := geometry.NewDevice(0, r3.Vector{X: 5}, rot, local, false)

	box := dev.AABB()
	assert.InDelta(t, 4, box.Min.X, 1e-9)
	assert.InDelta(t, 6, box.Max.X, 1e-9)
}

func Test_NewDevice_EmptyTransducersGivesZeroAABB(t *testing.T) {
	dev := geometry.NewDevice(0, r3.Vector{X: 3, Y: 4}, geometry.Identity(), nil, false)
	box := dev.AABB()
	assert.Equal(t, r3.Vector{}, box.Min)
	assert.Equal(t, r3.Vector{}, box.Max)
}

func Test_AxialDirection_FlipsForLeftHanded(t *testing.T) {
	right := geometry.NewDevice(0, r3.Vector{}, geometry.Identity(), nil, false)
	left := geometry.NewDevice(0, r3.Vector{}, geometry.Identity(), nil, true)

	assert.Equal(t, r3.Vector{Z: 1}, right.AxialDirection())
	assert.Equal(t, r3.Vector{Z: -1}, left.AxialDirection())
}

func Test_DeviceMask_AllEnabled_FollowsPerDeviceFlag(t *testing.T) {
	devs := []geometry.Device{
		geometry.NewDevice(0, r3.Vector{}, geometry.Identity(), nil, false),
		geometry.NewDevice(1, r3.Vector{}, geometry.Identity(), nil, false),
	}
	geo := geometry.NewGeometry(devs)
	geo.MutateDevice(1, func(d *geometry.Device) { d.SetEnabled(false) })

	mask := geometry.AllEnabledMask()
	assert.True(t, mask.Includes(geo, 0))
	assert.False(t, mask.Includes(geo, 1))
}

func Test_DeviceMask_Explicit_ANDsWithDeviceEnabledFlag(t *testing.T) {
	devs := []geometry.Device{
		geometry.NewDevice(0, r3.Vector{}, geometry.Identity(), nil, false),
		geometry.NewDevice(1, r3.Vector{}, geometry.Identity(), nil, false),
	}
	geo := geometry.NewGeometry(devs)

	mask := geometry.NewDeviceMask([]bool{true, false})
	assert.True(t, mask.Includes(geo, 0))
	assert.False(t, mask.Includes(geo, 1))

	geo.MutateDevice(0, func(d *geometry.Device) { d.SetEnabled(false) })
	assert.False(t, mask.Includes(geo, 0), "explicit selection cannot override a disabled device")
}

func Test_DeviceMask_Explicit_OutOfRangeIndexExcluded(t *testing.T) {
	devs := []geometry.Device{
		geometry.NewDevice(0, r3.Vector{}, geometry.Identity(), nil, false),
		geometry.NewDevice(1, r3.Vector{}, geometry.Identity(), nil, false),
	}
	geo := geometry.NewGeometry(devs)
	mask := geometry.NewDeviceMask([]bool{true})
	assert.False(t, mask.Includes(geo, 1))
}

func Test_Geometry_MutateDevice_IncrementsVersion(t *testing.T) {
	geo := geometry.NewGeometry([]geometry.Device{
		geometry.NewDevice(0, r3.Vector{}, geometry.Identity(), nil, false),
	})
	v0 := geo.Version()
	geo.MutateDevice(0, func(d *geometry.Device) { d.SetSoundSpeed(1500) })
	assert.Equal(t, v0+1, geo.Version())
}

func Test_Geometry_NumEnabled_CountsOnlyEnabledDevices(t *testing.T) {
	geo := geometry.NewGeometry([]geometry.Device{
		geometry.NewDevice(0, r3.Vector{}, geometry.Identity(), nil, false),
		geometry.NewDevice(1, r3.Vector{}, geometry.Identity(), nil, false),
	})
	require.Equal(t, 2, geo.NumEnabled())
	geo.MutateDevice(1, func(d *geometry.Device) { d.SetEnabled(false) })
	assert.Equal(t, 1, geo.NumEnabled())
}
