package config

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/phasedctl/hostdriver/internal/geometry"
)

// standardRows/standardCols describe the transducer grid every configured
// device uses. A config format that needs heterogeneous device shapes is
// future work; every device the reference array ships is this shape.
const (
	standardRows = 14
	standardCols = 18
)

// BuildGeometry turns the YAML device list into a Geometry, converting
// millimeters to meters and degrees to radians.
func BuildGeometry(cfg *DriverConfig) (*geometry.Geometry, error) {
	local := geometry.StandardArrayLayout(standardRows, standardCols)
	devices := make([]geometry.Device, len(cfg.Devices))
	for i, dc := range cfg.Devices {
		pos := r3.Vector{X: dc.PositionMM[0] / 1000, Y: dc.PositionMM[1] / 1000, Z: dc.PositionMM[2] / 1000}
		rot := geometry.FromEulerZYZ(
			dc.RotationDeg[0]*math.Pi/180,
			dc.RotationDeg[1]*math.Pi/180,
			dc.RotationDeg[2]*math.Pi/180,
		)
		dev := geometry.NewDevice(i, pos, rot, local, dc.LeftHanded)
		if dc.SoundSpeedMM > 0 {
			dev.SetSoundSpeed(dc.SoundSpeedMM)
		}
		devices[i] = dev
	}
	return geometry.NewGeometry(devices), nil
}
