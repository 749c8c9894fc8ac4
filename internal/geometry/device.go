package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// DefaultSoundSpeed is the ambient sound speed (m/s) used when a device has
// not been given an explicit override.
const DefaultSoundSpeed = 340.0

// AABB is an axis-aligned bounding box, derived once from a device's
// transducer positions.
type AABB struct {
	Min, Max r3.Vector
}

// Device is one physical board: an ordered, immutable list of transducers
// plus a rigid-body pose, a mutable sound speed, and a mutable enable flag.
type Device struct {
	idx          int
	transducers  []Transducer
	position     r3.Vector
	rotation     Quaternion
	soundSpeed   float64
	enabled      bool
	leftHanded   bool
	aabb         AABB
}

// NewDevice builds a device at idx with the given pose. localPositions are
// transducer offsets relative to the device's own origin, in the device's
// local frame; they are rotated and translated into world space here, once,
// and never change afterward.
func NewDevice(idx int, position r3.Vector, rotation Quaternion, localPositions []r3.Vector, leftHanded bool) Device {
	rotation = rotation.Normalize()

	transducers := make([]Transducer, len(localPositions))
	min := r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max := r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}

	for i, lp := range localPositions {
		world := position.Add(rotation.RotateVector(lp))
		transducers[i] = NewTransducer(world, i, idx)
		min = r3.Vector{X: math.Min(min.X, world.X), Y: math.Min(min.Y, world.Y), Z: math.Min(min.Z, world.Z)}
		max = r3.Vector{X: math.Max(max.X, world.X), Y: math.Max(max.Y, world.Y), Z: math.Max(max.Z, world.Z)}
	}
	if len(localPositions) == 0 {
		min, max = r3.Vector{}, r3.Vector{}
	}

	return Device{
		idx:         idx,
		transducers: transducers,
		position:    position,
		rotation:    rotation,
		soundSpeed:  DefaultSoundSpeed,
		enabled:     true,
		leftHanded:  leftHanded,
		aabb:        AABB{Min: min, Max: max},
	}
}

// Index returns this device's position within its Geometry.
func (d *Device) Index() int { return d.idx }

// NumTransducers returns the number of transducers on this device.
func (d *Device) NumTransducers() int { return len(d.transducers) }

// Transducer returns the i-th transducer.
func (d *Device) Transducer(i int) Transducer { return d.transducers[i] }

// Transducers returns the device's transducers in index order.
func (d *Device) Transducers() []Transducer { return d.transducers }

// Position returns the device's world-space origin.
func (d *Device) Position() r3.Vector { return d.position }

// Rotation returns the device's rotation.
func (d *Device) Rotation() Quaternion { return d.rotation }

// AxialDirection returns the device's acoustic axis: the rotated +z axis,
// or -z when the device was built in left-handed mode.
func (d *Device) AxialDirection() r3.Vector {
	axis := d.rotation.RotateVector(r3.Vector{Z: 1})
	if d.leftHanded {
		return axis.Mul(-1)
	}
	return axis
}

// AABB returns the device's axis-aligned bounding box.
func (d *Device) AABB() AABB { return d.aabb }

// SoundSpeed returns the device's current sound speed.
func (d *Device) SoundSpeed() float64 { return d.soundSpeed }

// SetSoundSpeed updates the device's sound speed.
func (d *Device) SetSoundSpeed(c float64) { d.soundSpeed = c }

// Enabled reports whether the device currently participates in sends.
func (d *Device) Enabled() bool { return d.enabled }

// SetEnabled toggles whether the device participates in sends.
func (d *Device) SetEnabled(enabled bool) { d.enabled = enabled }
