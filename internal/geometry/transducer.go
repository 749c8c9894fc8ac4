package geometry

import "github.com/golang/geo/r3"

// Transducer is one ultrasound element at a fixed position within its
// owning device. Positions never change once a Geometry is built.
type Transducer struct {
	position     r3.Vector
	localIdx     int
	deviceIdx    int
}

// NewTransducer constructs a transducer at position, recording its index
// within the device and the device's own index within the geometry.
func NewTransducer(position r3.Vector, localIdx, deviceIdx int) Transducer {
	return Transducer{position: position, localIdx: localIdx, deviceIdx: deviceIdx}
}

// Position returns the transducer's position in world space.
func (t Transducer) Position() r3.Vector { return t.position }

// LocalIndex returns the transducer's index within its owning device.
func (t Transducer) LocalIndex() int { return t.localIdx }

// DeviceIndex returns the index of the device that owns this transducer.
func (t Transducer) DeviceIndex() int { return t.deviceIdx }
