package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// Quaternion is a unit quaternion rotation. The retrieval pack carries no
// library offering quaternion composition (golang/geo's r3 package covers
// only plain vector algebra), so this is a small hand-rolled stdlib type;
// see DESIGN.md for the justification.
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity is the no-rotation quaternion.
func Identity() Quaternion {
	return Quaternion{W: 1}
}

// Normalize returns q scaled to unit length. The zero quaternion normalizes
// to Identity rather than dividing by zero.
func (q Quaternion) Normalize() Quaternion {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n == 0 {
		return Identity()
	}
	return Quaternion{q.W / n, q.X / n, q.Y / n, q.Z / n}
}

// RotateVector applies q's rotation to v.
func (q Quaternion) RotateVector(v r3.Vector) r3.Vector {
	qv := r3.Vector{X: q.X, Y: q.Y, Z: q.Z}
	t := qv.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(qv.Cross(t))
}

// Mul composes rotations: (p.Mul(q)).RotateVector(v) == p.RotateVector(q.RotateVector(v)).
func (p Quaternion) Mul(q Quaternion) Quaternion {
	return Quaternion{
		W: p.W*q.W - p.X*q.X - p.Y*q.Y - p.Z*q.Z,
		X: p.W*q.X + p.X*q.W + p.Y*q.Z - p.Z*q.Y,
		Y: p.W*q.Y - p.X*q.Z + p.Y*q.W + p.Z*q.X,
		Z: p.W*q.Z + p.X*q.Y - p.Y*q.X + p.Z*q.W,
	}
}

// FromAxisAngle builds the unit quaternion rotating by angle radians
// around axis.
func FromAxisAngle(axis r3.Vector, angle float64) Quaternion {
	axis = axis.Normalize()
	s := math.Sin(angle / 2)
	return Quaternion{W: math.Cos(angle / 2), X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s}
}

// FromEulerZYZ builds a rotation from intrinsic Z-Y-Z Euler angles in
// radians, the convention the reference driver's device placement uses.
func FromEulerZYZ(z1, y, z2 float64) Quaternion {
	qz1 := FromAxisAngle(r3.Vector{Z: 1}, z1)
	qy := FromAxisAngle(r3.Vector{Y: 1}, y)
	qz2 := FromAxisAngle(r3.Vector{Z: 1}, z2)
	return qz1.Mul(qy).Mul(qz2).Normalize()
}
