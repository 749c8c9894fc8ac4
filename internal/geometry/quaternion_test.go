package geometry

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
)

func vectorsClose(t *testing.T, want, got r3.Vector) {
	t.Helper()
	const eps = 1e-9
	assert.InDelta(t, want.X, got.X, eps)
	assert.InDelta(t, want.Y, got.Y, eps)
	assert.InDelta(t, want.Z, got.Z, eps)
}

func Test_Identity_LeavesVectorsUnchanged(t *testing.T) {
	v := r3.Vector{X: 1, Y: 2, Z: 3}
	vectorsClose(t, v, Identity().RotateVector(v))
}

func Test_FromAxisAngle_QuarterTurnAboutZ(t *testing.T) {
	q := FromAxisAngle(r3.Vector{Z: 1}, math.Pi/2)
	got := q.RotateVector(r3.Vector{X: 1})
	vectorsClose(t, r3.Vector{Y: 1}, got)
}

func Test_FromAxisAngle_HalfTurnAboutX(t *testing.T) {
	q := FromAxisAngle(r3.Vector{X: 1}, math.Pi)
	got := q.RotateVector(r3.Vector{Y: 1})
	vectorsClose(t, r3.Vector{Y: -1}, got)
}

func Test_Mul_ComposesInApplicationOrder(t *testing.T) {
	p := FromAxisAngle(r3.Vector{Z: 1}, math.Pi/2)
	q := FromAxisAngle(r3.Vector{X: 1}, math.Pi/2)
	v := r3.Vector{X: 1}

	composed := p.Mul(q).RotateVector(v)
	sequential := p.RotateVector(q.RotateVector(v))

	vectorsClose(t, sequential, composed)
}

func Test_FromEulerZYZ_ZeroIsIdentity(t *testing.T) {
	q := FromEulerZYZ(0, 0, 0)
	v := r3.Vector{X: 1, Y: 2, Z: 3}
	vectorsClose(t, v, q.RotateVector(v))
}

func Test_FromEulerZYZ_YRotationTiltsZAxis(t *testing.T) {
	q := FromEulerZYZ(0, math.Pi/2, 0)
	got := q.RotateVector(r3.Vector{Z: 1})
	vectorsClose(t, r3.Vector{X: 1}, got)
}

func Test_Normalize_ZeroQuaternionBecomesIdentity(t *testing.T) {
	assert.Equal(t, Identity(), Quaternion{}.Normalize())
}

func Test_RotateVector_PreservesLength(t *testing.T) {
	q := FromEulerZYZ(0.3, 1.1, -0.7)
	v := r3.Vector{X: 3, Y: -4, Z: 5}
	got := q.RotateVector(v)
	assert.InDelta(t, v.Norm(), got.Norm(), 1e-9)
}
