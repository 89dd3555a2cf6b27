package rotation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const floatEps = 2.220446049250313e-16

var (
	identityThresh = floatEps * 3
	gimbalEps      = floatEps * 4
)

// XAxis is the axis reported for the identity rotation.
var XAxis = mgl64.Vec3{1, 0, 0}

// EulerToQuat converts static x-y-z angles to a unit quaternion.
func EulerToQuat(e mgl64.Vec3) mgl64.Quat {
	ai, aj, ak := e[0]/2, e[1]/2, e[2]/2
	ci, si := math.Cos(ai), math.Sin(ai)
	cj, sj := math.Cos(aj), math.Sin(aj)
	ck, sk := math.Cos(ak), math.Sin(ak)
	cc, cs := ci*ck, ci*sk
	sc, ss := si*ck, si*sk

	return mgl64.Quat{
		W: cj*cc + sj*ss,
		V: mgl64.Vec3{
			cj*sc - sj*cs,
			cj*ss + sj*cc,
			cj*cs - sj*sc,
		},
	}
}

// QuatToAxisAngle decomposes q into a unit axis and an angle in [0, 2π].
// Quaternions that are not normalized are normalized first. Rotations closer
// to the identity than 3 ulp report (XAxis, 0).
func QuatToAxisAngle(q mgl64.Quat) (mgl64.Vec3, float64) {
	w, x, y, z := q.W, q.V[0], q.V[1], q.V[2]
	n := w*w + x*x + y*y + z*z
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return XAxis, math.NaN()
	}
	if n < floatEps*floatEps {
		return XAxis, 0
	}
	if n != 1 {
		s := math.Sqrt(n)
		w, x, y, z = w/s, x/s, y/s, z/s
	}

	len2 := x*x + y*y + z*z
	if len2 < identityThresh*identityThresh {
		return XAxis, 0
	}

	theta := 2 * math.Acos(math.Max(math.Min(w, 1), -1))
	l := math.Sqrt(len2)
	return mgl64.Vec3{x / l, y / l, z / l}, theta
}

// EulerToAxisAngle converts static x-y-z angles to an axis-angle pair.
func EulerToAxisAngle(e mgl64.Vec3) (mgl64.Vec3, float64) {
	return QuatToAxisAngle(EulerToQuat(e))
}

// AxisAngleToMat builds the rotation matrix for angle radians about axis.
// The axis does not need to be normalized but must be non-zero.
func AxisAngleToMat(axis mgl64.Vec3, angle float64) mgl64.Mat3 {
	n := axis.Len()
	x, y, z := axis[0]/n, axis[1]/n, axis[2]/n

	c, s := math.Cos(angle), math.Sin(angle)
	C := 1 - c
	xs, ys, zs := x*s, y*s, z*s
	xC, yC, zC := x*C, y*C, z*C
	xyC, yzC, zxC := x*yC, y*zC, z*xC

	return mgl64.Mat3FromRows(
		mgl64.Vec3{x*xC + c, xyC - zs, zxC + ys},
		mgl64.Vec3{xyC + zs, y*yC + c, yzC - xs},
		mgl64.Vec3{zxC - ys, yzC + xs, z*zC + c},
	)
}

// MatToEuler extracts static x-y-z angles from a rotation matrix.
func MatToEuler(m mgl64.Mat3) mgl64.Vec3 {
	cy := math.Sqrt(m.At(0, 0)*m.At(0, 0) + m.At(1, 0)*m.At(1, 0))
	if cy > gimbalEps {
		return mgl64.Vec3{
			math.Atan2(m.At(2, 1), m.At(2, 2)),
			math.Atan2(-m.At(2, 0), cy),
			math.Atan2(m.At(1, 0), m.At(0, 0)),
		}
	}
	return mgl64.Vec3{
		math.Atan2(-m.At(1, 2), m.At(1, 1)),
		math.Atan2(-m.At(2, 0), cy),
		0,
	}
}

// AxisAngleToEuler converts an axis-angle pair to static x-y-z angles.
// A zero axis has no direction; callers must handle it before calling.
func AxisAngleToEuler(axis mgl64.Vec3, angle float64) mgl64.Vec3 {
	return MatToEuler(AxisAngleToMat(axis, angle))
}

// Rotate turns v by angle radians about axis (right-hand rule).
func Rotate(v mgl64.Vec3, angle float64, axis mgl64.Vec3) mgl64.Vec3 {
	return mgl64.QuatRotate(angle, axis.Normalize()).Rotate(v)
}
