package rotation

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const tol = 1e-12

func vecClose(a, b mgl64.Vec3, eps float64) bool {
	return math.Abs(a[0]-b[0]) < eps && math.Abs(a[1]-b[1]) < eps && math.Abs(a[2]-b[2]) < eps
}

func TestEulerToAxisAngle_Identity(t *testing.T) {
	axis, theta := EulerToAxisAngle(mgl64.Vec3{})
	if axis != XAxis {
		t.Errorf("identity axis = %v, want %v", axis, XAxis)
	}
	if theta != 0 {
		t.Errorf("identity angle = %v, want 0", theta)
	}
}

func TestEulerToAxisAngle_SingleAxis(t *testing.T) {
	tests := []struct {
		name  string
		euler mgl64.Vec3
		axis  mgl64.Vec3
		angle float64
	}{
		{"x", mgl64.Vec3{0.4, 0, 0}, mgl64.Vec3{1, 0, 0}, 0.4},
		{"y", mgl64.Vec3{0, 1.1, 0}, mgl64.Vec3{0, 1, 0}, 1.1},
		{"z", mgl64.Vec3{0, 0, 2.0}, mgl64.Vec3{0, 0, 1}, 2.0},
		{"negative z", mgl64.Vec3{0, 0, -0.3}, mgl64.Vec3{0, 0, -1}, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			axis, angle := EulerToAxisAngle(tt.euler)
			if !vecClose(axis, tt.axis, tol) {
				t.Errorf("axis = %v, want %v", axis, tt.axis)
			}
			if math.Abs(angle-tt.angle) > tol {
				t.Errorf("angle = %v, want %v", angle, tt.angle)
			}
		})
	}
}

func TestAxisAngleToEuler_UnnormalizedAxis(t *testing.T) {
	got := AxisAngleToEuler(mgl64.Vec3{0, 0, 2}, 0.5)
	if !vecClose(got, mgl64.Vec3{0, 0, 0.5}, tol) {
		t.Errorf("AxisAngleToEuler = %v, want [0 0 0.5]", got)
	}
}

func TestAxisAngleToEuler_GimbalLock(t *testing.T) {
	got := AxisAngleToEuler(mgl64.Vec3{0, 1, 0}, math.Pi/2)
	want := mgl64.Vec3{0, math.Pi / 2, 0}
	if !vecClose(got, want, 1e-9) {
		t.Errorf("gimbal branch = %v, want %v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	angles := []mgl64.Vec3{
		{0.1, -0.2, 0.3},
		{-0.5, 0.25, 0.05},
		{0.7, 0.0, -1.2},
	}

	for _, e := range angles {
		axis, theta := EulerToAxisAngle(e)
		back := AxisAngleToEuler(axis, theta)
		if !vecClose(back, e, 1e-9) {
			t.Errorf("round trip %v -> %v", e, back)
		}
	}
}

func TestAngleWraps(t *testing.T) {
	// A 4 rad rotation about z comes back as the equivalent -2.28 rad.
	got := AxisAngleToEuler(mgl64.Vec3{0, 0, 1}, 4)
	if !vecClose(got, mgl64.Vec3{0, 0, 4 - 2*math.Pi}, 1e-9) {
		t.Errorf("wrapped angle = %v", got)
	}
}

func TestQuatToAxisAngle_Degenerate(t *testing.T) {
	axis, theta := QuatToAxisAngle(mgl64.Quat{})
	if axis != XAxis || theta != 0 {
		t.Errorf("zero quaternion = (%v, %v), want (%v, 0)", axis, theta, XAxis)
	}

	_, theta = QuatToAxisAngle(mgl64.Quat{W: math.Inf(1)})
	if !math.IsNaN(theta) {
		t.Errorf("infinite quaternion angle = %v, want NaN", theta)
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name  string
		v     mgl64.Vec3
		angle float64
		axis  mgl64.Vec3
		want  mgl64.Vec3
	}{
		{"up about x", mgl64.Vec3{0, 1, 0}, math.Pi / 2, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1}},
		{"up about z", mgl64.Vec3{0, 1, 0}, math.Pi / 2, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{-1, 0, 0}},
		{"zero angle", mgl64.Vec3{0.65, 0, 0}, 0, XAxis, mgl64.Vec3{0.65, 0, 0}},
		{"scaled axis", mgl64.Vec3{1, 0, 0}, math.Pi, mgl64.Vec3{0, 3, 0}, mgl64.Vec3{-1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotate(tt.v, tt.angle, tt.axis)
			if !vecClose(got, tt.want, 1e-12) {
				t.Errorf("Rotate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRotateMatchesMatrix(t *testing.T) {
	axis := mgl64.Vec3{0.3, -0.4, 0.5}
	angle := 0.8
	v := mgl64.Vec3{1, 2, 3}

	fromQuat := Rotate(v, angle, axis)
	fromMat := AxisAngleToMat(axis, angle).Mul3x1(v)
	if !vecClose(fromQuat, fromMat, 1e-12) {
		t.Errorf("quaternion %v != matrix %v", fromQuat, fromMat)
	}
}
