package integrators

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/rotation"
)

// SemiImplicitEuler updates velocities from the forces first and then moves
// the positions with the new velocities.
//
// Angular acceleration is torque/inertia read as an axis-angle pair and
// converted back to x-y-z angles before it is integrated. A zero angular
// acceleration has no axis; in that case the orientation accel rate is reset
// to zero instead of being left unchanged.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Step(v *dynamo.Vehicle, f dynamo.Forces, dt float64) {
	v.Velocity = v.Velocity.Add(f.Accel.Mul(dt))

	aa := mgl64.Vec3{f.Torque[0] / v.Inertia, f.Torque[1] / v.Inertia, f.Torque[2] / v.Inertia}
	if mag := aa.Len(); mag > 0 {
		delta := rotation.AxisAngleToEuler(aa, mag)
		v.OrientationAccelRate = v.OrientationAccelRate.Add(delta.Mul(dt))
	} else {
		v.OrientationAccelRate = mgl64.Vec3{}
	}

	v.Position = v.Position.Add(v.Velocity.Mul(dt))
	v.OrientationRate = v.OrientationRate.Add(v.OrientationAccelRate.Mul(dt))
}
