package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/rotation"
)

var worldUp = mgl64.Vec3{0, 1, 0}

// Quadrotor is the force and torque model of a plus-configuration
// four-rotor vehicle. It never mutates the vehicle.
type Quadrotor struct {
	Gravity  float64
	LinDrag  float64
	RotDrag  float64
	ArmRatio float64
}

func NewQuadrotor(p dynamo.Params) *Quadrotor {
	return &Quadrotor{
		Gravity:  p.Gravity,
		LinDrag:  p.LinDragCoef(),
		RotDrag:  p.RotDragCoef(),
		ArmRatio: p.ArmRatio,
	}
}

// Attitude returns the body up vector and the axis-angle rotation derived
// from the vehicle's orientation-rate vector.
func Attitude(v *dynamo.Vehicle) (up, axis mgl64.Vec3, theta float64) {
	axis, theta = rotation.EulerToAxisAngle(v.OrientationRate)
	up = rotation.Rotate(worldUp, theta, axis)
	return up, axis, theta
}

// RotorPositions returns the four rotor hubs relative to the body centre,
// rotated with the body. Order: +x, +z, -x, -z.
func (q *Quadrotor) RotorPositions(v *dynamo.Vehicle) [4]mgl64.Vec3 {
	_, axis, theta := Attitude(v)
	return q.rotorPositions(v.Size, axis, theta)
}

func (q *Quadrotor) rotorPositions(size float64, axis mgl64.Vec3, theta float64) [4]mgl64.Vec3 {
	arm := q.ArmRatio * size
	return [4]mgl64.Vec3{
		rotation.Rotate(mgl64.Vec3{arm, 0, 0}, theta, axis),
		rotation.Rotate(mgl64.Vec3{0, 0, arm}, theta, axis),
		rotation.Rotate(mgl64.Vec3{-arm, 0, 0}, theta, axis),
		rotation.Rotate(mgl64.Vec3{0, 0, -arm}, theta, axis),
	}
}

func (q *Quadrotor) Forces(v *dynamo.Vehicle) dynamo.Forces {
	up, axis, theta := Attitude(v)
	gravity := mgl64.Vec3{0, -q.Gravity, 0}
	m := v.Mass

	a := gravity.
		Add(up.Mul(v.Thrust.Total() / m)).
		Add(mgl64.Vec3{v.Wind[0] / m, v.Wind[1] / m, v.Wind[2] / m})
	speed := v.Velocity.Len()
	a = a.Sub(v.Velocity.Mul(q.LinDrag * speed * speed / m))

	cg := up.Mul(v.CgOffset)
	torque := cg.Cross(gravity)
	for i, p := range q.rotorPositions(v.Size, axis, theta) {
		torque = torque.Add(p.Cross(up.Mul(v.Thrust[i])))
	}
	torque = torque.Sub(v.OrientationAccelRate.Mul(q.RotDrag))

	return dynamo.Forces{Accel: a, Torque: torque}
}

// HoverThrust is the per-rotor thrust that balances gravity for an upright
// vehicle of the given mass.
func (q *Quadrotor) HoverThrust(mass float64) float64 {
	return mass * q.Gravity / 4.0
}
