package dynamo

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Vehicle is the mutable state of the simulated quadrotor. It is owned by a
// single Simulator and mutated only inside Step.
type Vehicle struct {
	Mass     float64
	BaseMass float64
	Size     float64
	Inertia  float64
	CgOffset float64

	Position             mgl64.Vec3
	Velocity             mgl64.Vec3
	OrientationRate      mgl64.Vec3
	OrientationAccelRate mgl64.Vec3

	Thrust Thrust
	Wind   mgl64.Vec3
	Energy float64
}

// NewVehicle builds a vehicle at rest at the origin. The wind is drawn once
// from rng on the two horizontal axes; a nil rng gives still air.
func NewVehicle(p Params, rng *rand.Rand) *Vehicle {
	v := &Vehicle{
		Mass:     p.Mass,
		BaseMass: p.Mass,
		Size:     p.Size,
		CgOffset: -p.CgRatio * p.Size,
	}
	v.Inertia = InertiaFor(v.Mass, v.Size)
	if rng != nil {
		v.Wind = mgl64.Vec3{rng.NormFloat64(), 0, rng.NormFloat64()}.Mul(p.WindScale)
	}
	return v
}

// InertiaFor is the scalar moment of inertia 2/3·m·size².
func InertiaFor(mass, size float64) float64 {
	return 2.0 / 3.0 * mass * size * size
}

// SetMass changes the mass and keeps the inertia consistent with it.
func (v *Vehicle) SetMass(m float64) {
	v.Mass = m
	v.Inertia = InertiaFor(m, v.Size)
}

// Reset zeroes the kinematic state and restores the construction mass.
// Size, wind, thrust and accumulated energy are kept.
func (v *Vehicle) Reset() {
	v.Position = mgl64.Vec3{}
	v.Velocity = mgl64.Vec3{}
	v.OrientationRate = mgl64.Vec3{}
	v.OrientationAccelRate = mgl64.Vec3{}
	v.SetMass(v.BaseMass)
}

func (v *Vehicle) IsFinite() bool {
	for _, vec := range []mgl64.Vec3{v.Position, v.Velocity, v.OrientationRate, v.OrientationAccelRate} {
		for _, c := range vec {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return !math.IsNaN(v.Energy) && !math.IsInf(v.Energy, 0)
}
