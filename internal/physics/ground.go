package physics

import "github.com/san-kum/quadsim/internal/dynamo"

// LiftZone is a ground footprint where touching down loads the vehicle to Mass.
type LiftZone struct {
	dynamo.Zone
	Mass float64
}

// Ground resolves contact with the plane y = 0.
type Ground struct {
	Friction float64
	Lift     *LiftZone
}

// NewGround builds the ground of p. A lift zone with zero half-width is
// left out.
func NewGround(p dynamo.Params) *Ground {
	g := &Ground{Friction: p.GroundFriction}
	if p.LiftZone.HalfWidth > 0 {
		g.Lift = &LiftZone{Zone: p.LiftZone, Mass: p.LiftMass}
	}
	return g
}

func (g *Ground) Resolve(v *dynamo.Vehicle) dynamo.ContactEvent {
	var ev dynamo.ContactEvent
	if !(v.Position[1] <= 0) {
		return ev
	}

	v.Position[1] = 0
	ev.Grounded = true

	if g.Lift != nil && v.Mass != g.Lift.Mass && g.Lift.Contains(v.Position[0], v.Position[2]) {
		v.SetMass(g.Lift.Mass)
		ev.LiftEngaged = true
	}

	if v.Velocity[1] <= 0 {
		v.Velocity[0] *= g.Friction
		v.Velocity[1] = 0
		v.Velocity[2] *= g.Friction
		v.OrientationAccelRate = v.OrientationAccelRate.Mul(g.Friction)
		ev.Damped = true
	}
	return ev
}
