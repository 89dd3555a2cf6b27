package experiment

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Mission is the lift-pad exercise: take off from Start, land on Lift to
// pick up the load, then land on End.
type Mission struct {
	Start dynamo.Zone
	Lift  dynamo.Zone
	End   dynamo.Zone
}

func LiftPadMission() Mission {
	return Mission{
		Start: dynamo.Zone{X: 0, Z: 0, HalfWidth: 1},
		Lift:  dynamo.Zone{X: 10, Z: 10, HalfWidth: 1},
		End:   dynamo.Zone{X: 10, Z: -10, HalfWidth: 1},
	}
}

type Outcome struct {
	Landed        bool
	OnEndPad      bool
	LiftCollected bool
	// Distance is the horizontal distance from the end pad centre.
	Distance float64
}

// Success means the vehicle carried the load and is resting on the end pad.
func (o Outcome) Success() bool {
	return o.Landed && o.OnEndPad && o.LiftCollected
}

// Evaluate scores a final state. baseMass is the mass the vehicle started with.
func (m Mission) Evaluate(final dynamo.Snapshot, baseMass float64) Outcome {
	x, z := final.Position.X(), final.Position.Z()
	return Outcome{
		Landed:        final.Contact.Grounded || final.Altitude() <= 0,
		OnEndPad:      m.End.Contains(x, z),
		LiftCollected: final.Mass != baseMass,
		Distance:      math.Hypot(x-m.End.X, z-m.End.Z),
	}
}
