package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// EnergyUsed is the actuator energy drawn since the first observed step.
type EnergyUsed struct {
	name    string
	start   float64
	last    float64
	samples int
}

func NewEnergyUsed() *EnergyUsed {
	return &EnergyUsed{name: "energy_used"}
}

func (e *EnergyUsed) Name() string { return e.name }

func (e *EnergyUsed) Observe(s dynamo.Snapshot) {
	if e.samples == 0 {
		e.start = s.Energy
	}
	e.last = s.Energy
	e.samples++
}

func (e *EnergyUsed) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.last - e.start
}

func (e *EnergyUsed) Reset() {
	e.start = 0
	e.last = 0
	e.samples = 0
}

// MechanicalEnergy is the mean kinetic plus potential energy of the vehicle.
type MechanicalEnergy struct {
	name        string
	gravity     float64
	samples     int
	totalEnergy float64
}

func NewMechanicalEnergy(gravity float64) *MechanicalEnergy {
	return &MechanicalEnergy{
		name:    "mechanical_energy",
		gravity: gravity,
	}
}

func (e *MechanicalEnergy) Name() string { return e.name }

func (e *MechanicalEnergy) Observe(s dynamo.Snapshot) {
	ke := 0.5 * s.Mass * s.Velocity.LenSqr()
	pe := s.Mass * e.gravity * math.Max(s.Altitude(), 0)
	e.totalEnergy += ke + pe
	e.samples++
}

func (e *MechanicalEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *MechanicalEnergy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}
