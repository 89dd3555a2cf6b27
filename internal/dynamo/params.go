package dynamo

import (
	"fmt"
	"math"
)

const (
	DefaultDt             = 0.025
	DefaultUpdateDt       = 0.1
	DefaultSize           = 0.5
	DefaultMass           = 1.0
	DefaultLiftMass       = 1.5
	DefaultAirDensity     = 1.2
	DefaultGravity        = 9.8
	DefaultGroundFriction = 0.8
	DefaultDragShape      = 0.47
	DefaultPowerCoef      = 5.0
	DefaultWindScale      = 0.1
	DefaultArmRatio       = 1.3
	DefaultCgRatio        = 0.25
)

// Zone is a square ground footprint centred on (X, Z).
type Zone struct {
	X, Z      float64
	HalfWidth float64
}

// Contains reports whether the horizontal position (x, z) lies strictly inside the zone.
func (z Zone) Contains(x, zz float64) bool {
	return math.Abs(x-z.X) < z.HalfWidth && math.Abs(zz-z.Z) < z.HalfWidth
}

// Params holds the physical constants of one simulation. They are fixed for
// the lifetime of a Simulator.
type Params struct {
	Dt             float64
	UpdateDt       float64
	Size           float64
	Mass           float64
	LiftMass       float64
	Gravity        float64
	AirDensity     float64
	DragShape      float64
	GroundFriction float64
	PowerCoef      float64
	WindScale      float64
	ArmRatio       float64
	CgRatio        float64
	LiftZone       Zone
	ValidateState  bool
}

func DefaultParams() Params {
	return Params{
		Dt:             DefaultDt,
		UpdateDt:       DefaultUpdateDt,
		Size:           DefaultSize,
		Mass:           DefaultMass,
		LiftMass:       DefaultLiftMass,
		Gravity:        DefaultGravity,
		AirDensity:     DefaultAirDensity,
		DragShape:      DefaultDragShape,
		GroundFriction: DefaultGroundFriction,
		PowerCoef:      DefaultPowerCoef,
		WindScale:      DefaultWindScale,
		ArmRatio:       DefaultArmRatio,
		CgRatio:        DefaultCgRatio,
		LiftZone:       Zone{X: 10, Z: 10, HalfWidth: 1},
		ValidateState:  true,
	}
}

// LinDragCoef is the quadratic drag coefficient 0.5·ρ·π·shape.
func (p Params) LinDragCoef() float64 {
	return 0.5 * p.AirDensity * math.Pi * p.DragShape
}

// RotDragCoef is the linear angular damping coefficient size².
func (p Params) RotDragCoef() float64 {
	return p.Size * p.Size
}

func (p Params) Validate() error {
	positive := []struct {
		name string
		val  float64
	}{
		{"dt", p.Dt},
		{"update_dt", p.UpdateDt},
		{"size", p.Size},
		{"mass", p.Mass},
		{"lift_mass", p.LiftMass},
		{"arm_ratio", p.ArmRatio},
	}
	for _, f := range positive {
		if !(f.val > 0) || math.IsInf(f.val, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParams, f.name, f.val)
		}
	}

	nonNegative := []struct {
		name string
		val  float64
	}{
		{"gravity", p.Gravity},
		{"air_density", p.AirDensity},
		{"drag_shape", p.DragShape},
		{"power_coef", p.PowerCoef},
		{"wind_scale", p.WindScale},
		{"cg_ratio", p.CgRatio},
		{"lift_zone.half_width", p.LiftZone.HalfWidth},
	}
	for _, f := range nonNegative {
		if !(f.val >= 0) || math.IsInf(f.val, 0) {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidParams, f.name, f.val)
		}
	}

	if !(p.GroundFriction > 0 && p.GroundFriction < 1) {
		return fmt.Errorf("%w: ground_friction must be in (0, 1), got %v", ErrInvalidParams, p.GroundFriction)
	}
	return nil
}
