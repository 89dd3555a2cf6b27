package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Thrust holds the four rotor commands in rotor order (+x, +z, -x, -z arm).
type Thrust [4]float64

// Total returns the summed thrust of all rotors.
func (t Thrust) Total() float64 {
	return t[0] + t[1] + t[2] + t[3]
}

// Validate reports ErrInvalidThrust if any rotor command is negative or not finite.
func (t Thrust) Validate() error {
	for _, v := range t {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return ErrInvalidThrust
		}
	}
	return nil
}

// Clamp returns a copy with negative and NaN commands set to zero.
func (t Thrust) Clamp() Thrust {
	for i, v := range t {
		if !(v > 0) {
			t[i] = 0
		} else if math.IsInf(v, 1) {
			t[i] = math.MaxFloat64
		}
	}
	return t
}

// Forces is the output of a Model: linear acceleration and net torque.
type Forces struct {
	Accel  mgl64.Vec3
	Torque mgl64.Vec3
}

// ContactEvent describes what the contact resolver did during one step.
type ContactEvent struct {
	Grounded    bool
	Damped      bool
	LiftEngaged bool
}

// Snapshot is a read-only copy of the vehicle state at a point in time.
type Snapshot struct {
	Time                 float64
	Position             mgl64.Vec3
	Velocity             mgl64.Vec3
	OrientationRate      mgl64.Vec3
	OrientationAccelRate mgl64.Vec3
	Thrust               Thrust
	Mass                 float64
	Energy               float64
	Contact              ContactEvent
}

func (s Snapshot) Altitude() float64 { return s.Position.Y() }
func (s Snapshot) Roll() float64     { return s.OrientationRate.X() }
func (s Snapshot) Yaw() float64      { return s.OrientationRate.Y() }
func (s Snapshot) Pitch() float64    { return s.OrientationRate.Z() }

type Model interface {
	Forces(v *Vehicle) Forces
}

type Integrator interface {
	Step(v *Vehicle, f Forces, dt float64)
}

type Contact interface {
	Resolve(v *Vehicle) ContactEvent
}

type Accumulator interface {
	Accumulate(v *Vehicle, dt float64)
}

// Controller computes rotor commands from the current state. Simulators
// without a controller fly the thrust last set through SetThrust.
type Controller interface {
	Compute(s Snapshot) Thrust
}

// Resettable is implemented by controllers and metrics with internal state.
type Resettable interface {
	Reset()
}

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

// Observer is called after every fixed step.
type Observer interface {
	OnStep(s Snapshot)
}

// Redrawer receives the "state changed" signal at display-update boundaries.
type Redrawer interface {
	Redraw(s Snapshot)
}

// RedrawFunc adapts a plain function to the Redrawer interface.
type RedrawFunc func(s Snapshot)

func (f RedrawFunc) Redraw(s Snapshot) { f(s) }

// Result summarizes one flight.
type Result struct {
	Final     Snapshot
	Telemetry []Snapshot
	Metrics   map[string]float64
	Steps     int
}
