package dynamo

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

type Option func(*Simulator)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

// WithController makes the simulator ask c for rotor commands before every step.
func WithController(c Controller) Option {
	return func(s *Simulator) { s.controller = c }
}

// Simulator owns one vehicle and the simulation clock. It runs the fixed-step
// loop Model -> Integrator -> Contact -> Accumulator.
type Simulator struct {
	params     Params
	vehicle    *Vehicle
	model      Model
	integrator Integrator
	contact    Contact
	power      Accumulator
	controller Controller

	metrics   []Metric
	observers []Observer
	redrawers []Redrawer

	log         zerolog.Logger
	time        float64
	steps       int
	lastContact ContactEvent
}

func New(p Params, v *Vehicle, model Model, integ Integrator, contact Contact, power Accumulator, opts ...Option) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if v == nil || model == nil || integ == nil || contact == nil || power == nil {
		return nil, ErrMissingComponent
	}

	s := &Simulator{
		params:     p,
		vehicle:    v,
		model:      model,
		integrator: integ,
		contact:    contact,
		power:      power,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) OnRedraw(r Redrawer)    { s.redrawers = append(s.redrawers, r) }

func (s *Simulator) Params() Params { return s.params }

// Reset zeroes the kinematic state, restores the base mass and rewinds the
// clock. Redrawers are notified once.
func (s *Simulator) Reset() {
	s.vehicle.Reset()
	s.time = 0
	s.steps = 0
	s.lastContact = ContactEvent{}
	if r, ok := s.controller.(Resettable); ok {
		r.Reset()
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	s.log.Debug().Msg("vehicle reset")
	s.redraw()
}

// SetThrust stores the rotor commands. Missing trailing values default to
// the first one, so a single value gives symmetric thrust.
func (s *Simulator) SetThrust(t ...float64) error {
	if len(t) == 0 || len(t) > len(Thrust{}) {
		return fmt.Errorf("%w: got %d", ErrThrustArity, len(t))
	}

	var cmd Thrust
	for i := range cmd {
		if i < len(t) {
			cmd[i] = t[i]
		} else {
			cmd[i] = t[0]
		}
	}
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("%w: %v", err, t)
	}

	s.vehicle.Thrust = cmd
	return nil
}

// Step performs one fixed update of size Params.Dt.
func (s *Simulator) Step() error {
	v := s.vehicle
	dt := s.params.Dt

	if s.controller != nil {
		v.Thrust = s.controller.Compute(s.Snapshot()).Clamp()
	}

	f := s.model.Forces(v)
	s.integrator.Step(v, f, dt)
	ev := s.contact.Resolve(v)
	s.power.Accumulate(v, dt)

	s.time += dt
	s.steps++
	s.lastContact = ev

	if ev.LiftEngaged {
		s.log.Info().
			Float64("t", s.time).
			Float64("x", v.Position.X()).
			Float64("z", v.Position.Z()).
			Float64("mass", v.Mass).
			Msg("lift zone engaged")
	}

	if s.params.ValidateState && !v.IsFinite() {
		return &StepError{Step: s.steps, Time: s.time, Wrapped: ErrInvalidState}
	}

	snap := s.Snapshot()
	for _, m := range s.metrics {
		m.Observe(snap)
	}
	for _, o := range s.observers {
		o.OnStep(snap)
	}
	return nil
}

// Advance steps the simulation until duration seconds of simulated time have
// passed. Redrawers are notified every Params.UpdateDt and once at the end.
func (s *Simulator) Advance(duration float64) error {
	return s.advance(context.Background(), duration, nil)
}

// AdvanceContext is Advance with cancellation checked before every step.
func (s *Simulator) AdvanceContext(ctx context.Context, duration float64) error {
	return s.advance(ctx, duration, nil)
}

// Run resets metrics, advances by duration and collects a snapshot at every
// redraw boundary. It stops early when ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, duration float64) (*Result, error) {
	for _, m := range s.metrics {
		m.Reset()
	}

	startSteps := s.steps
	var telemetry []Snapshot
	err := s.advance(ctx, duration, func(snap Snapshot) {
		telemetry = append(telemetry, snap)
	})

	res := s.Result()
	res.Telemetry = telemetry
	res.Steps = s.steps - startSteps
	return res, err
}

// Result summarizes the current state and metric values.
func (s *Simulator) Result() *Result {
	res := &Result{
		Final:   s.Snapshot(),
		Metrics: make(map[string]float64, len(s.metrics)),
		Steps:   s.steps,
	}
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}

func (s *Simulator) advance(ctx context.Context, duration float64, sample func(Snapshot)) error {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, duration)
	}

	tol := s.params.Dt * 1e-9
	end := s.time + duration
	lastRedraw := s.time

	notify := func() {
		snap := s.redraw()
		if sample != nil {
			sample(snap)
		}
	}

	for s.time < end-tol {
		select {
		case <-ctx.Done():
			notify()
			return ctx.Err()
		default:
		}

		if err := s.Step(); err != nil {
			notify()
			return err
		}

		if s.time-lastRedraw >= s.params.UpdateDt-tol {
			notify()
			lastRedraw = s.time
		}
	}

	notify()
	return nil
}

func (s *Simulator) redraw() Snapshot {
	snap := s.Snapshot()
	for _, r := range s.redrawers {
		r.Redraw(snap)
	}
	return snap
}

func (s *Simulator) Snapshot() Snapshot {
	v := s.vehicle
	return Snapshot{
		Time:                 s.time,
		Position:             v.Position,
		Velocity:             v.Velocity,
		OrientationRate:      v.OrientationRate,
		OrientationAccelRate: v.OrientationAccelRate,
		Thrust:               v.Thrust,
		Mass:                 v.Mass,
		Energy:               v.Energy,
		Contact:              s.lastContact,
	}
}

func (s *Simulator) Altitude() float64 { return s.vehicle.Position.Y() }
func (s *Simulator) Roll() float64     { return s.vehicle.OrientationRate.X() }
func (s *Simulator) Yaw() float64      { return s.vehicle.OrientationRate.Y() }
func (s *Simulator) Pitch() float64    { return s.vehicle.OrientationRate.Z() }
func (s *Simulator) X() float64        { return s.vehicle.Position.X() }
func (s *Simulator) Y() float64        { return s.vehicle.Position.Y() }
func (s *Simulator) Z() float64        { return s.vehicle.Position.Z() }
func (s *Simulator) Time() float64     { return s.time }
func (s *Simulator) Steps() int        { return s.steps }
func (s *Simulator) Energy() float64   { return s.vehicle.Energy }
func (s *Simulator) Mass() float64     { return s.vehicle.Mass }
