package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/integrators"
	"github.com/san-kum/quadsim/internal/physics"
	"github.com/san-kum/quadsim/internal/telemetry"
)

// Experiment is one configured flight: a simulator with its controller,
// metrics and a telemetry recorder attached.
type Experiment struct {
	cfg        *config.Config
	simulator  *dynamo.Simulator
	controller dynamo.Controller
	recorder   *telemetry.Recorder
}

// New builds the simulator described by cfg. The wind is drawn from cfg.Seed.
func New(cfg *config.Config, reg *Registry, log zerolog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = NewRegistry()
	}

	ctrl, err := reg.GetController(cfg.Controller, cfg)
	if err != nil {
		return nil, err
	}

	p := cfg.Physics.Params()
	v := dynamo.NewVehicle(p, rand.New(rand.NewSource(cfg.Seed)))
	v.Position = mgl64.Vec3{cfg.Start.X, cfg.Start.Y, cfg.Start.Z}

	opts := []dynamo.Option{dynamo.WithLogger(log.With().Str("run", cfg.Name).Int64("seed", cfg.Seed).Logger())}
	if ctrl != nil {
		opts = append(opts, dynamo.WithController(ctrl))
	}

	s, err := dynamo.New(p, v,
		physics.NewQuadrotor(p),
		integrators.NewSemiImplicitEuler(),
		physics.NewGround(p),
		physics.NewPowerDraw(p),
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", cfg.Name, err)
	}

	for _, m := range reg.DefaultMetrics(cfg) {
		s.AddMetric(m)
	}

	rec := telemetry.NewRecorder(0)
	s.OnRedraw(rec)

	return &Experiment{cfg: cfg, simulator: s, controller: ctrl, recorder: rec}, nil
}

// Run executes the plan, or advances by the configured duration when the
// config has none.
func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	plan := e.cfg.Plan
	if len(plan) == 0 {
		plan = []config.Command{{Advance: e.cfg.Duration}}
	}

	err := Execute(ctx, e.simulator, plan)

	res := e.simulator.Result()
	res.Telemetry = append([]dynamo.Snapshot(nil), e.recorder.Samples...)
	return res, err
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}

func (e *Experiment) Controller() dynamo.Controller { return e.controller }

func (e *Experiment) Recorder() *telemetry.Recorder { return e.recorder }

// Factory returns an ensemble factory that builds this config under
// different seeds.
func Factory(cfg *config.Config, reg *Registry, log zerolog.Logger) dynamo.Factory {
	return func(seed int64) (*dynamo.Simulator, error) {
		c := cfg.Clone()
		c.Seed = seed
		e, err := New(c, reg, log)
		if err != nil {
			return nil, err
		}
		return e.simulator, nil
	}
}

// PlanFlight flies cfg's plan, or its duration when there is no plan.
func PlanFlight(cfg *config.Config) dynamo.Flight {
	plan := cfg.Plan
	if len(plan) == 0 {
		plan = []config.Command{{Advance: cfg.Duration}}
	}
	return func(ctx context.Context, s *dynamo.Simulator) error {
		return Execute(ctx, s, plan)
	}
}
