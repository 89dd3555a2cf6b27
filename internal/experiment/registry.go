package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/metrics"
)

// ManualStep is the thrust change per key press of the manual controller.
const ManualStep = 0.05

// ControllerFactory builds a controller from a flight config. A nil
// controller means the thrust set by the plan is flown unchanged.
type ControllerFactory func(cfg *config.Config) dynamo.Controller

type Registry struct {
	controllers map[string]ControllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]ControllerFactory),
	}

	r.controllers["none"] = func(*config.Config) dynamo.Controller { return nil }
	r.controllers["pid"] = func(cfg *config.Config) dynamo.Controller {
		return altitudeHold(cfg)
	}
	r.controllers["level"] = func(cfg *config.Config) dynamo.Controller {
		return control.NewLeveler(altitudeHold(cfg))
	}
	r.controllers["manual"] = func(cfg *config.Config) dynamo.Controller {
		m := control.NewManual(ManualStep)
		hover := cfg.Physics.Mass * cfg.Physics.Gravity / 4
		m.Set(dynamo.Thrust{hover, hover, hover, hover})
		return m
	}

	return r
}

func altitudeHold(cfg *config.Config) *control.AltitudeHold {
	cp := cfg.ControllerParams
	return control.NewAltitudeHold(cp.Kp, cp.Ki, cp.Kd, cp.Target, cfg.Physics.Gravity)
}

// Register adds or replaces a controller.
func (r *Registry) Register(name string, f ControllerFactory) {
	r.controllers[name] = f
}

func (r *Registry) GetController(name string, cfg *config.Config) (dynamo.Controller, error) {
	if name == "" {
		name = "none"
	}
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are attached to every experiment. Controllers that hold an
// altitude also get the tracking error.
func (r *Registry) DefaultMetrics(cfg *config.Config) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewEnergyUsed(),
		metrics.NewMechanicalEnergy(cfg.Physics.Gravity),
		metrics.NewThrustEffort(),
		metrics.NewStability(0.5),
		metrics.NewPeakAltitude(),
		metrics.NewTouchdownSpeed(),
	}
	switch cfg.Controller {
	case "pid", "level":
		ms = append(ms, metrics.NewAltitudeError(cfg.ControllerParams.Target))
	}
	return ms
}
