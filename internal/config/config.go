package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/quadsim/internal/dynamo"
)

const (
	DefaultDuration = 10.0
	DefaultSeed     = 1
	DefaultKp       = 4.0
	DefaultKi       = 0.2
	DefaultKd       = 3.0
	DefaultTarget   = 5.0
)

type Config struct {
	Name             string           `yaml:"name"`
	Controller       string           `yaml:"controller"`
	Duration         float64          `yaml:"duration"`
	Seed             int64            `yaml:"seed"`
	Start            StartConfig      `yaml:"start"`
	Physics          PhysicsConfig    `yaml:"physics"`
	ControllerParams ControllerConfig `yaml:"controller_params"`
	Plan             []Command        `yaml:"plan,omitempty"`
}

// StartConfig places the vehicle before the flight begins.
type StartConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type PhysicsConfig struct {
	Dt             float64    `yaml:"dt"`
	UpdateDt       float64    `yaml:"update_dt"`
	Size           float64    `yaml:"size"`
	Mass           float64    `yaml:"mass"`
	LiftMass       float64    `yaml:"lift_mass"`
	Gravity        float64    `yaml:"gravity"`
	AirDensity     float64    `yaml:"air_density"`
	DragShape      float64    `yaml:"drag_shape"`
	GroundFriction float64    `yaml:"ground_friction"`
	PowerCoef      float64    `yaml:"power_coef"`
	WindScale      float64    `yaml:"wind_scale"`
	ArmRatio       float64    `yaml:"arm_ratio"`
	CgRatio        float64    `yaml:"cg_ratio"`
	LiftZone       ZoneConfig `yaml:"lift_zone"`
}

type ZoneConfig struct {
	X         float64 `yaml:"x"`
	Z         float64 `yaml:"z"`
	HalfWidth float64 `yaml:"half_width"`
}

type ControllerConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Target float64 `yaml:"target"`
}

// Command is one line of a flight plan. Exactly one of Thrust, Advance or
// Reset is expected to be set.
type Command struct {
	Thrust  []float64 `yaml:"thrust,flow,omitempty"`
	Advance float64   `yaml:"advance,omitempty"`
	Reset   bool      `yaml:"reset,omitempty"`
}

func PhysicsFromParams(p dynamo.Params) PhysicsConfig {
	return PhysicsConfig{
		Dt:             p.Dt,
		UpdateDt:       p.UpdateDt,
		Size:           p.Size,
		Mass:           p.Mass,
		LiftMass:       p.LiftMass,
		Gravity:        p.Gravity,
		AirDensity:     p.AirDensity,
		DragShape:      p.DragShape,
		GroundFriction: p.GroundFriction,
		PowerCoef:      p.PowerCoef,
		WindScale:      p.WindScale,
		ArmRatio:       p.ArmRatio,
		CgRatio:        p.CgRatio,
		LiftZone: ZoneConfig{
			X:         p.LiftZone.X,
			Z:         p.LiftZone.Z,
			HalfWidth: p.LiftZone.HalfWidth,
		},
	}
}

// Params converts the physics section to simulator constants.
func (pc PhysicsConfig) Params() dynamo.Params {
	p := dynamo.DefaultParams()
	p.Dt = pc.Dt
	p.UpdateDt = pc.UpdateDt
	p.Size = pc.Size
	p.Mass = pc.Mass
	p.LiftMass = pc.LiftMass
	p.Gravity = pc.Gravity
	p.AirDensity = pc.AirDensity
	p.DragShape = pc.DragShape
	p.GroundFriction = pc.GroundFriction
	p.PowerCoef = pc.PowerCoef
	p.WindScale = pc.WindScale
	p.ArmRatio = pc.ArmRatio
	p.CgRatio = pc.CgRatio
	p.LiftZone = dynamo.Zone{X: pc.LiftZone.X, Z: pc.LiftZone.Z, HalfWidth: pc.LiftZone.HalfWidth}
	return p
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "default",
		Controller: "none",
		Duration:   DefaultDuration,
		Seed:       DefaultSeed,
		Physics:    PhysicsFromParams(dynamo.DefaultParams()),
		ControllerParams: ControllerConfig{
			Kp:     DefaultKp,
			Ki:     DefaultKi,
			Kd:     DefaultKd,
			Target: DefaultTarget,
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Physics.Params().Validate(); err != nil {
		return err
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must be non-negative, got %f", c.Duration)
	}
	for i, cmd := range c.Plan {
		set := 0
		if cmd.Thrust != nil {
			set++
		}
		if cmd.Advance != 0 {
			set++
		}
		if cmd.Reset {
			set++
		}
		if set != 1 {
			return fmt.Errorf("plan step %d: expected exactly one of thrust, advance or reset", i)
		}
	}
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets can be modified safely.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Plan = make([]Command, len(c.Plan))
	for i, cmd := range c.Plan {
		cp.Plan[i] = cmd
		if cmd.Thrust != nil {
			cp.Plan[i].Thrust = append([]float64(nil), cmd.Thrust...)
		}
	}
	return &cp
}

func (c *Config) GetControllerParams() map[string]float64 {
	return map[string]float64{
		"kp":     c.ControllerParams.Kp,
		"ki":     c.ControllerParams.Ki,
		"kd":     c.ControllerParams.Kd,
		"target": c.ControllerParams.Target,
	}
}
