package config

import "sort"

func preset(name string, edit func(c *Config)) *Config {
	c := DefaultConfig()
	c.Name = name
	edit(c)
	return c
}

func thrust(t ...float64) Command { return Command{Thrust: t} }
func advance(d float64) Command   { return Command{Advance: d} }

var Presets = map[string]*Config{
	"hover": preset("hover", func(c *Config) {
		c.Controller = "pid"
		c.Duration = 20
		c.Plan = []Command{advance(20)}
	}),
	"liftoff": preset("liftoff", func(c *Config) {
		c.Duration = 8
		c.Plan = []Command{
			thrust(3), advance(2),
			thrust(2.45), advance(3),
			thrust(2), advance(3),
		}
	}),
	"lift-pad": preset("lift-pad", func(c *Config) {
		c.Duration = 9
		c.Start = StartConfig{X: 10, Y: 2, Z: 10}
		c.Plan = []Command{
			thrust(0), advance(2),
			thrust(4.2), advance(3),
			thrust(3.5), advance(4),
		}
	}),
	"drift": preset("drift", func(c *Config) {
		c.Duration = 10
		c.Seed = 7
		c.Physics.WindScale = 1.0
		c.Start = StartConfig{Y: 5}
		c.Plan = []Command{thrust(2.45), advance(10)}
	}),
	"freefall": preset("freefall", func(c *Config) {
		c.Duration = 10
		c.Start = StartConfig{Y: 20}
		c.Physics.WindScale = 0
		c.Plan = []Command{thrust(0), advance(10)}
	}),
	"tilt": preset("tilt", func(c *Config) {
		c.Duration = 4
		c.Start = StartConfig{Y: 5}
		c.Plan = []Command{
			thrust(2.5, 2.45, 2.4, 2.45), advance(1),
			thrust(2.45), advance(3),
		}
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
