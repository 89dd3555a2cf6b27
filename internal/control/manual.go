package control

import "github.com/san-kum/quadsim/internal/dynamo"

// Manual passes a thrust command set by the user to the simulator.
// Used by the live view's keyboard bindings.
type Manual struct {
	Thrust dynamo.Thrust
	Step   float64
}

func NewManual(step float64) *Manual {
	return &Manual{Step: step}
}

// Throttle changes all four rotors by n steps.
func (c *Manual) Throttle(n int) {
	for i := range c.Thrust {
		c.Nudge(i, n)
	}
}

// Nudge changes one rotor by n steps, never below zero.
func (c *Manual) Nudge(rotor, n int) {
	if rotor < 0 || rotor >= len(c.Thrust) {
		return
	}
	c.Thrust[rotor] += float64(n) * c.Step
	if c.Thrust[rotor] < 0 {
		c.Thrust[rotor] = 0
	}
}

// Set replaces the command; invalid commands are ignored.
func (c *Manual) Set(t dynamo.Thrust) {
	if t.Validate() != nil {
		return
	}
	c.Thrust = t
}

func (c *Manual) Compute(dynamo.Snapshot) dynamo.Thrust {
	return c.Thrust
}
