package metrics

import (
	"github.com/san-kum/quadsim/internal/dynamo"
)

// ThrustEffort is the mean summed rotor command over all observed steps.
type ThrustEffort struct {
	name    string
	sum     float64
	samples int
}

func NewThrustEffort() *ThrustEffort {
	return &ThrustEffort{
		name: "thrust_effort",
	}
}

func (c *ThrustEffort) Name() string {
	return c.name
}

func (c *ThrustEffort) Observe(s dynamo.Snapshot) {
	c.sum += s.Thrust.Total()
	c.samples++
}

func (c *ThrustEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ThrustEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
