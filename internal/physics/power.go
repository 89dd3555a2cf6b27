package physics

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// PowerDraw integrates Coef·Σ T^1.5 over time into the vehicle's energy.
type PowerDraw struct {
	Coef float64
}

func NewPowerDraw(p dynamo.Params) *PowerDraw {
	return &PowerDraw{Coef: p.PowerCoef}
}

// Power returns the instantaneous draw for a thrust command.
func (d *PowerDraw) Power(t dynamo.Thrust) float64 {
	sum := 0.0
	for _, ti := range t {
		sum += math.Pow(ti, 1.5)
	}
	return d.Coef * sum
}

func (d *PowerDraw) Accumulate(v *dynamo.Vehicle, dt float64) {
	v.Energy += d.Power(v.Thrust) * dt
}
