package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

type PeakAltitude struct {
	peak float64
}

func NewPeakAltitude() *PeakAltitude { return &PeakAltitude{} }

func (p *PeakAltitude) Name() string { return "peak_altitude" }

func (p *PeakAltitude) Observe(s dynamo.Snapshot) {
	p.peak = math.Max(p.peak, s.Altitude())
}

func (p *PeakAltitude) Value() float64 { return p.peak }
func (p *PeakAltitude) Reset()         { p.peak = 0 }

// TouchdownSpeed records the largest speed at which the vehicle arrived on
// the ground after being airborne.
type TouchdownSpeed struct {
	airborne bool
	worst    float64
	prev     dynamo.Snapshot
	seen     bool
}

func NewTouchdownSpeed() *TouchdownSpeed { return &TouchdownSpeed{} }

func (t *TouchdownSpeed) Name() string { return "touchdown_speed" }

func (t *TouchdownSpeed) Observe(s dynamo.Snapshot) {
	if t.seen && t.airborne && s.Contact.Grounded {
		// contact zeroes vy, so the impact speed is the one before the step
		t.worst = math.Max(t.worst, t.prev.Velocity.Len())
	}
	t.airborne = !s.Contact.Grounded
	t.prev = s
	t.seen = true
}

func (t *TouchdownSpeed) Value() float64 { return t.worst }

func (t *TouchdownSpeed) Reset() {
	*t = TouchdownSpeed{}
}

// AltitudeError is the root-mean-square distance from a target altitude.
type AltitudeError struct {
	Target  float64
	sumSq   float64
	samples int
}

func NewAltitudeError(target float64) *AltitudeError {
	return &AltitudeError{Target: target}
}

func (a *AltitudeError) Name() string { return "altitude_rmse" }

func (a *AltitudeError) Observe(s dynamo.Snapshot) {
	d := s.Altitude() - a.Target
	a.sumSq += d * d
	a.samples++
}

func (a *AltitudeError) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return math.Sqrt(a.sumSq / float64(a.samples))
}

func (a *AltitudeError) Reset() {
	a.sumSq = 0
	a.samples = 0
}
