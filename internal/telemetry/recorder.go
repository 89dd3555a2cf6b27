package telemetry

import (
	"fmt"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Channels lists the names accepted by Channel and Value.
var Channels = []string{
	"time", "x", "y", "z",
	"vx", "vy", "vz",
	"roll", "yaw", "pitch",
	"thrust", "mass", "energy",
}

// Value extracts one named channel from a snapshot.
func Value(s dynamo.Snapshot, name string) (float64, error) {
	switch name {
	case "time":
		return s.Time, nil
	case "x":
		return s.Position.X(), nil
	case "y", "altitude":
		return s.Position.Y(), nil
	case "z":
		return s.Position.Z(), nil
	case "vx":
		return s.Velocity.X(), nil
	case "vy":
		return s.Velocity.Y(), nil
	case "vz":
		return s.Velocity.Z(), nil
	case "roll":
		return s.Roll(), nil
	case "yaw":
		return s.Yaw(), nil
	case "pitch":
		return s.Pitch(), nil
	case "thrust":
		return s.Thrust.Total(), nil
	case "mass":
		return s.Mass, nil
	case "energy":
		return s.Energy, nil
	default:
		return 0, fmt.Errorf("unknown channel: %s", name)
	}
}

// Recorder keeps the snapshots it is asked to redraw, one per simulated
// instant. A redraw at the same time as the previous one replaces it.
type Recorder struct {
	Samples []dynamo.Snapshot
	limit   int
}

// NewRecorder keeps at most limit samples, dropping the oldest. A limit of
// zero keeps everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) Redraw(s dynamo.Snapshot) {
	if n := len(r.Samples); n > 0 && r.Samples[n-1].Time == s.Time {
		r.Samples[n-1] = s
		return
	}
	r.Samples = append(r.Samples, s)
	if r.limit > 0 && len(r.Samples) > r.limit {
		r.Samples = r.Samples[len(r.Samples)-r.limit:]
	}
}

func (r *Recorder) Channel(name string) ([]float64, error) {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		v, err := Value(s, name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *Recorder) Last() (dynamo.Snapshot, bool) {
	if len(r.Samples) == 0 {
		return dynamo.Snapshot{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}

func (r *Recorder) Reset() {
	r.Samples = r.Samples[:0]
}
