package optim

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/experiment"
)

// PIDRanges are the gain values tried for each term.
type PIDRanges struct {
	Kp, Ki, Kd []float64
}

func DefaultPIDRanges() PIDRanges {
	return PIDRanges{
		Kp: []float64{1, 2, 4, 6},
		Ki: []float64{0, 0.1, 0.2},
		Kd: []float64{1, 2, 3, 4},
	}
}

// TunePID searches altitude-hold gains on base, minimising the RMS distance
// from the target altitude. workers <= 0 flies one candidate per CPU.
func TunePID(ctx context.Context, base *config.Config, ranges PIDRanges, log zerolog.Logger, workers int) (map[string]float64, float64, error) {
	gs := NewGridSearch(
		[]string{"kp", "ki", "kd"},
		[][]float64{ranges.Kp, ranges.Ki, ranges.Kd},
	)
	if workers > 0 {
		gs.WithWorkers(workers)
	}
	reg := experiment.NewRegistry()

	return gs.Search(ctx, func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		if cfg.Controller != "level" {
			cfg.Controller = "pid"
		}
		cfg.ControllerParams.Kp = params["kp"]
		cfg.ControllerParams.Ki = params["ki"]
		cfg.ControllerParams.Kd = params["kd"]
		return experiment.New(cfg, reg, log)
	}, "altitude_rmse")
}
