package experiment

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/dynamo"
)

// Execute runs a flight plan against s, one command at a time. It stops at
// the first failing command or when ctx is cancelled.
func Execute(ctx context.Context, s *dynamo.Simulator, plan []config.Command) error {
	for i, cmd := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch {
		case cmd.Reset:
			s.Reset()
		case cmd.Thrust != nil:
			err = s.SetThrust(cmd.Thrust...)
		default:
			err = s.AdvanceContext(ctx, cmd.Advance)
		}
		if err != nil {
			return fmt.Errorf("plan step %d: %w", i, err)
		}
	}
	return nil
}

// PlanDuration is the simulated time a plan covers, ignoring resets.
func PlanDuration(plan []config.Command) float64 {
	total := 0.0
	for _, cmd := range plan {
		total += cmd.Advance
	}
	return total
}

// LoadPlan reads a YAML sequence of commands, each one of
// {thrust: [3]}, {advance: 2} or {reset: true}.
func LoadPlan(path string) ([]config.Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plan []config.Command
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}

	probe := config.DefaultConfig()
	probe.Plan = plan
	if err := probe.Validate(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return plan, nil
}
