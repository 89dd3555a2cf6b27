package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/experiment"
	"github.com/san-kum/quadsim/internal/logging"
	"github.com/san-kum/quadsim/internal/viz"
)

// liveModel builds a live view. Without an explicit controller the vehicle
// is flown by hand from the keyboard.
func liveModel(cfg *config.Config, keepController bool) (viz.Model, error) {
	if !keepController {
		cfg.Controller = "manual"
	}
	exp, err := experiment.New(cfg, nil, component("simulator"))
	if err != nil {
		return viz.Model{}, err
	}

	manual, _ := exp.Controller().(*control.Manual)
	m := experiment.LiftPadMission()
	pads := []dynamo.Zone{m.Start, m.Lift, m.End}
	return viz.NewModel(cfg.Name, exp.GetSimulator(), manual, pads), nil
}

// logToFile moves logging off the terminal while the full-screen view runs.
func logToFile() (func(), error) {
	if err := os.MkdirAll(settings.DataDir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(settings.DataDir, "live.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	log = logging.New(f, settings.Log.Level, "json")
	return func() { f.Close() }, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := flightConfig(cmd, args)
	if err != nil {
		return err
	}
	done, err := logToFile()
	if err != nil {
		return err
	}
	defer done()
	m, err := liveModel(cfg, cmd.Flags().Changed("controller"))
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func runPicker(cmd *cobra.Command, args []string) error {
	done, err := logToFile()
	if err != nil {
		return err
	}
	defer done()

	picker := viz.NewPicker(config.ListPresets(), func(name string) (viz.Model, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return viz.Model{}, fmt.Errorf("unknown preset: %s", name)
		}
		return liveModel(cfg, false)
	})
	return viz.Run(picker)
}
