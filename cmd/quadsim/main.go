package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/logging"
	"github.com/san-kum/quadsim/internal/storage"
)

var (
	settingsFile string
	dataDir      string
	logLevel     string

	settings *config.Settings
	log      zerolog.Logger

	// flight overrides
	configFile string
	planFile   string
	controller string
	seed       int64
	duration   float64
	kp         float64
	ki         float64
	kd         float64
	target     float64
	noSave     bool

	runs      int
	seedStart int64
	workers   int
	writeTo   string

	channels  []string
	channel   string
	phaseAxes []string
	width     int
	height    int
	profile   string
	limit     int
	syncIndex bool
	originLon float64
	originLat float64

	addr  string
	speed float64
	wait  time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "quadsim",
		Short:         "quadrotor flight simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.LoadSettings(settingsFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data") {
				s.DataDir = dataDir
				s.Index.Path = filepath.Join(dataDir, "index.db")
			}
			if cmd.Flags().Changed("log-level") {
				s.Log.Level = logLevel
			}
			settings = s
			log = logging.New(os.Stderr, s.Log.Level, s.Log.Format)
			if s.Log.Graylog != "" {
				gw, err := logging.Graylog(s.Log.Graylog)
				if err != nil {
					log.Warn().Err(err).Msg("logging to console only")
					return nil
				}
				log = logging.New(os.Stderr, s.Log.Level, s.Log.Format, gw)
			}
			return nil
		},
		RunE: runPicker,
	}

	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (default ./quadsim.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "./data", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "fly a preset or config file and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFlight,
	}
	flightFlags(runCmd)
	runCmd.Flags().StringVar(&planFile, "plan", "", "flight plan file (yaml)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	flyCmd := &cobra.Command{
		Use:   "fly [plan.yaml]",
		Short: "execute a flight plan file",
		Args:  cobra.ExactArgs(1),
		RunE:  flyPlan,
	}
	flightFlags(flyCmd)
	flyCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "fly interactively in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	flightFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	historyCmd := &cobra.Command{
		Use:   "history [name]",
		Short: "query the run index",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showHistory,
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	historyCmd.Flags().BoolVar(&syncIndex, "sync", false, "index runs missing from the database first")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot telemetry channels",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&channels, "channels", []string{"altitude", "thrust", "energy"}, "channels to plot")
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 10, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id] [file]",
		Short: "export run telemetry to JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [file]",
		Short: "export the ground track, or a channel profile, to SVG",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&profile, "profile", "", "plot this channel against time instead of the ground track")
	exportSVGCmd.Flags().IntVar(&width, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&height, "height", 600, "image height")

	exportGeoCmd := &cobra.Command{
		Use:   "export-geojson [run_id] [file]",
		Short: "export the ground track as GeoJSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportGeoJSON,
	}
	exportGeoCmd.Flags().Float64Var(&originLon, "lon", 0, "longitude of the start pad")
	exportGeoCmd.Flags().Float64Var(&originLat, "lat", 0, "latitude of the start pad")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a telemetry channel",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&channel, "channel", "altitude", "channel to analyse")
	analyzeCmd.Flags().StringSliceVar(&phaseAxes, "phase", nil, "draw a phase portrait of two channels, e.g. y,vy")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list flight presets",
		RunE:  listPresets,
	}

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [preset]",
		Short: "fly the same plan under several wind seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	flightFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 8, "number of seeds")
	ensembleCmd.Flags().Int64Var(&seedStart, "seed-start", 1, "first seed")
	ensembleCmd.Flags().IntVar(&workers, "workers", 0, "parallel flights (0 = one per CPU)")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search altitude-hold gains",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneGains,
	}
	flightFlags(tuneCmd)
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel flights (0 = one per CPU)")
	tuneCmd.Flags().StringVar(&writeTo, "write", "", "save the tuned config to this file")

	serveCmd := &cobra.Command{
		Use:   "serve [preset]",
		Short: "fly in real time and stream telemetry over a websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE:  serveFlight,
	}
	flightFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().Float64Var(&speed, "speed", 1, "simulated seconds per wall second")
	serveCmd.Flags().DurationVar(&wait, "wait", 0, "delay before take-off so clients can connect")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure simulator throughput",
		RunE:  benchSimulator,
	}

	rootCmd.AddCommand(runCmd, flyCmd, liveCmd, listCmd, historyCmd, plotCmd,
		exportCmd, exportJSONCmd, exportSVGCmd, exportGeoCmd, analyzeCmd, presetsCmd,
		ensembleCmd, tuneCmd, serveCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func flightFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "flight config file (yaml)")
	cmd.Flags().StringVar(&controller, "controller", "", "controller: none, pid, level, manual")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "wind seed")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration when there is no plan")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	cmd.Flags().Float64Var(&target, "target", config.DefaultTarget, "altitude target")
}

// flightConfig starts from the named preset (or the defaults), applies the
// config file and then any flag the user set explicitly.
func flightConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("kp") {
		cfg.ControllerParams.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.ControllerParams.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.ControllerParams.Kd = kd
	}
	if flags.Changed("target") {
		cfg.ControllerParams.Target = target
	}

	return cfg, cfg.Validate()
}

// component returns the root logger tagged with a subsystem name.
func component(name string) zerolog.Logger {
	return logging.Component(log, name)
}

func openStore() (*storage.Store, error) {
	st := storage.New(settings.DataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

// openIndex returns nil when the index is disabled.
func openIndex() (*storage.Index, error) {
	if !settings.Index.Enabled {
		return nil, nil
	}
	return dialIndex()
}

func dialIndex() (*storage.Index, error) {
	switch settings.Index.Driver {
	case "", "sqlite":
		return storage.OpenIndex(settings.Index.Path)
	case "postgres":
		return storage.OpenPostgresIndex(settings.Index.DSN)
	default:
		return nil, fmt.Errorf("unknown index driver: %s", settings.Index.Driver)
	}
}
