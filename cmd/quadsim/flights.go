package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/experiment"
	"github.com/san-kum/quadsim/internal/optim"
	"github.com/san-kum/quadsim/internal/storage"
	"github.com/san-kum/quadsim/internal/telemetry"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runFlight(cmd *cobra.Command, args []string) error {
	cfg, err := flightConfig(cmd, args)
	if err != nil {
		return err
	}
	if planFile != "" {
		plan, err := experiment.LoadPlan(planFile)
		if err != nil {
			return err
		}
		cfg.Plan = plan
	}
	return fly(cfg)
}

func flyPlan(cmd *cobra.Command, args []string) error {
	cfg, err := flightConfig(cmd, nil)
	if err != nil {
		return err
	}
	plan, err := experiment.LoadPlan(args[0])
	if err != nil {
		return err
	}
	cfg.Plan = plan
	if cfg.Name == "default" {
		cfg.Name = "plan"
	}
	return fly(cfg)
}

// attachTelemetry streams redraws to InfluxDB, or to the gzip backup file
// when the server cannot be reached. The returned func flushes and closes.
func attachTelemetry(ctx context.Context, s *dynamo.Simulator, run string) func() {
	inf := settings.Influx
	if !inf.Enabled {
		return func() {}
	}

	epoch := time.Now()
	client, err := telemetry.Dial(ctx, inf.URL, inf.Token, inf.Org, inf.Bucket, component("telemetry"))
	if err == nil {
		sink := telemetry.NewInfluxSink(client.Writer(), run, epoch, component("telemetry"))
		s.OnRedraw(sink)
		return func() {
			sink.Close()
			client.Close()
		}
	}

	log.Warn().Err(err).Msg("influx unavailable")
	if inf.BackupPath == "" {
		return func() {}
	}
	backup, err := telemetry.OpenBackup(inf.BackupPath)
	if err != nil {
		log.Error().Err(err).Str("path", inf.BackupPath).Msg("cannot open telemetry backup")
		return func() {}
	}
	sink := telemetry.NewInfluxSink(backup, run, epoch, component("telemetry"))
	s.OnRedraw(sink)
	log.Info().Str("path", inf.BackupPath).Msg("writing telemetry to backup file")
	return func() {
		sink.Close()
		if err := backup.Close(); err != nil {
			log.Error().Err(err).Msg("telemetry backup")
		}
	}
}

func fly(cfg *config.Config) error {
	ctx, cancel := signalContext()
	defer cancel()

	exp, err := experiment.New(cfg, nil, component("simulator"))
	if err != nil {
		return err
	}
	closeTelemetry := attachTelemetry(ctx, exp.GetSimulator(), cfg.Name)

	fmt.Printf("flying %s (controller %s, seed %d)...\n", cfg.Name, cfg.Controller, cfg.Seed)
	start := time.Now()
	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)
	closeTelemetry()
	if runErr != nil {
		return runErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d, simulated: %.2fs\n", result.Steps, result.Final.Time)
	printFinal(result.Final)

	if cfg.Name == "lift-pad" {
		o := experiment.LiftPadMission().Evaluate(result.Final, cfg.Physics.Mass)
		fmt.Printf("mission: landed=%t end_pad=%t lift=%t distance=%.2fm success=%t\n",
			o.Landed, o.OnEndPad, o.LiftCollected, o.Distance, o.Success())
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if noSave {
		return nil
	}
	return saveRun(cfg, result)
}

func printFinal(s dynamo.Snapshot) {
	fmt.Printf("final position: (%.3f, %.3f, %.3f)\n", s.Position.X(), s.Position.Y(), s.Position.Z())
	fmt.Printf("final mass: %.3f kg, energy: %.3f J, grounded: %t\n", s.Mass, s.Energy, s.Contact.Grounded)
}

func saveRun(cfg *config.Config, result *dynamo.Result) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	meta, err := st.Save(storage.RunInfo{
		Name:       cfg.Name,
		Seed:       cfg.Seed,
		Dt:         cfg.Physics.Dt,
		Controller: cfg.Controller,
	}, result)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", meta.ID)

	ix, err := openIndex()
	if err != nil {
		logger := component("storage")
		logger.Warn().Err(err).Msg("run index unavailable")
		return nil
	}
	if ix == nil {
		return nil
	}
	defer ix.Close()
	if err := ix.Record(meta); err != nil {
		logger := component("storage")
		logger.Warn().Err(err).Str("run", meta.ID).Msg("could not index run")
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := flightConfig(cmd, args)
	if err != nil {
		return err
	}
	if runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", runs)
	}

	ctx, cancel := signalContext()
	defer cancel()

	ens := dynamo.NewEnsemble(experiment.Factory(cfg, nil, component("simulator")), runs, seedStart).
		WithWorkers(workers)
	start := time.Now()
	results, err := ens.Run(ctx, experiment.PlanFlight(cfg))
	if err != nil {
		return err
	}

	fmt.Printf("ensemble %s: %d seeds in %v\n\n", cfg.Name, runs, time.Since(start))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tX\tY\tZ\tMASS\tENERGY\tGROUNDED")
	var xs, zs []float64
	for i, r := range results {
		f := r.Final
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%.3f\t%.2f\t%.2f\t%t\n",
			seedStart+int64(i), f.Position.X(), f.Position.Y(), f.Position.Z(), f.Mass, f.Energy, f.Contact.Grounded)
		xs = append(xs, f.Position.X())
		zs = append(zs, f.Position.Z())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mx, sx := meanStd(xs)
	mz, sz := meanStd(zs)
	fmt.Printf("\nlanding point: x %.3f ± %.3f, z %.3f ± %.3f\n", mx, sx, mz, sz)
	return nil
}

func meanStd(v []float64) (float64, float64) {
	if len(v) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	mean := sum / float64(len(v))
	var sq float64
	for _, x := range v {
		sq += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(sq / float64(len(v)))
}

func tuneGains(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"hover"}
	}
	cfg, err := flightConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	ranges := optim.DefaultPIDRanges()
	fmt.Printf("tuning %s over %d gain sets...\n",
		cfg.Name, len(ranges.Kp)*len(ranges.Ki)*len(ranges.Kd))

	start := time.Now()
	best, score, err := optim.TunePID(ctx, cfg, ranges, component("optim"), workers)
	if err != nil {
		return err
	}

	fmt.Printf("done in %v\n", time.Since(start))
	fmt.Printf("kp=%.3f ki=%.3f kd=%.3f altitude_rmse=%.4f\n", best["kp"], best["ki"], best["kd"], score)

	if writeTo == "" {
		return nil
	}
	tuned := cfg.Clone()
	if tuned.Controller != "level" {
		tuned.Controller = "pid"
	}
	tuned.ControllerParams.Kp = best["kp"]
	tuned.ControllerParams.Ki = best["ki"]
	tuned.ControllerParams.Kd = best["kd"]
	if err := config.Save(writeTo, tuned); err != nil {
		return err
	}
	fmt.Printf("saved %s\n", writeTo)
	return nil
}

func benchSimulator(cmd *cobra.Command, args []string) error {
	durations := []float64{1, 10, 60}
	dts := []float64{0.005, 0.01, 0.025}

	fmt.Println("benchmarking hover flight")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, dt := range dts {
			cfg := config.GetPreset("hover")
			cfg.Physics.Dt = dt
			cfg.Duration = dur
			cfg.Plan = nil

			exp, err := experiment.New(cfg, nil, component("simulator"))
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.0fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, dt, result.Steps, elapsed, float64(result.Steps)/elapsed.Seconds())
		}
	}

	return w.Flush()
}
