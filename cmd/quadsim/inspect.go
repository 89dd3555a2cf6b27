package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/quadsim/internal/analysis"
	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/experiment"
	"github.com/san-kum/quadsim/internal/export"
	"github.com/san-kum/quadsim/internal/storage"
	"github.com/san-kum/quadsim/internal/telemetry"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(settings.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tSEED\tCTRL\tFINAL (x, y, z)")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%s\t(%.2f, %.2f, %.2f)\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Seed,
			run.Controller,
			run.FinalX, run.FinalY, run.FinalZ,
		)
	}
	return w.Flush()
}

func showHistory(cmd *cobra.Command, args []string) error {
	ix, err := dialIndex()
	if err != nil {
		return err
	}
	defer ix.Close()

	if syncIndex {
		added, err := ix.Sync(storage.New(settings.DataDir))
		if err != nil {
			return err
		}
		log.Info().Int("added", added).Msg("index synced")
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	records, err := ix.Recent(name, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no indexed runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tTIME\tSEED\tCTRL\tFINAL Y\tMASS\tENERGY")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2f\t%.2f\t%.2f\n",
			r.RunID, r.RunAt.Format("2006-01-02 15:04:05"), r.Seed, r.Controller, r.FinalY, r.FinalMass, r.Energy)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []dynamo.Snapshot, error) {
	st := storage.New(settings.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadTelemetry(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no telemetry", runID)
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	rec := &telemetry.Recorder{Samples: samples}
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(samples))

	for _, ch := range channels {
		data, err := rec.Channel(ch)
		if err != nil {
			return err
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(ch),
		))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(settings.DataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	data := export.FromRun(meta, samples)
	if len(args) < 2 {
		return export.WriteJSON(os.Stdout, data)
	}
	if err := export.ExportJSON(args[1], data); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if profile != "" {
		svg, err = export.ProfileSVG(samples, "time", profile, width, height, "#00ff00")
		if err != nil {
			return err
		}
	} else {
		svg = export.GroundTrackSVG(samples, export.MissionPads(experiment.LiftPadMission()), width, height)
	}

	out := meta.ID + ".svg"
	if len(args) > 1 {
		out = args[1]
	}
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func exportGeoJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	origin := export.GeoOrigin{Lon: originLon, Lat: originLat}
	data, err := export.GroundTrackGeoJSON(samples, export.MissionPads(experiment.LiftPadMission()), origin)
	if err != nil {
		return err
	}

	out := meta.ID + ".geojson"
	if len(args) > 1 {
		out = args[1]
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return analysis.ErrTooShort
	}

	rec := &telemetry.Recorder{Samples: samples}
	data, err := rec.Channel(channel)
	if err != nil {
		return err
	}
	interval := samples[1].Time - samples[0].Time

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("channel: %s, %d samples every %.3fs\n\n", channel, len(data), interval)

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 1 {
		fmt.Println(asciigraph.Plot(ps[1:],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+channel+")"),
		))
		fmt.Println()
	}

	freq, mag, err := analysis.DominantFrequency(data, interval)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.3f hz (magnitude %.3f)\n", freq, mag)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1/freq)
	}
	fmt.Printf("rms: %.4f\n", analysis.RMS(data))

	if channel == "altitude" || channel == "y" {
		level := meta.Metrics["peak_altitude"] / 2
		if ups, err := analysis.Crossings(samples, channel, level); err == nil {
			fmt.Printf("upward crossings of %.2fm: %d\n", level, len(ups))
		}
	}

	if len(phaseAxes) == 2 {
		pp, err := analysis.NewPhasePortrait(samples, phaseAxes[0], phaseAxes[1])
		if err != nil {
			return err
		}
		fmt.Printf("\nphase portrait: %s vs %s\n", pp.XChannel, pp.YChannel)
		fmt.Println(pp.ASCII(70, 20))
	} else if len(phaseAxes) != 0 {
		return fmt.Errorf("--phase takes two channels, got %v", phaseAxes)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCONTROLLER\tDURATION\tSTART (x, y, z)\tSTEPS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.1fs\t(%.1f, %.1f, %.1f)\t%d\n",
			name, p.Controller, experiment.PlanDuration(p.Plan), p.Start.X, p.Start.Y, p.Start.Z, len(p.Plan))
	}
	return w.Flush()
}
