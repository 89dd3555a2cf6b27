package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/experiment"
	"github.com/san-kum/quadsim/internal/telemetry"
)

// pacer holds redraws back so simulated time runs at speed times wall time.
func pacer(ctx context.Context, speed float64) dynamo.RedrawFunc {
	start := time.Now()
	return func(s dynamo.Snapshot) {
		due := start.Add(time.Duration(s.Time / speed * float64(time.Second)))
		select {
		case <-time.After(time.Until(due)):
		case <-ctx.Done():
		}
	}
}

func serveFlight(cmd *cobra.Command, args []string) error {
	cfg, err := flightConfig(cmd, args)
	if err != nil {
		return err
	}
	if speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", speed)
	}

	ctx, cancel := signalContext()
	defer cancel()

	exp, err := experiment.New(cfg, nil, component("simulator"))
	if err != nil {
		return err
	}
	hub := telemetry.NewHub(cfg.Name, component("stream"))
	defer hub.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	defer func() {
		shutdown, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		_ = srv.Shutdown(shutdown)
	}()

	log.Info().Str("addr", addr).Str("run", cfg.Name).Msg("streaming on /ws")
	if wait > 0 {
		select {
		case <-time.After(wait):
		case err := <-serveErr:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s := exp.GetSimulator()
	s.OnRedraw(hub)
	s.OnRedraw(pacer(ctx, speed))

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("subscribers", hub.Subscribers()).
		Int("dropped", hub.Dropped()).
		Float64("t", result.Final.Time).
		Msg("flight finished")
	printFinal(result.Final)
	return nil
}
