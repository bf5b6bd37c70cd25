// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command camrelay runs the live camera relay daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/camrelay/internal/api"
	"github.com/ManuGH/camrelay/internal/config"
	"github.com/ManuGH/camrelay/internal/health"
	xglog "github.com/ManuGH/camrelay/internal/log"
	"github.com/ManuGH/camrelay/internal/telemetry"
	"github.com/ManuGH/camrelay/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			os.Exit(runConfigCLI(os.Args[2:]))
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Safe defaults until the config is loaded.
	xglog.Configure(xglog.Config{Level: "info", Service: "camrelay", Version: version.Version})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := strings.TrimSpace(*configPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(config.EnvPrefix + "CONFIG"))
	}
	cfg, err := config.NewLoader(path, version.Version).Load()
	if err != nil {
		logger.Fatal().Err(err).Str("config", path).Msg("failed to load configuration")
	}
	xglog.Configure(xglog.Config{Level: cfg.Log.Level, Service: "camrelay", Version: version.Version})
	logger = xglog.WithComponent("daemon")

	if err := run(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("daemon stopped with error")
	}
	logger.Info().Msg("daemon stopped")
}

// run owns the daemon lifetime: it returns once ctx is cancelled and every
// stream session and the HTTP server have shut down.
func run(ctx context.Context, cfg config.AppConfig) error {
	logger := xglog.WithComponent("daemon")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "camrelay",
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	eventBus, busChecker, closeBus, err := buildBus(ctx, cfg.Bus)
	if err != nil {
		return err
	}
	defer closeBus()

	registry := buildRegistry(cfg, eventBus)

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewBinaryChecker("ffmpeg", cfg.FFmpeg.Bin))
	if busChecker != nil {
		hm.RegisterChecker(busChecker)
	}
	hm.RegisterChecker(health.NewCapacityChecker(registry.Len, 0))
	hm.SetDetails(func() map[string]any {
		return map[string]any{"active_streams": registry.Len(), "bus": cfg.Bus.Backend}
	})

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		return err
	}

	server := api.New(api.Config{
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		TracingService: tracingService(cfg),
	}, registry, eventBus, hm)

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.Server.ListenAddr).
			Str("bus", cfg.Bus.Backend).
			Str("ffmpeg", cfg.FFmpeg.Bin).
			Msg("camrelay listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		// Stop streams first so subscribers still connected see the lifecycle events.
		if err := registry.Close(sctx); err != nil {
			logger.Error().Err(err).Msg("stream sessions did not stop in time")
		}
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func tracingService(cfg config.AppConfig) string {
	if !cfg.Telemetry.Enabled {
		return ""
	}
	return "camrelay/http"
}
