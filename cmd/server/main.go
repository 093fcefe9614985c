// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/tomtom215/songsim/internal/api"
	"github.com/tomtom215/songsim/internal/config"
	"github.com/tomtom215/songsim/internal/logging"
	"github.com/tomtom215/songsim/internal/metrics"
	"github.com/tomtom215/songsim/internal/middleware"
	"github.com/tomtom215/songsim/internal/supervisor"
	"github.com/tomtom215/songsim/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Version = version
	if cfg.Logging.File != "" {
		logFile, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			logging.Fatal().Err(err).Str("file", cfg.Logging.File).Msg("Failed to open log file")
		}
		defer logFile.Close()
		logCfg.FileOutput = logFile
	}
	logging.Init(logCfg)

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("corpus", cfg.Corpus.Path).
		Str("snapshot_store", cfg.Snapshot.Store).
		Msg("Starting songsim with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := logging.Logger()

	recommendComponents, err := initRecommend(ctx, cfg, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation service")
	}
	defer func() {
		if err := recommendComponents.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing snapshot store")
		}
	}()

	if !recommendComponents.Loaded && !cfg.Rebuild.OnStartup {
		logging.Warn().Msg("No snapshot loaded and REBUILD_ON_STARTUP=false; recommendations stay unavailable until a rebuild is requested")
	}

	// Supervisor events go through the zerolog-backed slog adapter
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Data layer services
	addRecommendServices(tree, cfg, recommendComponents, logger)

	// API layer services
	perf := middleware.NewPerformanceMonitor(middleware.DefaultMaxSamples, middleware.DefaultSlowThreshold)
	handler := api.NewHandler(recommendComponents.Service, perf, api.DefaultRequestTimeout)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security), perf)
	server := api.NewServer(cfg.Server.Addr(), router.Setup(), cfg.Server.Timeout)

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr(), services.DefaultShutdownTimeout, logger))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("songsim stopped gracefully")
}
