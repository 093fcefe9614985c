// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/config"
	"github.com/tomtom215/songsim/internal/corpus"
	"github.com/tomtom215/songsim/internal/recommend"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
	"github.com/tomtom215/songsim/internal/recommend/storage"
	"github.com/tomtom215/songsim/internal/supervisor"
	"github.com/tomtom215/songsim/internal/supervisor/services"
)

// RecommendComponents holds the recommendation service and what it owns.
type RecommendComponents struct {
	Service *recommend.Service
	Store   storage.Store

	// Loaded is true when a persisted snapshot was published at startup.
	Loaded bool
}

// Close releases the snapshot store.
func (c *RecommendComponents) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// initRecommend creates the service and its rebuild pipeline, then tries
// to restore the persisted snapshot. Load failures are logged and leave
// the service unready; only configuration problems are returned.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	holder := snapshot.NewHolder()

	svc, err := recommend.NewService(cfg.ServiceConfig(), holder, logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation service: %w", err)
	}

	loader, err := corpus.New(cfg.CorpusLoaderConfig())
	if err != nil {
		return nil, fmt.Errorf("create corpus loader: %w", err)
	}

	builder, err := snapshot.NewBuilder(cfg.BuilderConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("create snapshot builder: %w", err)
	}

	store, err := storage.Open(cfg.Snapshot.Store, cfg.Snapshot.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	components := &RecommendComponents{Service: svc, Store: store}

	if err := svc.SetPipeline(&recommend.Pipeline{
		Loader:  loader,
		Builder: builder,
		Store:   store,
		Holder:  holder,
	}); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("configure rebuild pipeline: %w", err)
	}

	logger.Info().
		Str("corpus", cfg.Corpus.Path).
		Str("loader", cfg.Corpus.Loader).
		Str("store", store.Name()).
		Str("snapshot_path", cfg.Snapshot.Path).
		Msg("recommendation pipeline configured")

	if cfg.Snapshot.LoadOnStartup {
		components.Loaded = restoreSnapshot(ctx, svc, store, logger)
	}
	return components, nil
}

// restoreSnapshot publishes the persisted snapshot and reports whether it did.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func restoreSnapshot(ctx context.Context, svc *recommend.Service, store storage.Store, logger zerolog.Logger) bool {
	snap, err := store.Load(ctx)
	switch {
	case err == nil:
	case apperrors.IsNotFound(err):
		logger.Info().Str("store", store.Name()).Msg("no persisted snapshot found")
		return false
	case errors.Is(err, apperrors.ErrSnapshotIntegrity):
		logger.Error().Err(err).Str("store", store.Name()).Msg("persisted snapshot failed integrity check, not serving it")
		return false
	default:
		logger.Error().Err(err).Str("store", store.Name()).Msg("failed to load persisted snapshot")
		return false
	}

	if err := svc.Publish(snap); err != nil {
		logger.Error().Err(err).Int64("generation", snap.Generation).Msg("failed to publish persisted snapshot")
		return false
	}

	info := snap.Info()
	logger.Info().
		Int64("generation", info.Generation).
		Str("build_id", info.BuildID).
		Int("documents", info.Documents).
		Time("built_at", info.BuiltAt).
		Msg("persisted snapshot restored")
	return true
}

// addRecommendServices registers the rebuild loop and cache janitor in
// the data layer.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func addRecommendServices(tree *supervisor.SupervisorTree, cfg *config.Config, c *RecommendComponents, logger zerolog.Logger) {
	tree.AddDataService(services.NewRebuildService(c.Service, services.RebuildServiceConfig{
		OnStartup: cfg.Rebuild.OnStartup,
		Interval:  cfg.Rebuild.Interval,
	}, logger))

	if cfg.Recommend.CacheEnabled {
		tree.AddDataService(services.NewCacheJanitorService(c.Service, cfg.Recommend.CacheTTL, logger))
	}
}
