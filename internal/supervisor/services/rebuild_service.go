// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
)

// Rebuilder is the part of recommend.Service the rebuild loop drives.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*snapshot.Snapshot, error)
	Ready() bool
}

// RebuildServiceConfig controls when rebuilds happen.
type RebuildServiceConfig struct {
	// OnStartup builds a snapshot when the service starts and none is
	// published yet, e.g. because nothing was persisted.
	OnStartup bool

	// Interval between periodic rebuilds. Zero disables them.
	Interval time.Duration
}

// RebuildService runs the startup and periodic snapshot rebuilds. Each
// rebuild saves to the store and publishes atomically inside the
// Rebuilder; a failed rebuild leaves the current snapshot serving.
type RebuildService struct {
	rebuilder Rebuilder
	config    RebuildServiceConfig
	logger    zerolog.Logger
	name      string
}

// NewRebuildService creates the service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRebuildService(rebuilder Rebuilder, cfg RebuildServiceConfig, logger zerolog.Logger) *RebuildService {
	return &RebuildService{
		rebuilder: rebuilder,
		config:    cfg,
		logger:    logger.With().Str("service", "rebuild").Logger(),
		name:      "rebuild-service",
	}
}

// Serve implements suture.Service.
func (s *RebuildService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Bool("ready", s.rebuilder.Ready()).
		Msg("rebuild service starting")

	if s.config.OnStartup && !s.rebuilder.Ready() {
		s.logger.Info().Msg("no snapshot published, building on startup")
		s.rebuild(ctx, "startup")
	}

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("rebuild service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.rebuild(ctx, "scheduled")
		}
	}
}

func (s *RebuildService) rebuild(ctx context.Context, trigger string) {
	start := time.Now()
	snap, err := s.rebuilder.Rebuild(ctx)
	switch {
	case err == nil:
		s.logger.Info().
			Str("trigger", trigger).
			Int64("generation", snap.Generation).
			Int("documents", snap.Len()).
			Dur("duration", time.Since(start)).
			Msg("rebuild complete")
	case errors.Is(err, apperrors.ErrRebuildInProgress):
		s.logger.Info().Str("trigger", trigger).Msg("rebuild skipped, another one is running")
	case ctx.Err() != nil:
		s.logger.Info().Str("trigger", trigger).Msg("rebuild interrupted by shutdown")
	default:
		s.logger.Error().Err(err).Str("trigger", trigger).Msg("rebuild failed, keeping current snapshot")
	}
}

// String implements fmt.Stringer.
func (s *RebuildService) String() string {
	return s.name
}
