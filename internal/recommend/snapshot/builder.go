// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/metrics"
	"github.com/tomtom215/songsim/internal/recommend/normalize"
	"github.com/tomtom215/songsim/internal/recommend/similarity"
	"github.com/tomtom215/songsim/internal/recommend/tfidf"
)

// Build stage names used in logs and metrics.
const (
	StageLoad       = "load"
	StageClean      = "clean"
	StageVectorize  = "vectorize"
	StageSimilarity = "similarity"
	StageSave       = "save"
)

// BuilderConfig holds the options of one build pass.
type BuilderConfig struct {
	Language      string
	MaxFeatures   int
	MinTermLength int
}

// Builder runs normalize, vectorize and similarity over a corpus.
type Builder struct {
	normalizer *normalize.Normalizer
	vectorizer *tfidf.Vectorizer
	logger     zerolog.Logger
	now        func() time.Time
}

// NewBuilder validates cfg and creates a Builder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBuilder(cfg BuilderConfig, logger zerolog.Logger) (*Builder, error) {
	n, err := normalize.New(cfg.Language, normalize.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	v, err := tfidf.New(tfidf.Config{
		MaxFeatures:   cfg.MaxFeatures,
		MinTermLength: cfg.MinTermLength,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &Builder{
		normalizer: n,
		vectorizer: v,
		logger:     logger.With().Str("component", "snapshot_builder").Logger(),
		now:        time.Now,
	}, nil
}

// Normalizer returns the normalizer used for documents, so queries can be
// cleaned the same way.
func (b *Builder) Normalizer() *normalize.Normalizer {
	return b.normalizer
}

// Build runs the pipeline over docs and assembles a snapshot with the given
// generation. Document ids are reassigned to their positions. Either a
// complete snapshot or an error is returned.
func (b *Builder) Build(ctx context.Context, generation int64, docs []Document) (*Snapshot, error) {
	buildID := uuid.New().String()
	logger := b.logger.With().
		Int64("generation", generation).
		Str("build_id", buildID).
		Logger()
	logger.Info().Int("documents", len(docs)).Msg("starting snapshot build")

	corpus := make([]Document, len(docs))
	texts := make([]string, len(docs))
	for i, d := range docs {
		d.ID = i
		corpus[i] = d
		texts[i] = d.Text
	}

	start := time.Now()
	cleaned, failed, err := b.normalizer.NormalizeCorpus(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("clean corpus: %w", err)
	}
	for i := range corpus {
		corpus[i].Cleaned = cleaned[i]
	}
	metrics.RecordDocumentFailures(failed)
	b.stageDone(logger, StageClean, start).Int("failed", failed).Msg("build stage complete")

	start = time.Now()
	tf, err := b.vectorizer.FitTransform(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("vectorize corpus: %w", err)
	}
	b.stageDone(logger, StageVectorize, start).
		Str("shape", fmt.Sprintf("(%d, %d)", tf.Len(), tf.Vocabulary().Len())).
		Msg("build stage complete")

	start = time.Now()
	sim, err := similarity.Build(ctx, tf.Rows())
	if err != nil {
		return nil, fmt.Errorf("compute similarity: %w", err)
	}
	b.stageDone(logger, StageSimilarity, start).
		Str("shape", fmt.Sprintf("(%d, %d)", sim.Len(), sim.Len())).
		Msg("build stage complete")

	return Assemble(generation, buildID, b.now().UTC(), b.normalizer.Language(), corpus, tf, sim)
}

func (b *Builder) stageDone(logger zerolog.Logger, stage string, start time.Time) *zerolog.Event {
	elapsed := time.Since(start)
	metrics.RecordBuildStage(stage, elapsed)
	return logger.Info().
		Str("stage", stage).
		Int64("duration_ms", elapsed.Milliseconds())
}
