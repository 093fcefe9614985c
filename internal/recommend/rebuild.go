// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/corpus"
	"github.com/tomtom215/songsim/internal/metrics"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
	"github.com/tomtom215/songsim/internal/recommend/storage"
)

// Pipeline is everything a rebuild needs: where the corpus comes from, how
// it is turned into a snapshot, where the result is persisted and where it
// is published. Store is optional.
type Pipeline struct {
	Loader  corpus.Loader
	Builder *snapshot.Builder
	Store   storage.Store
	Holder  *snapshot.Holder
}

// SetPipeline enables Rebuild. The holder is normally the same one the
// service reads from.
func (s *Service) SetPipeline(p *Pipeline) error {
	switch {
	case p == nil:
		return apperrors.NewConfigurationError("pipeline", "must not be nil")
	case p.Loader == nil:
		return apperrors.NewConfigurationError("pipeline.loader", "must not be nil")
	case p.Builder == nil:
		return apperrors.NewConfigurationError("pipeline.builder", "must not be nil")
	case p.Holder == nil:
		return apperrors.NewConfigurationError("pipeline.holder", "must not be nil")
	}
	if lang := p.Builder.Normalizer().Language(); lang != s.normalizer.Language() {
		return apperrors.NewConfigurationError("pipeline.builder",
			fmt.Sprintf("builds %q snapshots, queries are cleaned as %q", lang, s.normalizer.Language()))
	}
	s.rebuildMu.Lock()
	s.pipeline = p
	s.rebuildMu.Unlock()
	return nil
}

// Rebuild loads the corpus, builds a new snapshot generation, persists it
// and publishes it. Only one rebuild runs at a time; a concurrent call
// fails with ErrRebuildInProgress. Nothing is published on failure.
func (s *Service) Rebuild(ctx context.Context) (*snapshot.Snapshot, error) {
	if !s.rebuildMu.TryLock() {
		return nil, apperrors.ErrRebuildInProgress
	}
	defer s.rebuildMu.Unlock()
	return s.rebuildLocked(ctx)
}

// StartRebuild starts a rebuild in the background and returns once it has
// been accepted. The rebuild outlives ctx cancellation but not the
// configured rebuild timeout.
func (s *Service) StartRebuild(ctx context.Context) error {
	if !s.rebuildMu.TryLock() {
		return apperrors.ErrRebuildInProgress
	}
	if s.pipeline == nil {
		s.rebuildMu.Unlock()
		return apperrors.NewConfigurationError("pipeline", "rebuild is not configured")
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		defer s.rebuildMu.Unlock()
		if _, err := s.rebuildLocked(bg); err != nil {
			s.logger.Error().Err(err).Msg("background rebuild failed")
		}
	}()
	return nil
}

// rebuildLocked must be called with rebuildMu held.
func (s *Service) rebuildLocked(ctx context.Context) (snap *snapshot.Snapshot, err error) {
	p := s.pipeline
	if p == nil {
		return nil, apperrors.NewConfigurationError("pipeline", "rebuild is not configured")
	}

	start := time.Now()
	s.beginRebuild(start)
	defer func() {
		metrics.RecordBuild(time.Since(start), err)
		s.endRebuild(start, snap, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, s.config.Rebuild.Timeout)
	defer cancel()

	generation := p.Holder.NextGeneration()
	logger := s.logger.With().Int64("generation", generation).Logger()
	logger.Info().Msg("starting snapshot rebuild")

	stageStart := time.Now()
	records, err := p.Loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	elapsed := time.Since(stageStart)
	metrics.RecordBuildStage(snapshot.StageLoad, elapsed)
	logger.Info().
		Str("stage", snapshot.StageLoad).
		Int("documents", len(records)).
		Int64("duration_ms", elapsed.Milliseconds()).
		Msg("build stage complete")

	snap, err = p.Builder.Build(ctx, generation, documentsFromRecords(records))
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	if p.Store != nil {
		stageStart = time.Now()
		if err := p.Store.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
		elapsed = time.Since(stageStart)
		metrics.RecordBuildStage(snapshot.StageSave, elapsed)
		logger.Info().
			Str("stage", snapshot.StageSave).
			Str("store", p.Store.Name()).
			Int64("duration_ms", elapsed.Milliseconds()).
			Msg("build stage complete")
	}

	if err := p.Holder.Publish(snap); err != nil {
		return nil, fmt.Errorf("publish snapshot: %w", err)
	}
	s.purgeCache(snap.Generation)
	metrics.UpdateSnapshotGauges(snap.Generation, snap.Len(), snap.TFIDF.Vocabulary().Len(), snap.BuiltAt)

	logger.Info().
		Str("build_id", snap.BuildID).
		Int("documents", snap.Len()).
		Int("vocabulary", snap.TFIDF.Vocabulary().Len()).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("snapshot published")
	return snap, nil
}

// Publish makes an externally loaded snapshot current, for example one
// restored from the store at startup.
func (s *Service) Publish(snap *snapshot.Snapshot) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	if s.pipeline == nil {
		return apperrors.NewConfigurationError("pipeline", "publishing is not configured")
	}
	if err := s.checkLanguage(snap); err != nil {
		return err
	}
	if err := s.pipeline.Holder.Publish(snap); err != nil {
		return err
	}
	s.purgeCache(snap.Generation)
	metrics.UpdateSnapshotGauges(snap.Generation, snap.Len(), snap.TFIDF.Vocabulary().Len(), snap.BuiltAt)
	return nil
}

// checkLanguage rejects a snapshot cleaned with a different stopword set
// than the one Query applies to free text.
func (s *Service) checkLanguage(snap *snapshot.Snapshot) error {
	if snap == nil || snap.Language == s.normalizer.Language() {
		return nil
	}
	return apperrors.NewConfigurationError("tokenizer_language",
		fmt.Sprintf("snapshot generation %d was built for %q, service is configured for %q",
			snap.Generation, snap.Language, s.normalizer.Language()))
}

func (s *Service) beginRebuild(start time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.InProgress = true
	s.status.LastStartedAt = start.UTC()
}

func (s *Service) endRebuild(start time.Time, snap *snapshot.Snapshot, err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	s.status.InProgress = false
	s.status.LastFinishedAt = time.Now().UTC()
	s.status.LastDurationMS = time.Since(start).Milliseconds()
	if err != nil {
		s.status.LastError = err.Error()
		s.status.Failed++
		return
	}
	s.status.LastError = ""
	s.status.LastGeneration = snap.Generation
	s.status.Completed++
}

func documentsFromRecords(records []corpus.Record) []snapshot.Document {
	docs := make([]snapshot.Document, len(records))
	for i, r := range records {
		docs[i] = snapshot.Document{ID: i, Title: r.Title, Artist: r.Artist, Text: r.Text}
	}
	return docs
}
