// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package recommend

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/cache"
	"github.com/tomtom215/songsim/internal/logging"
	"github.com/tomtom215/songsim/internal/metrics"
	"github.com/tomtom215/songsim/internal/recommend/normalize"
	"github.com/tomtom215/songsim/internal/recommend/similarity"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
)

const cacheType = "recommendations"

// Service answers similarity queries against the current snapshot and
// coordinates rebuilds. It is safe for concurrent use.
type Service struct {
	config *Config
	logger zerolog.Logger

	source     snapshot.Source
	normalizer *normalize.Normalizer

	// Rebuild state
	pipeline  *Pipeline
	rebuildMu sync.Mutex
	statusMu  sync.RWMutex
	status    RebuildStatus

	cache *cache.LRU[cacheKey, *Response]

	requestCount  atomic.Int64
	notFoundCount atomic.Int64
	errorCount    atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
}

// cacheKey carries the generation so a newly published snapshot never
// serves a ranking computed against an older one.
type cacheKey struct {
	generation int64
	operation  string
	key        string
	k          int
}

// NewService creates a service reading snapshots from source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(cfg *Config, source snapshot.Source, logger zerolog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, apperrors.NewConfigurationError("source", "must not be nil")
	}

	logger = logger.With().Str("component", "recommend").Logger()
	n, err := normalize.New(cfg.Language, normalize.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	s := &Service{
		config:     cfg.Clone(),
		logger:     logger,
		source:     source,
		normalizer: n,
	}
	if cfg.Cache.Enabled {
		s.cache = cache.NewLRU[cacheKey, *Response](cfg.Cache.Size, cfg.Cache.TTL)
	}
	return s, nil
}

// Recommend returns the k songs most similar to req.Title. The first song
// in corpus order wins when several share the title. An unknown title is a
// NotFoundError.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) Recommend(ctx context.Context, req Request) (resp *Response, err error) {
	start := time.Now()
	defer func() { s.record(OpRecommend, start, err) }()

	snap, k, err := s.prepare(req.K)
	if err != nil {
		return nil, err
	}

	meta := s.metadata(ctx, req.RequestID, OpRecommend, k, snap.Generation)
	key := cacheKey{generation: snap.Generation, operation: OpRecommend, key: req.Title, k: k}
	if cached := s.fromCache(key, meta, start); cached != nil {
		return cached, nil
	}

	id, ok := snap.Lookup(req.Title)
	if !ok {
		return nil, apperrors.NewNotFoundError("song", req.Title)
	}
	resp, err = s.neighborsOf(snap, id, k, meta)
	if err != nil {
		return nil, err
	}
	s.finish(key, resp, start)

	rl := s.requestLogger(meta)
	rl.Debug().
		Str("title", req.Title).
		Int("doc_id", id).
		Int("returned", len(resp.Items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")
	return resp, nil
}

// Similar returns the k songs most similar to the document with docID.
func (s *Service) Similar(ctx context.Context, docID, k int) (resp *Response, err error) {
	start := time.Now()
	defer func() { s.record(OpSimilar, start, err) }()

	snap, k, err := s.prepare(k)
	if err != nil {
		return nil, err
	}

	meta := s.metadata(ctx, "", OpSimilar, k, snap.Generation)
	key := cacheKey{generation: snap.Generation, operation: OpSimilar, key: strconv.Itoa(docID), k: k}
	if cached := s.fromCache(key, meta, start); cached != nil {
		return cached, nil
	}

	resp, err = s.neighborsOf(snap, docID, k, meta)
	if err != nil {
		return nil, err
	}
	s.finish(key, resp, start)
	return resp, nil
}

// Query ranks the whole corpus against a free-text lyric fragment. The
// text is cleaned like the corpus; unknown terms are ignored, so a text
// with no known terms ranks every song at zero.
func (s *Service) Query(ctx context.Context, text string, k int) (resp *Response, err error) {
	start := time.Now()
	defer func() { s.record(OpQuery, start, err) }()

	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewConfigurationError("q", "must not be empty")
	}
	snap, k, err := s.prepare(k)
	if err != nil {
		return nil, err
	}

	cleaned := s.normalizer.Normalize(text)
	meta := s.metadata(ctx, "", OpQuery, k, snap.Generation)
	key := cacheKey{generation: snap.Generation, operation: OpQuery, key: cleaned, k: k}
	if cached := s.fromCache(key, meta, start); cached != nil {
		return cached, nil
	}

	vec := snap.TFIDF.Transform(cleaned)
	resp = &Response{
		Items:    s.items(snap, similarity.NeighborsOfVector(vec, snap.TFIDF.Rows(), k)),
		Metadata: meta,
	}
	s.finish(key, resp, start)

	rl := s.requestLogger(meta)
	rl.Debug().
		Str("cleaned", cleaned).
		Int("terms", vec.Nnz()).
		Int("returned", len(resp.Items)).
		Msg("query complete")
	return resp, nil
}

// Titles returns the sorted, de-duplicated, non-empty titles of the
// current snapshot.
func (s *Service) Titles(_ context.Context) (titles []string, err error) {
	start := time.Now()
	defer func() { s.record(OpTitles, start, err) }()

	snap := s.source.Current()
	if snap == nil {
		return nil, apperrors.ErrUnavailable
	}
	return snap.Titles(), nil
}

// Snapshot returns the current snapshot, or nil before the first publish.
func (s *Service) Snapshot() *snapshot.Snapshot {
	return s.source.Current()
}

// Ready reports whether a snapshot is available.
func (s *Service) Ready() bool {
	return s.source.Current() != nil
}

// Status returns the current snapshot and rebuild state.
func (s *Service) Status() Status {
	s.statusMu.RLock()
	st := Status{Rebuild: s.status}
	s.statusMu.RUnlock()

	if snap := s.source.Current(); snap != nil {
		info := snap.Info()
		st.Ready = true
		st.Snapshot = &info
	}
	return st
}

// Metrics returns the current service counters.
func (s *Service) Metrics() Metrics {
	m := Metrics{
		RequestCount:  s.requestCount.Load(),
		NotFoundCount: s.notFoundCount.Load(),
		ErrorCount:    s.errorCount.Load(),
		CacheHits:     s.cacheHits.Load(),
		CacheMisses:   s.cacheMisses.Load(),
	}
	if s.cache != nil {
		m.Cache = s.cache.Stats()
	}
	return m
}

// Config returns a copy of the service configuration.
func (s *Service) Config() *Config {
	return s.config.Clone()
}

// prepare loads the current snapshot and resolves k.
func (s *Service) prepare(k int) (*snapshot.Snapshot, int, error) {
	snap := s.source.Current()
	if snap == nil {
		return nil, 0, apperrors.ErrUnavailable
	}
	k, err := s.resolveK(k)
	if err != nil {
		return nil, 0, err
	}
	return snap, k, nil
}

func (s *Service) resolveK(k int) (int, error) {
	switch {
	case k < 0:
		return 0, apperrors.NewConfigurationError("k", fmt.Sprintf("must not be negative, got %d", k))
	case k == 0:
		return s.config.Limits.DefaultK, nil
	case k > s.config.Limits.MaxK:
		return s.config.Limits.MaxK, nil
	}
	return k, nil
}

func (s *Service) neighborsOf(snap *snapshot.Snapshot, id, k int, meta ResponseMetadata) (*Response, error) {
	neighbors, err := snap.Similarity.Neighbors(id, k)
	if err != nil {
		return nil, err
	}
	source, _ := snap.Document(id)
	return &Response{
		Source:   &Recommendation{ID: source.ID, Title: source.Title, Artist: source.Artist, Score: snap.Similarity.Score(id, id)},
		Items:    s.items(snap, neighbors),
		Metadata: meta,
	}, nil
}

func (s *Service) items(snap *snapshot.Snapshot, neighbors []similarity.Neighbor) []Recommendation {
	items := make([]Recommendation, len(neighbors))
	for i, nb := range neighbors {
		doc := snap.Documents[nb.DocID]
		items[i] = Recommendation{ID: doc.ID, Title: doc.Title, Artist: doc.Artist, Score: nb.Score}
	}
	return items
}

func (s *Service) metadata(ctx context.Context, requestID, op string, k int, generation int64) ResponseMetadata {
	if requestID == "" {
		requestID = logging.RequestIDFromContext(ctx)
	}
	if requestID == "" {
		requestID = logging.GenerateRequestID()
	}
	return ResponseMetadata{
		RequestID:  requestID,
		Operation:  op,
		K:          k,
		Generation: generation,
		Timestamp:  time.Now().UTC(),
	}
}

func (s *Service) requestLogger(meta ResponseMetadata) zerolog.Logger {
	return s.logger.With().
		Str("request_id", meta.RequestID).
		Str("operation", meta.Operation).
		Int64("generation", meta.Generation).
		Int("k", meta.K).
		Logger()
}

// fromCache returns a copy of a cached response carrying this request's
// metadata, or nil on a miss.
func (s *Service) fromCache(key cacheKey, meta ResponseMetadata, start time.Time) *Response {
	if s.cache == nil {
		return nil
	}
	cached, ok := s.cache.Get(key)
	metrics.RecordCacheAccess(cacheType, ok)
	if !ok {
		s.cacheMisses.Add(1)
		return nil
	}
	s.cacheHits.Add(1)

	resp := cached.clone()
	resp.Metadata = meta
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	return resp
}

func (s *Service) finish(key cacheKey, resp *Response, start time.Time) {
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	if s.cache == nil {
		return
	}
	s.cache.Add(key, resp.clone())
	metrics.CacheSize.WithLabelValues(cacheType).Set(float64(s.cache.Len()))
}

// purgeCache drops cached responses from generations other than keep.
func (s *Service) purgeCache(keep int64) {
	if s.cache == nil {
		return
	}
	removed := s.cache.RemoveFunc(func(k cacheKey) bool { return k.generation != keep })
	metrics.CacheSize.WithLabelValues(cacheType).Set(float64(s.cache.Len()))
	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Int64("generation", keep).Msg("purged stale cache entries")
	}
}

// CleanupCache drops expired cached responses and returns how many were
// removed. It is a no-op with the cache disabled.
func (s *Service) CleanupCache() int {
	if s.cache == nil {
		return 0
	}
	removed := s.cache.CleanupExpired()
	metrics.CacheSize.WithLabelValues(cacheType).Set(float64(s.cache.Len()))
	return removed
}

func (s *Service) record(op string, start time.Time, err error) {
	s.requestCount.Add(1)
	switch metrics.Outcome(err) {
	case metrics.OutcomeOK:
	case metrics.OutcomeNotFound:
		s.notFoundCount.Add(1)
	default:
		s.errorCount.Add(1)
	}
	metrics.RecordRecommendation(op, time.Since(start), err)
}
