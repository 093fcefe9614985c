// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/songsim/internal/middleware"
	"github.com/tomtom215/songsim/internal/recommend"
)

// RecommendationService is the part of recommend.Service the handlers use.
type RecommendationService interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Similar(ctx context.Context, docID, k int) (*recommend.Response, error)
	Query(ctx context.Context, text string, k int) (*recommend.Response, error)
	Titles(ctx context.Context) ([]string, error)
	Ready() bool
	Status() recommend.Status
	Metrics() recommend.Metrics
	StartRebuild(ctx context.Context) error
}

// DefaultRequestTimeout bounds a single query handler.
const DefaultRequestTimeout = 10 * time.Second

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	service        RecommendationService
	perf           *middleware.PerformanceMonitor
	requestTimeout time.Duration
	startTime      time.Time
}

// NewHandler creates a Handler. perf may be nil, in which case the stats
// endpoint reports no endpoint latencies.
func NewHandler(service RecommendationService, perf *middleware.PerformanceMonitor, requestTimeout time.Duration) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	return &Handler{
		service:        service,
		perf:           perf,
		requestTimeout: requestTimeout,
		startTime:      time.Now(),
	}
}

// Ranking is the data payload of the ranking endpoints. Per-request
// metadata travels in the envelope only.
type Ranking struct {
	Source *recommend.Recommendation  `json:"source,omitempty"`
	Items  []recommend.Recommendation `json:"items"`
}

// respondRanking writes a ranking with its metadata lifted into the envelope.
func respondRanking(w http.ResponseWriter, r *http.Request, resp *recommend.Response) {
	respondSuccess(w, r, http.StatusOK, Ranking{Source: resp.Source, Items: resp.Items}, responseMetadata(resp))
}

// responseMetadata copies service metadata into the envelope metadata.
func responseMetadata(resp *recommend.Response) Metadata {
	return Metadata{
		Timestamp:   resp.Metadata.Timestamp,
		RequestID:   resp.Metadata.RequestID,
		QueryTimeMS: resp.Metadata.LatencyMS,
		Cached:      resp.Metadata.CacheHit,
		Generation:  resp.Metadata.Generation,
	}
}
