// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/songsim/internal/apperrors"
)

var (
	// Build Pipeline Metrics
	BuildStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "songsim_build_stage_duration_seconds",
			Help:    "Duration of each snapshot build stage in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"}, // "load", "clean", "vectorize", "similarity", "save"
	)

	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songsim_builds_total",
			Help: "Total number of snapshot builds by result",
		},
		[]string{"result"}, // "success", "error", "canceled"
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "songsim_build_duration_seconds",
			Help:    "Duration of complete snapshot builds in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	DocumentFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "songsim_document_failures_total",
			Help: "Total number of documents that failed normalization and were indexed as empty",
		},
	)

	// Snapshot Metrics
	SnapshotGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songsim_snapshot_generation",
			Help: "Generation of the currently published snapshot",
		},
	)

	SnapshotBuiltTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songsim_snapshot_built_timestamp_seconds",
			Help: "Unix timestamp at which the published snapshot was built",
		},
	)

	CorpusDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songsim_corpus_documents",
			Help: "Number of documents in the published snapshot",
		},
	)

	VocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songsim_vocabulary_size",
			Help: "Number of vocabulary terms in the published snapshot",
		},
	)

	SnapshotStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songsim_snapshot_store_operations_total",
			Help: "Total number of snapshot store operations",
		},
		[]string{"store", "operation", "result"},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songsim_recommendations_total",
			Help: "Total number of recommendation queries by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "ok", "not_found", "invalid", "unavailable", "error"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "songsim_recommendation_duration_seconds",
			Help:    "Recommendation query latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	// Cache Metrics (General)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// Recommendation outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// RecordBuildStage records the duration of one build stage.
func RecordBuildStage(stage string, duration time.Duration) {
	BuildStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordBuild records a complete build attempt.
func RecordBuild(duration time.Duration, err error) {
	result := "success"
	switch {
	case err == nil:
		BuildDuration.Observe(duration.Seconds())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result = "canceled"
	default:
		result = "error"
	}
	BuildsTotal.WithLabelValues(result).Inc()
}

// RecordDocumentFailures adds per-document normalization failures.
func RecordDocumentFailures(n int) {
	if n > 0 {
		DocumentFailures.Add(float64(n))
	}
}

// UpdateSnapshotGauges publishes the shape of the active snapshot.
func UpdateSnapshotGauges(generation int64, documents, vocabulary int, builtAt time.Time) {
	SnapshotGeneration.Set(float64(generation))
	CorpusDocuments.Set(float64(documents))
	VocabularySize.Set(float64(vocabulary))
	SnapshotBuiltTimestamp.Set(float64(builtAt.Unix()))
}

// RecordStoreOperation records a snapshot store save or load.
func RecordStoreOperation(store, operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
		if errors.Is(err, apperrors.ErrSnapshotIntegrity) {
			result = "integrity_error"
		}
	}
	SnapshotStoreOperations.WithLabelValues(store, operation, result).Inc()
}

// RecordRecommendation records one query and classifies its outcome from err.
func RecordRecommendation(operation string, duration time.Duration, err error) {
	RecommendationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	RecommendationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Outcome maps a query error to its metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, apperrors.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, apperrors.ErrConfiguration):
		return OutcomeInvalid
	case errors.Is(err, apperrors.ErrUnavailable):
		return OutcomeUnavailable
	default:
		return OutcomeError
	}
}

// RecordCacheAccess records a hit or miss for the named cache.
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
		return
	}
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
