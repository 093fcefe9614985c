// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto at
package init and exposed by the API server at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

Build Metrics:
  - songsim_build_stage_duration_seconds: Per-stage build time (histogram)
    Labels: stage (load, clean, vectorize, similarity, save)
  - songsim_builds_total: Build attempts (counter)
    Labels: result (success, error, canceled)
  - songsim_build_duration_seconds: Successful build time (histogram)
  - songsim_document_failures_total: Documents indexed as empty after a
    normalization failure (counter)

Snapshot Metrics:
  - songsim_snapshot_generation: Published generation (gauge)
  - songsim_snapshot_built_timestamp_seconds: Build time of the published snapshot (gauge)
  - songsim_corpus_documents, songsim_vocabulary_size: Snapshot shape (gauges)
  - songsim_snapshot_store_operations_total: Store saves/loads (counter)
    Labels: store, operation, result

Query Metrics:
  - songsim_recommendations_total: Queries (counter)
    Labels: operation (recommend, similar, query), outcome
  - songsim_recommendation_duration_seconds: Query latency (histogram)
  - cache_hits_total, cache_misses_total, cache_entries
    Labels: cache_type

HTTP Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests,
    api_rate_limit_hits_total

# Usage

	start := time.Now()
	resp, err := svc.Recommend(ctx, req)
	metrics.RecordRecommendation("recommend", time.Since(start), err)

All Record* helpers are safe for concurrent use.
*/
package metrics
