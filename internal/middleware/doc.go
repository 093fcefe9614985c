// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

/*
Package middleware provides the HTTP middleware used by the API router.

All middleware has the func(http.Handler) http.Handler shape so it plugs
into chi's Use:

  - RequestID: reuses or generates X-Request-ID and seeds the logging
    context (request ID, correlation ID, request-scoped logger)
  - PrometheusMetrics: request counters, duration histograms and the
    in-flight gauge, labelled by chi route pattern
  - PerformanceMonitor: sliding window of per-route latencies served by
    GET /api/v1/stats, plus slow request warnings
  - Compression: gzip for clients sending Accept-Encoding: gzip

Route labels come from chi's RouteContext after the handler ran, so these
middlewares must wrap the router (r.Use) rather than a single handler.

Example:

	perf := middleware.NewPerformanceMonitor(0, 0)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perf.Middleware)
	r.Use(middleware.Compression)
*/
package middleware
