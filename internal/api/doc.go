// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

/*
Package api serves the recommendation service over HTTP with the chi router.

# Routes

	GET  /api/v1/health/live                liveness, always 200
	GET  /api/v1/health/ready               200 once a snapshot is published, else 503
	GET  /api/v1/songs                      sorted unique titles
	GET  /api/v1/songs/{id}/similar?k=      neighbors of a document id
	GET  /api/v1/recommendations?title=&k=  neighbors of a title
	GET  /api/v1/recommendations/query?q=&k= free-text lyric query
	GET  /api/v1/snapshot                   snapshot info and rebuild status
	POST /api/v1/snapshot/rebuild           start a rebuild (202, or 409 while one runs)
	GET  /api/v1/stats                      service counters and per-route latency
	GET  /metrics                           Prometheus exposition

# Response Envelope

Every JSON response uses the same envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"..."}}
	{"status":"error","data":null,"metadata":{...},"error":{"code":"NOT_FOUND","message":"..."}}

Error codes: VALIDATION_ERROR (400), NOT_FOUND (404), REBUILD_IN_PROGRESS
(409), SERVICE_UNAVAILABLE (503), INTERNAL_ERROR (500).

# Middleware

Global, in order: request ID with logging context, real IP, panic
recovery, CORS, Prometheus metrics, performance monitor, gzip. The
/api/v1 routes other than health are rate limited per client IP unless
rate limiting is disabled.
*/
package api
