// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package recommend

import (
	"time"

	"github.com/tomtom215/songsim/internal/cache"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
)

// Operation names used for metrics and logging.
const (
	OpRecommend = "recommend"
	OpSimilar   = "similar"
	OpQuery     = "query"
	OpTitles    = "titles"
)

// Request asks for songs similar to a title.
type Request struct {
	// Title is matched exactly and case-sensitively.
	Title string `json:"title"`

	// K is the number of results. Zero selects the default, values above
	// the maximum are clamped and negative values are rejected.
	K int `json:"k"`

	// RequestID is used for tracing. Generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// Recommendation is one ranked song.
type Recommendation struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Artist string  `json:"artist,omitempty"`
	Score  float64 `json:"score"`
}

// Response contains ranked recommendations.
type Response struct {
	// Source is the song the ranking is relative to. Nil for free-text
	// queries.
	Source *Recommendation `json:"source,omitempty"`

	// Items are ordered by descending score, then ascending id.
	Items []Recommendation `json:"items"`

	Metadata ResponseMetadata `json:"metadata"`
}

// Titles returns the titles of Items in ranked order.
func (r *Response) Titles() []string {
	titles := make([]string, len(r.Items))
	for i, item := range r.Items {
		titles[i] = item.Title
	}
	return titles
}

func (r *Response) clone() *Response {
	out := *r
	out.Items = make([]Recommendation, len(r.Items))
	copy(out.Items, r.Items)
	if r.Source != nil {
		src := *r.Source
		out.Source = &src
	}
	return &out
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID  string    `json:"request_id"`
	Operation  string    `json:"operation"`
	K          int       `json:"k"`
	Generation int64     `json:"generation"`
	CacheHit   bool      `json:"cache_hit"`
	LatencyMS  int64     `json:"latency_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// RebuildStatus reports the state of snapshot rebuilds.
type RebuildStatus struct {
	InProgress     bool      `json:"in_progress"`
	LastStartedAt  time.Time `json:"last_started_at,omitempty"`
	LastFinishedAt time.Time `json:"last_finished_at,omitempty"`
	LastDurationMS int64     `json:"last_duration_ms"`
	LastGeneration int64     `json:"last_generation"`
	LastError      string    `json:"last_error,omitempty"`
	Completed      int64     `json:"completed"`
	Failed         int64     `json:"failed"`
}

// Status is the service state exposed by the snapshot endpoint.
type Status struct {
	// Ready is true once a snapshot is published.
	Ready bool `json:"ready"`

	// Snapshot is nil until Ready.
	Snapshot *snapshot.Info `json:"snapshot,omitempty"`

	Rebuild RebuildStatus `json:"rebuild"`
}

// Metrics contains service-level counters.
type Metrics struct {
	RequestCount  int64       `json:"request_count"`
	NotFoundCount int64       `json:"not_found_count"`
	ErrorCount    int64       `json:"error_count"`
	CacheHits     int64       `json:"cache_hits"`
	CacheMisses   int64       `json:"cache_misses"`
	Cache         cache.Stats `json:"cache"`
}
