// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/logging"
	"github.com/tomtom215/songsim/internal/middleware"
	"github.com/tomtom215/songsim/internal/recommend"
)

// RebuildAccepted is the body of a 202 from POST /api/v1/snapshot/rebuild.
type RebuildAccepted struct {
	Accepted          bool  `json:"accepted"`
	CurrentGeneration int64 `json:"current_generation"`
}

// StatsResponse is the body of GET /api/v1/stats.
type StatsResponse struct {
	Service       recommend.Metrics          `json:"service"`
	Endpoints     []middleware.EndpointStats `json:"endpoints"`
	UptimeSeconds float64                    `json:"uptime_seconds"`
}

// Snapshot handles GET /api/v1/snapshot.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	st := h.service.Status()
	meta := Metadata{}
	if st.Snapshot != nil {
		meta.Generation = st.Snapshot.Generation
	}
	respondSuccess(w, r, http.StatusOK, st, meta)
}

// Rebuild handles POST /api/v1/snapshot/rebuild. The rebuild runs in the
// background; poll GET /api/v1/snapshot for its outcome.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	current := int64(0)
	if st := h.service.Status(); st.Snapshot != nil {
		current = st.Snapshot.Generation
	}

	if err := h.service.StartRebuild(r.Context()); err != nil {
		if errors.Is(err, apperrors.ErrConfiguration) {
			respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Rebuilds are not configured", nil, err)
			return
		}
		respondServiceError(w, r, err)
		return
	}

	logger := logging.LoggerFromContext(r.Context())
	logger.Info().Int64("current_generation", current).Msg("rebuild requested")

	respondSuccess(w, r, http.StatusAccepted, RebuildAccepted{Accepted: true, CurrentGeneration: current}, Metadata{})
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := StatsResponse{
		Service:       h.service.Metrics(),
		Endpoints:     []middleware.EndpointStats{},
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.perf != nil {
		stats.Endpoints = h.perf.Stats()
	}
	respondSuccess(w, r, http.StatusOK, stats, Metadata{})
}
