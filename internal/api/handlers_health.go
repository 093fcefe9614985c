// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status     string  `json:"status"`
	Ready      bool    `json:"ready"`
	Generation int64   `json:"generation,omitempty"`
	Uptime     float64 `json:"uptime_seconds"`
}

// HealthLive handles GET /api/v1/health/live. The process answering is
// enough.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, HealthStatus{
		Status: "alive",
		Ready:  h.service.Ready(),
		Uptime: time.Since(h.startTime).Seconds(),
	}, Metadata{})
}

// HealthReady handles GET /api/v1/health/ready: 200 once a snapshot is
// published, 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	st := h.service.Status()
	health := HealthStatus{
		Status: "ready",
		Ready:  st.Ready,
		Uptime: time.Since(h.startTime).Seconds(),
	}
	if st.Snapshot != nil {
		health.Generation = st.Snapshot.Generation
	}

	status := http.StatusOK
	if !st.Ready {
		health.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, r, status, health, Metadata{})
}
