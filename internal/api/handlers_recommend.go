// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/songsim/internal/logging"
	"github.com/tomtom215/songsim/internal/recommend"
)

// Recommend handles GET /api/v1/recommendations?title=&k=
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	params, ok := parseRecommendParams(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	resp, err := h.service.Recommend(ctx, recommend.Request{
		Title:     params.Title,
		K:         params.K,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondRanking(w, r, resp)
}

// Query handles GET /api/v1/recommendations/query?q=&k=
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	params, ok := parseQueryParams(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	resp, err := h.service.Query(ctx, params.Q, params.K)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondRanking(w, r, resp)
}
