// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package api

import (
	"context"
	"net/http"
)

// TitleList is the body of GET /api/v1/songs.
type TitleList struct {
	Titles []string `json:"titles"`
	Count  int      `json:"count"`
}

// Titles handles GET /api/v1/songs.
func (h *Handler) Titles(w http.ResponseWriter, r *http.Request) {
	titles, err := h.service.Titles(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if titles == nil {
		titles = []string{}
	}
	respondSuccess(w, r, http.StatusOK, TitleList{Titles: titles, Count: len(titles)}, Metadata{})
}

// Similar handles GET /api/v1/songs/{id}/similar?k=
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	params, ok := parseSimilarParams(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	resp, err := h.service.Similar(ctx, params.ID, params.K)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondRanking(w, r, resp)
}
