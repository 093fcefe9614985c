// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/songsim/internal/validation"
)

// RecommendParams are the query parameters of GET /recommendations.
// k above the service maximum is clamped by the service; the lte bound
// only rejects absurd values early.
type RecommendParams struct {
	Title string `query:"title" validate:"required,max=512"`
	K     int    `query:"k" validate:"gte=0,lte=1000000"`
}

// QueryParams are the query parameters of GET /recommendations/query.
type QueryParams struct {
	Q string `query:"q" validate:"required,notblank,max=4096"`
	K int    `query:"k" validate:"gte=0,lte=1000000"`
}

// SimilarParams are the path and query parameters of
// GET /songs/{id}/similar.
type SimilarParams struct {
	ID int `query:"id" validate:"gte=0"`
	K  int `query:"k" validate:"gte=0,lte=1000000"`
}

// paramError is a parameter that could not be parsed at all.
type paramError struct {
	name  string
	value string
}

func (e *paramError) apiError() *APIError {
	return &APIError{
		Code:    CodeValidation,
		Message: e.name + " must be an integer",
		Details: map[string]interface{}{"field": e.name, "value": e.value},
	}
}

// intParam parses an optional integer query parameter. Missing or blank
// values yield def.
func intParam(r *http.Request, name string, def int) (int, *paramError) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name, value: raw}
	}
	return v, nil
}

// parseRecommendParams reads and validates the title lookup parameters.
// The title is taken verbatim; lookups are exact.
func parseRecommendParams(w http.ResponseWriter, r *http.Request) (RecommendParams, bool) {
	k, perr := intParam(r, "k", 0)
	if perr != nil {
		respondAPIError(w, r, perr.apiError())
		return RecommendParams{}, false
	}
	p := RecommendParams{Title: r.URL.Query().Get("title"), K: k}
	return p, validate(w, r, &p)
}

func parseQueryParams(w http.ResponseWriter, r *http.Request) (QueryParams, bool) {
	k, perr := intParam(r, "k", 0)
	if perr != nil {
		respondAPIError(w, r, perr.apiError())
		return QueryParams{}, false
	}
	p := QueryParams{Q: r.URL.Query().Get("q"), K: k}
	return p, validate(w, r, &p)
}

func parseSimilarParams(w http.ResponseWriter, r *http.Request) (SimilarParams, bool) {
	rawID := chi.URLParam(r, "id")
	id, err := strconv.Atoi(rawID)
	if err != nil {
		respondAPIError(w, r, (&paramError{name: "id", value: rawID}).apiError())
		return SimilarParams{}, false
	}
	k, perr := intParam(r, "k", 0)
	if perr != nil {
		respondAPIError(w, r, perr.apiError())
		return SimilarParams{}, false
	}
	p := SimilarParams{ID: id, K: k}
	return p, validate(w, r, &p)
}

func validate(w http.ResponseWriter, r *http.Request, params interface{}) bool {
	if verr := validation.ValidateStruct(params); verr != nil {
		respondValidationError(w, r, verr)
		return false
	}
	return true
}

func respondAPIError(w http.ResponseWriter, r *http.Request, e *APIError) {
	respondError(w, r, http.StatusBadRequest, e.Code, e.Message, e.Details, nil)
}
