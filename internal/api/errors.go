// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/validation"
)

// respondServiceError maps a recommendation service error onto the
// envelope and status code.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound *apperrors.NotFoundError
		cfgErr   *apperrors.ConfigurationError
	)

	switch {
	case errors.As(err, &notFound):
		respondError(w, r, http.StatusNotFound, CodeNotFound, notFoundMessage(notFound),
			map[string]interface{}{"resource": notFound.Resource, "key": notFound.Key}, err)
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Not found", nil, err)
	case errors.As(err, &cfgErr):
		respondError(w, r, http.StatusBadRequest, CodeValidation, cfgErr.Error(),
			map[string]interface{}{"field": cfgErr.Field}, err)
	case errors.Is(err, apperrors.ErrUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "No snapshot is available yet", nil, err)
	case errors.Is(err, apperrors.ErrRebuildInProgress):
		respondError(w, r, http.StatusConflict, CodeRebuildInProgress, "A rebuild is already in progress", nil, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Request timed out", nil, err)
	default:
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Internal server error", nil, err)
	}
}

// respondValidationError renders a failed request validation as 400.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, verr)
}

func notFoundMessage(e *apperrors.NotFoundError) string {
	if e.Resource == "song" {
		return "Sorry, song not found."
	}
	return e.Error()
}
