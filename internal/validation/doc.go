// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator caches struct metadata. Errors name the
// offending query parameter and translate into the API's VALIDATION_ERROR
// body.
//
// Example usage:
//
//	type recommendParams struct {
//	    Title string `query:"title" validate:"required,notblank,max=512"`
//	    K     int    `query:"k" validate:"gte=0,lte=1000"`
//	}
//
//	if verr := validation.ValidateStruct(&params); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// Custom validators:
//   - notblank: string is non-empty after trimming whitespace
package validation
