// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/songsim/internal/logging"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeRebuildInProgress = "REBUILD_IN_PROGRESS"
	CodeUnavailable       = "SERVICE_UNAVAILABLE"
	CodeInternal          = "INTERNAL_ERROR"
	CodeRateLimited       = "RATE_LIMITED"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes the response itself.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	Generation  int64     `json:"generation,omitempty"`
}

// APIError is the error member of the envelope.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// sanitizeLogValue escapes control characters so client input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON writes the envelope with an ETag. A matching If-None-Match
// gets 304 and no body.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	etag := generateETag(response)
	w.Header().Set("ETag", etag)

	if status == http.StatusOK && r != nil && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag hashes status, data and error with FNV-1a. Metadata is left
// out, so the same payload always carries the same tag.
func generateETag(response *APIResponse) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(response.Status))
	if payload, err := json.Marshal(response.Data); err == nil {
		_, _ = h.Write(payload)
	}
	if response.Error != nil {
		if payload, err := json.Marshal(response.Error); err == nil {
			_, _ = h.Write(payload)
		}
	}
	return `"` + strconv.FormatUint(uint64(h.Sum32()), 16) + `"`
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}, meta Metadata) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.RequestID == "" && r != nil {
		meta.RequestID = logging.RequestIDFromContext(r.Context())
	}
	respondJSON(w, r, status, &APIResponse{
		Status:   StatusSuccess,
		Data:     data,
		Metadata: meta,
	})
}

// respondError writes an error envelope. Server errors are logged with
// the underlying cause; client errors at debug level.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}, err error) {
	if err != nil {
		logger := logging.Logger()
		if r != nil {
			logger = logging.LoggerFromContext(r.Context())
		}
		event := logger.Debug()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Str("code", code).
			Int("status", status).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	meta := Metadata{Timestamp: time.Now()}
	if r != nil {
		meta.RequestID = logging.RequestIDFromContext(r.Context())
	}
	respondJSON(w, r, status, &APIResponse{
		Status:   StatusError,
		Data:     nil,
		Metadata: meta,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
