// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

// Package apperrors defines the error kinds shared by the build pipeline and
// the query service.
//
// Each kind has a sentinel for errors.Is checks and a typed error carrying
// the details for errors.As:
//
//	ErrConfiguration       *ConfigurationError  fatal, build time
//	ErrDocumentProcessing  *DocumentError       recoverable, one document
//	ErrNotFound            *NotFoundError       expected, query time
//	ErrSnapshotIntegrity   *IntegrityError      fatal, snapshot load time
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrConfiguration      = errors.New("configuration error")
	ErrDocumentProcessing = errors.New("document processing error")
	ErrNotFound           = errors.New("not found")
	ErrSnapshotIntegrity  = errors.New("snapshot integrity error")

	// ErrUnavailable means no snapshot has been published yet.
	ErrUnavailable = errors.New("no snapshot available")

	// ErrRebuildInProgress rejects a rebuild while another one runs.
	ErrRebuildInProgress = errors.New("rebuild already in progress")
)

// ConfigurationError reports an invalid option or an unusable build input.
// It aborts a build; no snapshot is published.
type ConfigurationError struct {
	Field  string
	Reason string
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// DocumentError wraps the failure of a single document during normalization.
// The document is kept with empty cleaned text.
type DocumentError struct {
	DocID int
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %d: %v", e.DocID, e.Err)
}

// Is reports whether target is ErrDocumentProcessing.
func (e *DocumentError) Is(target error) bool {
	return target == ErrDocumentProcessing
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a lookup miss, such as an unknown song title or a
// document id outside the current snapshot.
type NotFoundError struct {
	Resource string
	Key      string
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q", e.Resource, e.Key)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IntegrityError reports a persisted snapshot that cannot be served: a
// missing artifact, a checksum mismatch, or artifacts that disagree on
// generation or row count.
type IntegrityError struct {
	Artifact string
	Reason   string
}

// NewIntegrityError creates an IntegrityError.
func NewIntegrityError(artifact, reason string) *IntegrityError {
	return &IntegrityError{Artifact: artifact, Reason: reason}
}

func (e *IntegrityError) Error() string {
	if e.Artifact == "" {
		return fmt.Sprintf("snapshot integrity: %s", e.Reason)
	}
	return fmt.Sprintf("snapshot integrity: %s: %s", e.Artifact, e.Reason)
}

// Is reports whether target is ErrSnapshotIntegrity.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrSnapshotIntegrity
}

// IsNotFound reports whether err is a not-found outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
