// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
)

// Store kinds.
const (
	StoreFile   = "file"
	StoreBadger = "badger"
)

// Store persists one snapshot generation.
type Store interface {
	// Save persists snap, replacing any earlier generation.
	Save(ctx context.Context, snap *snapshot.Snapshot) error

	// Load returns the persisted snapshot. It returns a NotFoundError when
	// nothing was saved and an IntegrityError when the stored artifacts do
	// not form one consistent snapshot.
	Load(ctx context.Context) (*snapshot.Snapshot, error)

	// Name returns the store kind.
	Name() string

	// Close releases resources held by the store.
	Close() error
}

// Open creates a store of the given kind rooted at path.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(kind, path string, logger zerolog.Logger) (Store, error) {
	switch kind {
	case StoreFile, "":
		return NewFileStore(path, logger)
	case StoreBadger:
		return NewBadgerStore(path, logger)
	default:
		return nil, apperrors.NewConfigurationError("snapshot.store",
			fmt.Sprintf("unknown store %q, want %s or %s", kind, StoreFile, StoreBadger))
	}
}

// ValidKind reports whether kind names a store.
func ValidKind(kind string) bool {
	return kind == StoreFile || kind == StoreBadger
}
