// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

// Package corpus reads lyric records from a CSV export and draws the
// seeded sample a build runs on.
//
// The file needs a header with at least the song and text columns; artist
// is kept when present and link is ignored. A row with no text is kept with
// empty text.
package corpus

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/tomtom215/songsim/internal/apperrors"
)

// Loader kinds.
const (
	LoaderCSV    = "csv"
	LoaderDuckDB = "duckdb"
)

// Column names.
const (
	ColumnSong   = "song"
	ColumnText   = "text"
	ColumnArtist = "artist"
)

// Record is one song as read from the corpus file.
type Record struct {
	Title  string
	Artist string
	Text   string
}

// Config selects and parameterizes a loader.
type Config struct {
	Path       string
	Loader     string
	SampleSize int
	Seed       int64
}

// Loader reads the (sampled) corpus. Records come back in file order.
type Loader interface {
	Load(ctx context.Context) ([]Record, error)
}

// New returns the loader named by cfg.Loader.
func New(cfg Config) (Loader, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, apperrors.NewConfigurationError("corpus.path", "must not be empty")
	}
	switch cfg.Loader {
	case LoaderCSV, "":
		return &CSVLoader{Path: cfg.Path, SampleSize: cfg.SampleSize, Seed: cfg.Seed}, nil
	case LoaderDuckDB:
		return &DuckDBLoader{Path: cfg.Path, SampleSize: cfg.SampleSize, Seed: cfg.Seed}, nil
	default:
		return nil, apperrors.NewConfigurationError("corpus.loader",
			fmt.Sprintf("unknown loader %q, want %s or %s", cfg.Loader, LoaderCSV, LoaderDuckDB))
	}
}

// ValidLoader reports whether name is a loader kind.
func ValidLoader(name string) bool {
	return name == LoaderCSV || name == LoaderDuckDB
}

// Sample draws size records with a generator seeded by seed and returns them
// in their original relative order. A non-positive size, or one at least
// len(records), returns records unchanged.
func Sample(records []Record, size int, seed int64) []Record {
	if size <= 0 || size >= len(records) {
		return records
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for reproducible sampling
	picked := rng.Perm(len(records))[:size]
	sort.Ints(picked)

	out := make([]Record, size)
	for i, idx := range picked {
		out[i] = records[idx]
	}
	return out
}
