// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tomtom215/songsim/internal/apperrors"
)

// CSVLoader streams the corpus with encoding/csv.
type CSVLoader struct {
	Path       string
	SampleSize int
	Seed       int64
}

// Load reads every row, then samples.
func (l *CSVLoader) Load(ctx context.Context) ([]Record, error) {
	f, err := os.Open(l.Path) //nolint:gosec // path comes from trusted configuration
	if err != nil {
		return nil, apperrors.NewConfigurationError("corpus.path", fmt.Sprintf("open corpus: %v", err))
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	records, err := readCSV(ctx, f)
	if err != nil {
		return nil, err
	}
	return Sample(records, l.SampleSize, l.Seed), nil
}

func readCSV(ctx context.Context, r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewConfigurationError("corpus.path", "corpus file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []Record
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("read corpus: %w", err)
			}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus row %d: %w", line, err)
		}
		records = append(records, Record{
			Title:  field(row, cols[ColumnSong]),
			Artist: field(row, cols[ColumnArtist]),
			Text:   field(row, cols[ColumnText]),
		})
	}
	return records, nil
}

// columnIndex maps the known column names to positions; an absent optional
// column maps to -1.
func columnIndex(header []string) (map[string]int, error) {
	cols := map[string]int{ColumnSong: -1, ColumnText: -1, ColumnArtist: -1}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, known := cols[key]; known && cols[key] < 0 {
			cols[key] = i
		}
	}
	for _, required := range []string{ColumnSong, ColumnText} {
		if cols[required] < 0 {
			return nil, apperrors.NewConfigurationError("corpus.path",
				fmt.Sprintf("missing required column %q", required))
		}
	}
	return cols, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
