// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver

	"github.com/tomtom215/songsim/internal/apperrors"
)

// DuckDBLoader reads the corpus with DuckDB's CSV reader and samples inside
// the query with a repeatable reservoir sample.
type DuckDBLoader struct {
	Path       string
	SampleSize int
	Seed       int64
}

// Load runs the query on an in-memory DuckDB connection.
func (l *DuckDBLoader) Load(ctx context.Context) ([]Record, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() { _ = db.Close() }() //nolint:errcheck // best-effort cleanup

	source := fmt.Sprintf("read_csv_auto(%s, header = true, all_varchar = true)", quoteLiteral(l.Path))

	columns, err := describeColumns(ctx, db, source)
	if err != nil {
		return nil, err
	}
	for _, required := range []string{ColumnSong, ColumnText} {
		if _, ok := columns[required]; !ok {
			return nil, apperrors.NewConfigurationError("corpus.path",
				fmt.Sprintf("missing required column %q", required))
		}
	}
	artist := "NULL"
	if name, ok := columns[ColumnArtist]; ok {
		artist = quoteIdent(name)
	}

	query := fmt.Sprintf(`
		WITH numbered AS (
			SELECT
				row_number() OVER () AS rn,
				%s AS song,
				%s AS artist,
				%s AS text
			FROM %s
		)
		SELECT song, artist, text FROM numbered`,
		quoteIdent(columns[ColumnSong]), artist, quoteIdent(columns[ColumnText]), source)
	if l.SampleSize > 0 {
		query += fmt.Sprintf(" USING SAMPLE reservoir(%d ROWS) REPEATABLE (%d)", l.SampleSize, l.Seed)
	}
	query += " ORDER BY rn"

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query corpus: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // error on close after read is not actionable

	var records []Record
	for rows.Next() {
		var song, artist, text sql.NullString
		if err := rows.Scan(&song, &artist, &text); err != nil {
			return nil, fmt.Errorf("scan corpus row: %w", err)
		}
		records = append(records, Record{Title: song.String, Artist: artist.String, Text: text.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus: %w", err)
	}
	return records, nil
}

// describeColumns returns the lowercased column names of source mapped to
// their original spelling.
func describeColumns(ctx context.Context, db *sql.DB, source string) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, "DESCRIBE SELECT * FROM "+source)
	if err != nil {
		return nil, apperrors.NewConfigurationError("corpus.path", fmt.Sprintf("read corpus: %v", err))
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // error on close after read is not actionable

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe corpus: %w", err)
	}

	names := make(map[string]string)
	for rows.Next() {
		// DESCRIBE yields column_name first; the remaining columns are unused.
		dest := make([]any, len(cols))
		var name string
		dest[0] = &name
		for i := 1; i < len(dest); i++ {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("describe corpus: %w", err)
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := names[key]; !dup {
			names[key] = name
		}
	}
	return names, rows.Err()
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
