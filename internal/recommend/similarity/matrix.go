// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

// Package similarity holds the dense, symmetric pairwise cosine similarity
// index over a fitted TF-IDF matrix and answers top-k neighbor queries.
//
// Rows are unit length (or zero), so cosine similarity is the dot product.
// Only the upper triangle, diagonal included, is stored:
//
//	offset(i, j) = i*n - i*(i-1)/2 + (j - i)   for i <= j
//
// Scores are float32 and clamped to [0, 1]. The diagonal is exactly 1 for a
// non-zero row and 0 for an all-zero row.
package similarity

import (
	"context"
	"fmt"
	"math"

	"github.com/tomtom215/songsim/internal/recommend/tfidf"
)

// Matrix is an immutable n x n similarity matrix.
type Matrix struct {
	n    int
	data []float32
}

type posting struct {
	doc int
	w   float64
}

// Build computes all pairwise cosine similarities. Pairs that share no term
// are never visited and stay at zero.
func Build(ctx context.Context, rows []tfidf.Vector) (*Matrix, error) {
	n := len(rows)
	m := &Matrix{n: n, data: make([]float32, packedLen(n))}
	if n == 0 {
		return m, nil
	}

	cols := 0
	for _, r := range rows {
		if k := len(r.Indices); k > 0 && r.Indices[k-1]+1 > cols {
			cols = r.Indices[k-1] + 1
		}
	}

	// Postings are appended in document order, so every list is sorted.
	postings := make([][]posting, cols)
	for doc, r := range rows {
		for k, col := range r.Indices {
			postings[col] = append(postings[col], posting{doc: doc, w: r.Values[k]})
		}
	}

	cursor := make([]int, cols)
	acc := make([]float64, n)
	seen := make([]bool, n)
	touched := make([]int, 0, 64)

	for i, r := range rows {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("similarity build: %w", err)
			}
		}

		if !r.IsZero() {
			m.data[m.offset(i, i)] = 1
		}

		for k, col := range r.Indices {
			list := postings[col]
			c := cursor[col]
			for c < len(list) && list[c].doc <= i {
				c++
			}
			cursor[col] = c
			w := r.Values[k]
			for _, p := range list[c:] {
				if !seen[p.doc] {
					seen[p.doc] = true
					touched = append(touched, p.doc)
				}
				acc[p.doc] += w * p.w
			}
		}

		for _, j := range touched {
			m.data[m.offset(i, j)] = clamp(acc[j])
			acc[j] = 0
			seen[j] = false
		}
		touched = touched[:0]
	}

	return m, nil
}

// FromPacked restores a Matrix from its packed upper triangle.
func FromPacked(n int, data []float32) (*Matrix, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative dimension %d", n)
	}
	if want := packedLen(n); len(data) != want {
		return nil, fmt.Errorf("packed length %d, want %d for n=%d", len(data), want, n)
	}
	for k, v := range data {
		if v < 0 || v > 1 || math.IsNaN(float64(v)) {
			return nil, fmt.Errorf("score %v at offset %d outside [0, 1]", v, k)
		}
	}
	return &Matrix{n: n, data: data}, nil
}

// Len returns n.
func (m *Matrix) Len() int {
	return m.n
}

// Packed returns the upper triangle in row-major order. Callers must not
// modify it.
func (m *Matrix) Packed() []float32 {
	return m.data
}

// Score returns sim(i, j). Both indices must be in range.
func (m *Matrix) Score(i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	return float64(m.data[m.offset(i, j)])
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	out := make([]float64, m.n)
	for j := 0; j < m.n; j++ {
		out[j] = m.Score(i, j)
	}
	return out
}

func (m *Matrix) offset(i, j int) int {
	return i*m.n - i*(i-1)/2 + (j - i)
}

func packedLen(n int) int {
	return n * (n + 1) / 2
}

func clamp(v float64) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return float32(v)
}
