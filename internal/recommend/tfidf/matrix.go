// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package tfidf

import (
	"fmt"
	"math"
	"sort"
)

// Vocabulary maps terms to dense, contiguous, 0-based column indices.
type Vocabulary struct {
	terms []string
	index map[string]int
}

func newVocabulary(terms []string) *Vocabulary {
	index := make(map[string]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}
	return &Vocabulary{terms: terms, index: index}
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Index returns the column of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Term returns the term at column i.
func (v *Vocabulary) Term(i int) string {
	return v.terms[i]
}

// Terms returns a copy of all terms in column order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Matrix is a fitted TF-IDF matrix: one row per document plus the
// vocabulary and IDF weights needed to encode new text. It is immutable
// once built.
type Matrix struct {
	vocab         *Vocabulary
	idf           []float64
	rows          []Vector
	minTermLength int
}

// Restore rebuilds a Matrix from persisted parts and checks that every row
// refers only to vocabulary columns, in ascending order, with non-negative
// weights.
func Restore(terms []string, idf []float64, rows []Vector, minTermLength int) (*Matrix, error) {
	if len(terms) != len(idf) {
		return nil, fmt.Errorf("vocabulary has %d terms but %d idf weights", len(terms), len(idf))
	}
	if !sort.StringsAreSorted(terms) {
		return nil, fmt.Errorf("vocabulary terms are not in lexical order")
	}
	for i, row := range rows {
		if len(row.Indices) != len(row.Values) {
			return nil, fmt.Errorf("row %d: %d indices but %d values", i, len(row.Indices), len(row.Values))
		}
		prev := -1
		for k, idx := range row.Indices {
			if idx <= prev || idx >= len(terms) {
				return nil, fmt.Errorf("row %d: column %d out of order or range", i, idx)
			}
			if row.Values[k] < 0 || math.IsNaN(row.Values[k]) {
				return nil, fmt.Errorf("row %d: invalid weight %v", i, row.Values[k])
			}
			prev = idx
		}
	}
	return &Matrix{
		vocab:         newVocabulary(terms),
		idf:           idf,
		rows:          rows,
		minTermLength: minTermLength,
	}, nil
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	return len(m.rows)
}

// Row returns the vector for document i.
func (m *Matrix) Row(i int) Vector {
	return m.rows[i]
}

// Rows returns all document vectors. Callers must not modify them.
func (m *Matrix) Rows() []Vector {
	return m.rows
}

// Vocabulary returns the fitted vocabulary.
func (m *Matrix) Vocabulary() *Vocabulary {
	return m.vocab
}

// IDF returns the IDF weight for each column.
func (m *Matrix) IDF() []float64 {
	return m.idf
}

// MinTermLength returns the token length filter used when fitting.
func (m *Matrix) MinTermLength() int {
	return m.minTermLength
}

// Transform encodes a cleaned text with the fitted vocabulary and IDF.
// Out-of-vocabulary tokens are ignored.
func (m *Matrix) Transform(cleaned string) Vector {
	return m.weigh(countTerms(cleaned, m.minTermLength))
}

func (m *Matrix) weigh(tf map[string]int) Vector {
	type entry struct {
		idx int
		w   float64
	}
	entries := make([]entry, 0, len(tf))
	for term, c := range tf {
		idx, ok := m.vocab.Index(term)
		if !ok {
			continue
		}
		entries = append(entries, entry{idx: idx, w: float64(c) * m.idf[idx]})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].idx < entries[b].idx })

	vec := Vector{
		Indices: make([]int, len(entries)),
		Values:  make([]float64, len(entries)),
	}
	for k, e := range entries {
		vec.Indices[k] = e.idx
		vec.Values[k] = e.w
	}
	vec.normalize()
	return vec
}
