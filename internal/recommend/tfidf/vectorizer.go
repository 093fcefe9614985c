// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

// Package tfidf fits a bounded vocabulary over cleaned documents and encodes
// each document as an L2-normalized TF-IDF vector.
//
// # Weighting
//
//	tf(t, d) = raw count of t in d
//	idf(t)   = ln((1 + n) / (1 + df(t))) + 1
//	w(t, d)  = tf(t, d) * idf(t), then each row is scaled to unit L2 norm
//
// The smoothed IDF never divides by zero and stays positive for a term that
// appears in every document. An empty document is an all-zero row.
//
// # Vocabulary Selection
//
// When the corpus holds more distinct terms than MaxFeatures, the terms
// with the highest total frequency across the corpus are kept, and equal
// frequencies are ordered by ascending term. Kept terms are assigned
// columns in lexical order.
package tfidf

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/apperrors"
)

// Config controls vocabulary fitting.
type Config struct {
	// MaxFeatures bounds the vocabulary size. Must be positive.
	MaxFeatures int

	// MinTermLength ignores shorter tokens. Zero or one keeps every token.
	MinTermLength int
}

// Vectorizer fits and encodes TF-IDF matrices.
type Vectorizer struct {
	config Config
	logger zerolog.Logger
}

// New creates a Vectorizer. A non-positive MaxFeatures is a configuration
// error.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) (*Vectorizer, error) {
	if cfg.MaxFeatures <= 0 {
		return nil, apperrors.NewConfigurationError("max_vocabulary_size",
			fmt.Sprintf("must be positive, got %d", cfg.MaxFeatures))
	}
	if cfg.MinTermLength < 0 {
		return nil, apperrors.NewConfigurationError("min_term_length",
			fmt.Sprintf("must not be negative, got %d", cfg.MinTermLength))
	}
	return &Vectorizer{
		config: cfg,
		logger: logger.With().Str("component", "vectorizer").Logger(),
	}, nil
}

// termCount is a term with its total corpus frequency.
type termCount struct {
	term  string
	count int
}

// FitTransform fits the vocabulary and IDF weights on docs and returns one
// row per document, in input order.
func (v *Vectorizer) FitTransform(ctx context.Context, docs []string) (*Matrix, error) {
	n := len(docs)
	if n == 0 {
		return nil, apperrors.NewConfigurationError("corpus", "empty corpus, no documents to fit")
	}

	counts := make([]map[string]int, n)
	totals := make(map[string]int)
	docFreq := make(map[string]int)

	for i, doc := range docs {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("count terms: %w", err)
			}
		}
		tf := countTerms(doc, v.config.MinTermLength)
		counts[i] = tf
		for term, c := range tf {
			totals[term] += c
			docFreq[term]++
		}
	}

	if len(totals) == 0 {
		return nil, apperrors.NewConfigurationError("corpus", "no terms to fit, every document is empty")
	}

	terms := selectTerms(totals, v.config.MaxFeatures)
	vocab := newVocabulary(terms)

	idf := make([]float64, len(terms))
	for j, term := range terms {
		idf[j] = smoothIDF(n, docFreq[term])
	}

	m := &Matrix{
		vocab:         vocab,
		idf:           idf,
		rows:          make([]Vector, n),
		minTermLength: v.config.MinTermLength,
	}
	nnz := 0
	for i, tf := range counts {
		m.rows[i] = m.weigh(tf)
		nnz += m.rows[i].Nnz()
	}

	v.logger.Info().
		Int("documents", n).
		Int("distinct_terms", len(totals)).
		Int("vocabulary", vocab.Len()).
		Bool("truncated", len(totals) > v.config.MaxFeatures).
		Int("nnz", nnz).
		Str("shape", fmt.Sprintf("(%d, %d)", n, vocab.Len())).
		Msg("tfidf matrix built")

	return m, nil
}

// selectTerms keeps at most limit terms by descending total count, ties by
// ascending term, and returns them in lexical order.
func selectTerms(totals map[string]int, limit int) []string {
	ranked := make([]termCount, 0, len(totals))
	for term, c := range totals {
		ranked = append(ranked, termCount{term: term, count: c})
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].count != ranked[b].count {
			return ranked[a].count > ranked[b].count
		}
		return ranked[a].term < ranked[b].term
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	terms := make([]string, len(ranked))
	for i, tc := range ranked {
		terms[i] = tc.term
	}
	sort.Strings(terms)
	return terms
}

func smoothIDF(n, df int) float64 {
	return math.Log(float64(1+n)/float64(1+df)) + 1
}

func countTerms(doc string, minLen int) map[string]int {
	tf := make(map[string]int)
	for _, tok := range strings.Fields(doc) {
		if len(tok) < minLen {
			continue
		}
		tf[tok]++
	}
	return tf
}
