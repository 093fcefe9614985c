// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

// Package snapshot ties one build pass together: the corpus, its TF-IDF
// matrix and its similarity matrix, tagged with a generation.
//
// A Snapshot is immutable once assembled. Readers obtain it through a
// Source; a Holder publishes replacements atomically so in-flight queries
// keep the generation they loaded.
package snapshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/recommend/normalize"
	"github.com/tomtom215/songsim/internal/recommend/similarity"
	"github.com/tomtom215/songsim/internal/recommend/tfidf"
)

// Document is one song in the corpus. ID is its position in the snapshot
// and its row in both matrices.
type Document struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Artist  string `json:"artist,omitempty"`
	Text    string `json:"-"`
	Cleaned string `json:"-"`
}

// Snapshot is the output of one build pass.
type Snapshot struct {
	Generation int64
	BuildID    string
	BuiltAt    time.Time
	// Language is the tokenizer language the corpus was cleaned with.
	Language   string
	Documents  []Document
	TFIDF      *tfidf.Matrix
	Similarity *similarity.Matrix

	byTitle map[string]int
	titles  []string
}

// Assemble validates that the parts come from the same pass and indexes the
// titles. Any disagreement is an IntegrityError. An empty language means
// normalize.DefaultLanguage.
func Assemble(generation int64, buildID string, builtAt time.Time, language string, docs []Document, tf *tfidf.Matrix, sim *similarity.Matrix) (*Snapshot, error) {
	if generation <= 0 {
		return nil, apperrors.NewIntegrityError("manifest", fmt.Sprintf("generation must be positive, got %d", generation))
	}
	if tf == nil || sim == nil {
		return nil, apperrors.NewIntegrityError("", "missing matrix")
	}
	if tf.Len() != len(docs) {
		return nil, apperrors.NewIntegrityError("tfidf",
			fmt.Sprintf("%d rows for %d documents", tf.Len(), len(docs)))
	}
	if sim.Len() != len(docs) {
		return nil, apperrors.NewIntegrityError("similarity",
			fmt.Sprintf("%d rows for %d documents", sim.Len(), len(docs)))
	}
	for i, d := range docs {
		if d.ID != i {
			return nil, apperrors.NewIntegrityError("corpus",
				fmt.Sprintf("document at position %d has id %d", i, d.ID))
		}
	}

	if language == "" {
		language = normalize.DefaultLanguage
	}

	s := &Snapshot{
		Generation: generation,
		BuildID:    buildID,
		BuiltAt:    builtAt,
		Language:   language,
		Documents:  docs,
		TFIDF:      tf,
		Similarity: sim,
		byTitle:    make(map[string]int, len(docs)),
	}
	for _, d := range docs {
		if _, dup := s.byTitle[d.Title]; dup {
			continue
		}
		s.byTitle[d.Title] = d.ID
		if d.Title != "" {
			s.titles = append(s.titles, d.Title)
		}
	}
	sort.Strings(s.titles)
	return s, nil
}

// Len returns the number of documents.
func (s *Snapshot) Len() int {
	return len(s.Documents)
}

// Lookup resolves an exact, case-sensitive title. When titles repeat, the
// first document in corpus order wins.
func (s *Snapshot) Lookup(title string) (int, bool) {
	id, ok := s.byTitle[title]
	return id, ok
}

// Document returns the document with the given id.
func (s *Snapshot) Document(id int) (Document, bool) {
	if id < 0 || id >= len(s.Documents) {
		return Document{}, false
	}
	return s.Documents[id], true
}

// Titles returns the distinct non-empty titles in lexical order.
func (s *Snapshot) Titles() []string {
	out := make([]string, len(s.titles))
	copy(out, s.titles)
	return out
}

// Info summarizes a snapshot for status endpoints.
type Info struct {
	Generation     int64     `json:"generation"`
	BuildID        string    `json:"build_id"`
	BuiltAt        time.Time `json:"built_at"`
	Language       string    `json:"language"`
	Documents      int       `json:"documents"`
	VocabularySize int       `json:"vocabulary_size"`
	DistinctTitles int       `json:"distinct_titles"`
}

// Info returns the snapshot summary.
func (s *Snapshot) Info() Info {
	return Info{
		Generation:     s.Generation,
		BuildID:        s.BuildID,
		BuiltAt:        s.BuiltAt,
		Language:       s.Language,
		Documents:      len(s.Documents),
		VocabularySize: s.TFIDF.Vocabulary().Len(),
		DistinctTitles: len(s.titles),
	}
}
