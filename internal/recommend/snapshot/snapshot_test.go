// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package snapshot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/recommend/similarity"
	"github.com/tomtom215/songsim/internal/recommend/tfidf"
)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(BuilderConfig{Language: "english", MaxFeatures: 5000, MinTermLength: 2}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func songs(pairs ...string) []Document {
	docs := make([]Document, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		docs = append(docs, Document{Title: pairs[i], Text: pairs[i+1]})
	}
	return docs
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	// Input ids are ignored and reassigned by position.
	docs := songs("A", "Love and Rain", "B", "love, sun!", "C", "War")
	docs[0].ID = 99

	s, err := b.Build(context.Background(), 1, docs)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if s.Generation != 1 || s.BuildID == "" || s.BuiltAt.IsZero() {
		t.Errorf("snapshot metadata = gen %d, build %q, built %v", s.Generation, s.BuildID, s.BuiltAt)
	}
	if s.Language != "english" || s.Info().Language != "english" {
		t.Errorf("language = %q / %q, want english", s.Language, s.Info().Language)
	}
	if s.Len() != 3 || s.TFIDF.Len() != 3 || s.Similarity.Len() != 3 {
		t.Fatalf("snapshot rows = %d/%d/%d, want 3", s.Len(), s.TFIDF.Len(), s.Similarity.Len())
	}
	for i, d := range s.Documents {
		if d.ID != i {
			t.Errorf("document %d has id %d", i, d.ID)
		}
	}
	if got := s.Documents[0].Cleaned; got != "love rain" {
		t.Errorf("cleaned[0] = %q, want %q", got, "love rain")
	}
	if docs[0].ID != 99 {
		t.Error("Build() modified the caller's documents")
	}
	if s.Similarity.Score(0, 1) <= 0 || s.Similarity.Score(0, 2) != 0 {
		t.Errorf("unexpected similarity scores: AB=%v AC=%v", s.Similarity.Score(0, 1), s.Similarity.Score(0, 2))
	}
}

func TestBuilder_EmptyCorpus(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	tests := []struct {
		name string
		docs []Document
	}{
		{name: "no documents", docs: nil},
		{name: "only stopwords", docs: songs("A", "the and of", "B", "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := b.Build(context.Background(), 1, tt.docs); !errors.Is(err, apperrors.ErrConfiguration) {
				t.Errorf("Build() error = %v, want configuration error", err)
			}
		})
	}
}

func TestBuilder_Canceled(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Build(ctx, 1, songs("A", "love")); !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

func TestNewBuilder_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  BuilderConfig
	}{
		{name: "language", cfg: BuilderConfig{Language: "klingon", MaxFeatures: 10}},
		{name: "vocabulary", cfg: BuilderConfig{Language: "english", MaxFeatures: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewBuilder(tt.cfg, zerolog.Nop()); !errors.Is(err, apperrors.ErrConfiguration) {
				t.Errorf("NewBuilder() error = %v, want configuration error", err)
			}
		})
	}
}

func TestSnapshot_TitleIndex(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	s, err := b.Build(context.Background(), 1,
		songs("Same", "love rain", "Other", "sun", "Same", "war", "", "moon", "Alpha", "star"))
	if err != nil {
		t.Fatal(err)
	}

	if id, ok := s.Lookup("Same"); !ok || id != 0 {
		t.Errorf("Lookup(Same) = %d, %v, want first occurrence 0", id, ok)
	}
	if _, ok := s.Lookup("same"); ok {
		t.Error("Lookup() should be case-sensitive")
	}
	if _, ok := s.Lookup("Missing"); ok {
		t.Error("Lookup(Missing) found a document")
	}

	want := []string{"Alpha", "Other", "Same"}
	got := s.Titles()
	if len(got) != len(want) {
		t.Fatalf("Titles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Titles() = %v, want %v", got, want)
			break
		}
	}

	info := s.Info()
	if info.Documents != 5 || info.DistinctTitles != 3 || info.VocabularySize == 0 {
		t.Errorf("Info() = %+v", info)
	}
	if _, ok := s.Document(5); ok {
		t.Error("Document(5) should be out of range")
	}
	if d, ok := s.Document(1); !ok || d.Title != "Other" {
		t.Errorf("Document(1) = %+v, %v", d, ok)
	}
}

func TestAssemble_Integrity(t *testing.T) {
	t.Parallel()

	v, _ := tfidf.New(tfidf.Config{MaxFeatures: 10}, zerolog.Nop())
	tf, err := v.FitTransform(context.Background(), []string{"love", "rain"})
	if err != nil {
		t.Fatal(err)
	}
	sim2, _ := similarity.Build(context.Background(), tf.Rows())
	sim1, _ := similarity.Build(context.Background(), tf.Rows()[:1])
	docs := []Document{{ID: 0, Title: "a"}, {ID: 1, Title: "b"}}
	now := time.Now()

	tests := []struct {
		name string
		gen  int64
		docs []Document
		tf   *tfidf.Matrix
		sim  *similarity.Matrix
	}{
		{name: "zero generation", gen: 0, docs: docs, tf: tf, sim: sim2},
		{name: "missing tfidf", gen: 1, docs: docs, tf: nil, sim: sim2},
		{name: "similarity rows", gen: 1, docs: docs, tf: tf, sim: sim1},
		{name: "corpus rows", gen: 1, docs: docs[:1], tf: tf, sim: sim2},
		{name: "ids out of order", gen: 1, docs: []Document{{ID: 1}, {ID: 0}}, tf: tf, sim: sim2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Assemble(tt.gen, "id", now, "", tt.docs, tt.tf, tt.sim)
			if !errors.Is(err, apperrors.ErrSnapshotIntegrity) {
				t.Errorf("Assemble() error = %v, want integrity error", err)
			}
		})
	}

	s, err := Assemble(1, "id", now, "", docs, tf, sim2)
	if err != nil {
		t.Fatalf("Assemble(valid) error = %v", err)
	}
	if s.Language != "english" {
		t.Errorf("Language = %q, want english default", s.Language)
	}
}

func TestHolder_Publish(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	h := NewHolder()
	if h.Current() != nil || h.Generation() != 0 || h.NextGeneration() != 1 {
		t.Fatal("new holder should be empty")
	}

	s1, err := b.Build(context.Background(), h.NextGeneration(), songs("A", "love"))
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Publish(s1); err != nil {
		t.Fatalf("Publish(s1) error = %v", err)
	}
	if h.Current() != s1 || h.Generation() != 1 {
		t.Errorf("Current() generation = %d, want 1", h.Generation())
	}

	if err := h.Publish(s1); !errors.Is(err, apperrors.ErrSnapshotIntegrity) {
		t.Errorf("republishing same generation error = %v, want integrity error", err)
	}
	if err := h.Publish(nil); err == nil {
		t.Error("Publish(nil) should fail")
	}

	s2, _ := b.Build(context.Background(), h.NextGeneration(), songs("B", "rain"))
	if err := h.Publish(s2); err != nil {
		t.Fatalf("Publish(s2) error = %v", err)
	}
	if h.Current() != s2 {
		t.Error("Current() should return the newest snapshot")
	}
}

func TestHolder_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	h := NewHolder()
	first, _ := b.Build(context.Background(), 1, songs("A", "love"))
	_ = h.Publish(first)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := h.Current()
				if s == nil || s.Len() != s.TFIDF.Len() {
					t.Error("reader observed an inconsistent snapshot")
					return
				}
			}
		}()
	}
	for gen := int64(2); gen <= 5; gen++ {
		s, _ := b.Build(context.Background(), gen, songs("A", "love", "B", "rain"))
		if err := h.Publish(s); err != nil {
			t.Errorf("Publish(%d) error = %v", gen, err)
		}
	}
	wg.Wait()
}

func TestStatic(t *testing.T) {
	t.Parallel()

	if NewStatic(nil).Current() != nil {
		t.Error("Static(nil).Current() should be nil")
	}
	b := newBuilder(t)
	s, _ := b.Build(context.Background(), 3, songs("A", "love"))
	if NewStatic(s).Current() != s {
		t.Error("Static.Current() should return the wrapped snapshot")
	}
}
