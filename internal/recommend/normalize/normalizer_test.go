// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package normalize

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/logging"
)

var cleanedAlphabet = regexp.MustCompile(`^([a-z]+( [a-z]+)*)?$`)

func newEnglish(t *testing.T, opts ...Option) *Normalizer {
	t.Helper()
	n, err := New("english", opts...)
	if err != nil {
		t.Fatalf("New(english) error = %v", err)
	}
	return n
}

func TestNew_Languages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		lang    string
		want    string
		wantErr bool
	}{
		{name: "english", lang: "english", want: "english"},
		{name: "mixed case", lang: "English", want: "english"},
		{name: "alias", lang: "en", want: "english"},
		{name: "unsupported", lang: "klingon", wantErr: true},
		{name: "empty", lang: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n, err := New(tt.lang)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrConfiguration) {
					t.Fatalf("New(%q) error = %v, want configuration error", tt.lang, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) unexpected error: %v", tt.lang, err)
			}
			if n.Language() != tt.want {
				t.Errorf("Language() = %q, want %q", n.Language(), tt.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	n := newEnglish(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "lowercases", input: "Love RAIN", want: "love rain"},
		{name: "drops stopwords", input: "I am the rain and you are the sun", want: "rain sun"},
		{name: "strips punctuation", input: "Hello, world!", want: "hello world"},
		{name: "numbers merge adjacent words", input: "rain1000mph", want: "rainmph"},
		{name: "apostrophe merges contraction", input: "Don't stop", want: "dont stop"},
		{name: "collapses whitespace", input: "  fire \n\t ice  ", want: "fire ice"},
		{name: "non ascii letters removed", input: "café naïve", want: "caf nave"},
		{name: "only stopwords", input: "the and of", want: ""},
		{name: "only symbols", input: "!!! 123 ???", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := n.NormalizeText(tt.input)
			if err != nil {
				t.Fatalf("NormalizeText(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeText_OutputProperties(t *testing.T) {
	t.Parallel()

	n := newEnglish(t)
	inputs := []string{
		"Look at her face, it's a wonderful face\nAnd it means something special to me",
		"Whoa-oh! 99 problems; but a b**** ain't one...",
		" tab\tseparated em space",
		"ALL CAPS SHOUTING AT THE SKY",
		"mixed123numbers456and789words",
	}

	for _, in := range inputs {
		got, err := n.NormalizeText(in)
		if err != nil {
			t.Fatalf("NormalizeText(%q) error = %v", in, err)
		}
		if !cleanedAlphabet.MatchString(got) {
			t.Errorf("NormalizeText(%q) = %q, want lowercase letters and single spaces", in, got)
		}
		for _, tok := range strings.Fields(got) {
			if n.IsStopword(tok) {
				t.Errorf("NormalizeText(%q) kept stopword %q", in, tok)
			}
		}
	}
}

func TestNormalize_MissingValues(t *testing.T) {
	t.Parallel()

	n := newEnglish(t)
	var nilString *string

	tests := []struct {
		name string
		raw  any
		want string
	}{
		{name: "nil", raw: nil, want: ""},
		{name: "empty string", raw: "", want: ""},
		{name: "nil pointer", raw: nilString, want: ""},
		{name: "null sql string", raw: sql.NullString{}, want: ""},
		{name: "valid sql string", raw: sql.NullString{String: "Love", Valid: true}, want: "love"},
		{name: "bytes", raw: []byte("Rain"), want: "rain"},
		{name: "number", raw: 42, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := n.Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%v) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

type failingTokenizer struct {
	failOn string
	panic  bool
}

func (f failingTokenizer) Tokenize(text string) ([]string, error) {
	if strings.Contains(text, f.failOn) {
		if f.panic {
			panic("tokenizer exploded")
		}
		return nil, errors.New("tokenizer failed")
	}
	return strings.Fields(text), nil
}

func TestNormalizeCorpus_IsolatesFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		panic bool
	}{
		{name: "error", panic: false},
		{name: "panic", panic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			n := newEnglish(t,
				WithTokenizer(failingTokenizer{failOn: "poison", panic: tt.panic}),
				WithLogger(logging.NewTestLogger(&buf)),
			)

			texts := []string{"Love song", "poison apple", "Rain dance"}
			cleaned, failed, err := n.NormalizeCorpus(context.Background(), texts)
			if err != nil {
				t.Fatalf("NormalizeCorpus() error = %v", err)
			}
			if failed != 1 {
				t.Errorf("failed = %d, want 1", failed)
			}

			want := []string{"love song", "", "rain dance"}
			if len(cleaned) != len(want) {
				t.Fatalf("len(cleaned) = %d, want %d", len(cleaned), len(want))
			}
			for i := range want {
				if cleaned[i] != want[i] {
					t.Errorf("cleaned[%d] = %q, want %q", i, cleaned[i], want[i])
				}
			}

			logged := buf.String()
			if !strings.Contains(logged, `"doc_id":1`) {
				t.Errorf("expected failure log with doc_id 1, got %s", logged)
			}
			if !strings.Contains(logged, `"level":"warn"`) {
				t.Errorf("expected warn level failure log, got %s", logged)
			}
		})
	}
}

func TestNormalizeCorpus_Canceled(t *testing.T) {
	t.Parallel()

	n := newEnglish(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := n.NormalizeCorpus(ctx, []string{"a"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("NormalizeCorpus() error = %v, want context.Canceled", err)
	}
}

func TestStopwordList(t *testing.T) {
	t.Parallel()

	if len(englishStopwords) != 179 {
		t.Errorf("english stopwords = %d entries, want 179", len(englishStopwords))
	}

	n := newEnglish(t)
	for _, w := range []string{"the", "and", "i", "me", "wouldn"} {
		if !n.IsStopword(w) {
			t.Errorf("IsStopword(%q) = false, want true", w)
		}
	}
	for _, w := range []string{"love", "rain", "dont"} {
		if n.IsStopword(w) {
			t.Errorf("IsStopword(%q) = true, want false", w)
		}
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	if got := preview("short", 30); got != "short" {
		t.Errorf("preview(short) = %q", got)
	}
	long := strings.Repeat("x", 40)
	if got := preview(long, 30); got != strings.Repeat("x", 30)+"..." {
		t.Errorf("preview(long) = %q", got)
	}
}
