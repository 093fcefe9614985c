// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

// Package normalize turns raw lyric text into cleaned, space-joined,
// lowercase tokens with stopwords removed.
//
// Cleaning removes every character that is not an ASCII letter or
// whitespace without inserting a separator, so "rain1000mph" becomes
// "rainmph". A document whose tokenization fails is logged and yields an
// empty string; it never aborts a corpus pass.
package normalize

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/apperrors"
)

// Tokenizer splits cleaned, lowercased text into tokens.
type Tokenizer interface {
	Tokenize(text string) ([]string, error)
}

// WhitespaceTokenizer splits on runs of Unicode whitespace. Once
// non-letters are stripped, word boundaries are exactly whitespace runs.
type WhitespaceTokenizer struct{}

// Tokenize implements Tokenizer.
func (WhitespaceTokenizer) Tokenize(text string) ([]string, error) {
	return strings.Fields(text), nil
}

// DefaultLanguage is used when no tokenizer language is configured.
const DefaultLanguage = "english"

// language bundles the resources for one tokenizer language.
type language struct {
	name      string
	stopwords []string
	tokenizer Tokenizer
}

var languages = map[string]language{
	"english": {name: "english", stopwords: englishStopwords, tokenizer: WhitespaceTokenizer{}},
}

var languageAliases = map[string]string{
	"en": "english",
}

// SupportedLanguage reports whether name selects a known language.
func SupportedLanguage(name string) bool {
	_, ok := lookupLanguage(name)
	return ok
}

func lookupLanguage(name string) (language, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := languageAliases[key]; ok {
		key = alias
	}
	lang, ok := languages[key]
	return lang, ok
}

// Normalizer cleans lyric text for one configured language.
// It is safe for concurrent use.
type Normalizer struct {
	language  string
	stopwords map[string]struct{}
	tokenizer Tokenizer
	logger    zerolog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithTokenizer replaces the language's default tokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(n *Normalizer) {
		n.tokenizer = t
	}
}

// WithLogger sets the logger used for per-document failures.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// New creates a Normalizer for the named language. An unsupported language
// is a configuration error.
func New(languageName string, opts ...Option) (*Normalizer, error) {
	lang, ok := lookupLanguage(languageName)
	if !ok {
		return nil, apperrors.NewConfigurationError("tokenizer_language",
			fmt.Sprintf("unsupported language %q", languageName))
	}

	stop := make(map[string]struct{}, len(lang.stopwords))
	for _, w := range lang.stopwords {
		stop[w] = struct{}{}
	}

	n := &Normalizer{
		language:  lang.name,
		stopwords: stop,
		tokenizer: lang.tokenizer,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With().Str("component", "normalizer").Str("language", n.language).Logger()
	return n, nil
}

// Language returns the canonical language name.
func (n *Normalizer) Language() string {
	return n.language
}

// IsStopword reports whether token is in the language's stopword set.
func (n *Normalizer) IsStopword(token string) bool {
	_, ok := n.stopwords[token]
	return ok
}

// NormalizeText cleans a single text and reports tokenizer failures.
// A panicking tokenizer is reported as an error.
func (n *Normalizer) NormalizeText(text string) (cleaned string, err error) {
	defer func() {
		if r := recover(); r != nil {
			cleaned = ""
			err = fmt.Errorf("tokenizer panic: %v", r)
		}
	}()

	lowered := strings.ToLower(stripNonLetters(text))

	tokens, err := n.tokenizer.Tokenize(lowered)
	if err != nil {
		return "", fmt.Errorf("tokenize: %w", err)
	}

	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if _, stop := n.stopwords[tok]; stop {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " "), nil
}

// Normalize cleans any value, coercing it to a string first. Failures are
// logged and produce "".
func (n *Normalizer) Normalize(raw any) string {
	text := Coerce(raw)
	cleaned, err := n.NormalizeText(text)
	if err != nil {
		n.logFailure(&apperrors.DocumentError{DocID: -1, Err: err}, text)
		return ""
	}
	return cleaned
}

// NormalizeCorpus cleans every text in order. A failing document keeps its
// slot with an empty cleaned text so row alignment is preserved; the
// number of failed documents is returned. Only context cancellation
// aborts the pass.
func (n *Normalizer) NormalizeCorpus(ctx context.Context, texts []string) ([]string, int, error) {
	cleaned := make([]string, len(texts))
	failed := 0

	for i, text := range texts {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, failed, fmt.Errorf("normalize corpus: %w", err)
			}
		}

		out, err := n.NormalizeText(text)
		if err != nil {
			failed++
			n.logFailure(&apperrors.DocumentError{DocID: i, Err: err}, text)
			continue
		}
		cleaned[i] = out
	}

	return cleaned, failed, nil
}

func (n *Normalizer) logFailure(err *apperrors.DocumentError, text string) {
	n.logger.Warn().
		Err(err).
		Int("doc_id", err.DocID).
		Str("preview", preview(text, 30)).
		Msg("document normalization failed, using empty text")
}

// Coerce converts a raw corpus value to text. Missing values become "".
func Coerce(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case []byte:
		return string(v)
	case sql.NullString:
		if !v.Valid {
			return ""
		}
		return v.String
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// stripNonLetters keeps ASCII letters and whitespace and drops everything
// else without substitution.
func stripNonLetters(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
