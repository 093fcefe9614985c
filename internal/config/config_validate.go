// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/corpus"
	"github.com/tomtom215/songsim/internal/logging"
	"github.com/tomtom215/songsim/internal/recommend/normalize"
	"github.com/tomtom215/songsim/internal/recommend/storage"
)

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// Validate checks the configuration. The first problem found is returned
// as a ConfigurationError naming the offending field.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateCorpus,
		c.validateVectorizer,
		c.validateRecommend,
		c.validateSnapshot,
		c.validateRebuild,
		c.validateServer,
		c.validateRateLimits,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateCorpus() error {
	if strings.TrimSpace(c.Corpus.Path) == "" {
		return apperrors.NewConfigurationError("CORPUS_PATH", "must not be empty")
	}
	if !corpus.ValidLoader(c.Corpus.Loader) {
		return apperrors.NewConfigurationError("CORPUS_LOADER",
			fmt.Sprintf("must be one of: %s, %s; got %q", corpus.LoaderCSV, corpus.LoaderDuckDB, c.Corpus.Loader))
	}
	return nil
}

func (c *Config) validateVectorizer() error {
	if c.Vectorizer.MaxVocabularySize <= 0 {
		return apperrors.NewConfigurationError("MAX_VOCABULARY_SIZE",
			fmt.Sprintf("must be positive, got %d", c.Vectorizer.MaxVocabularySize))
	}
	if !normalize.SupportedLanguage(c.Vectorizer.TokenizerLanguage) {
		return apperrors.NewConfigurationError("TOKENIZER_LANGUAGE",
			fmt.Sprintf("unsupported language %q", c.Vectorizer.TokenizerLanguage))
	}
	if c.Vectorizer.MinTermLength < 0 {
		return apperrors.NewConfigurationError("MIN_TERM_LENGTH",
			fmt.Sprintf("must not be negative, got %d", c.Vectorizer.MinTermLength))
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.TopKDefault <= 0 {
		return apperrors.NewConfigurationError("TOP_K_DEFAULT",
			fmt.Sprintf("must be positive, got %d", c.Recommend.TopKDefault))
	}
	if c.Recommend.MaxK < c.Recommend.TopKDefault {
		return apperrors.NewConfigurationError("MAX_K",
			fmt.Sprintf("must be >= TOP_K_DEFAULT, got %d < %d", c.Recommend.MaxK, c.Recommend.TopKDefault))
	}
	if c.Recommend.CacheEnabled {
		if c.Recommend.CacheSize <= 0 {
			return apperrors.NewConfigurationError("RECOMMEND_CACHE_SIZE",
				fmt.Sprintf("must be positive, got %d", c.Recommend.CacheSize))
		}
		if c.Recommend.CacheTTL <= 0 {
			return apperrors.NewConfigurationError("RECOMMEND_CACHE_TTL",
				fmt.Sprintf("must be positive, got %v", c.Recommend.CacheTTL))
		}
	}
	return nil
}

func (c *Config) validateSnapshot() error {
	if !storage.ValidKind(c.Snapshot.Store) {
		return apperrors.NewConfigurationError("SNAPSHOT_STORE",
			fmt.Sprintf("must be one of: %s, %s; got %q", storage.StoreFile, storage.StoreBadger, c.Snapshot.Store))
	}
	if strings.TrimSpace(c.Snapshot.Path) == "" {
		return apperrors.NewConfigurationError("SNAPSHOT_PATH", "must not be empty")
	}
	return nil
}

func (c *Config) validateRebuild() error {
	if c.Rebuild.Timeout <= 0 {
		return apperrors.NewConfigurationError("REBUILD_TIMEOUT",
			fmt.Sprintf("must be positive, got %v", c.Rebuild.Timeout))
	}
	if c.Rebuild.Interval < 0 {
		return apperrors.NewConfigurationError("REBUILD_INTERVAL",
			fmt.Sprintf("must not be negative, got %v", c.Rebuild.Interval))
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return apperrors.NewConfigurationError("HTTP_PORT",
			fmt.Sprintf("must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.Timeout <= 0 {
		return apperrors.NewConfigurationError("HTTP_TIMEOUT",
			fmt.Sprintf("must be positive, got %v", c.Server.Timeout))
	}
	return nil
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return apperrors.NewConfigurationError("RATE_LIMIT_REQUESTS",
			fmt.Sprintf("must be between %d and %d", minRateLimitRequests, maxRateLimitRequests))
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return apperrors.NewConfigurationError("RATE_LIMIT_WINDOW",
			fmt.Sprintf("must be between %v and %v", minRateLimitWindow, maxRateLimitWindow))
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return apperrors.NewConfigurationError("LOG_LEVEL", fmt.Sprintf("unknown level %q", c.Logging.Level))
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return apperrors.NewConfigurationError("LOG_FORMAT",
			fmt.Sprintf("must be json or console, got %q", c.Logging.Format))
	}
	return nil
}

// HasWildcardCORS reports whether any origin is allowed.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
