// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/recommend/normalize"
)

// Config contains all configuration for the recommendation service.
type Config struct {
	// Language selects the stopword list used to clean free-text queries.
	// It must match the language the snapshot was built with.
	Language string `json:"language"`

	// Limits contains result size limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache"`

	// Rebuild contains snapshot rebuild parameters.
	Rebuild RebuildConfig `json:"rebuild"`
}

// LimitsConfig bounds the number of results per request.
type LimitsConfig struct {
	// DefaultK is used when a request leaves k at zero.
	// Default: 5.
	DefaultK int `json:"default_k"`

	// MaxK caps k. Larger requests are clamped.
	// Default: 100.
	MaxK int `json:"max_k"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	// Enabled turns response caching on.
	// Default: true.
	Enabled bool `json:"enabled"`

	// Size is the maximum number of cached responses.
	// Default: 1024.
	Size int `json:"size"`

	// TTL is the cache entry time-to-live.
	// Default: 10m.
	TTL time.Duration `json:"ttl"`
}

// RebuildConfig controls snapshot rebuilds.
type RebuildConfig struct {
	// Timeout bounds one full rebuild, from corpus load to publish.
	// Default: 30m.
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Language: normalize.DefaultLanguage,
		Limits: LimitsConfig{
			DefaultK: 5,
			MaxK:     100,
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    1024,
			TTL:     10 * time.Minute,
		},
		Rebuild: RebuildConfig{
			Timeout: 30 * time.Minute,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !normalize.SupportedLanguage(c.Language) {
		return apperrors.NewConfigurationError("language", fmt.Sprintf("unsupported tokenizer language %q", c.Language))
	}
	if c.Limits.DefaultK < 1 {
		return apperrors.NewConfigurationError("limits.default_k", fmt.Sprintf("must be positive, got %d", c.Limits.DefaultK))
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return apperrors.NewConfigurationError("limits.max_k",
			fmt.Sprintf("must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK))
	}
	if c.Cache.Enabled && c.Cache.Size < 1 {
		return apperrors.NewConfigurationError("cache.size", fmt.Sprintf("must be positive, got %d", c.Cache.Size))
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return apperrors.NewConfigurationError("cache.ttl", fmt.Sprintf("must be positive, got %v", c.Cache.TTL))
	}
	if c.Rebuild.Timeout <= 0 {
		return apperrors.NewConfigurationError("rebuild.timeout", fmt.Sprintf("must be positive, got %v", c.Rebuild.Timeout))
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
