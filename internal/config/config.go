// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/songsim/internal/corpus"
	"github.com/tomtom215/songsim/internal/logging"
	"github.com/tomtom215/songsim/internal/recommend"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
)

// Config holds all application configuration.
type Config struct {
	Corpus     CorpusConfig     `koanf:"corpus"`
	Vectorizer VectorizerConfig `koanf:"vectorizer"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Snapshot   SnapshotConfig   `koanf:"snapshot"`
	Rebuild    RebuildConfig    `koanf:"rebuild"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// CorpusConfig selects the lyric corpus and how it is sampled.
//
// Environment Variables:
//   - CORPUS_PATH: CSV file with song, text and optional artist columns
//   - CORPUS_LOADER: csv or duckdb (default: csv)
//   - SAMPLE_SIZE: rows to sample, <= 0 keeps all (default: 10000)
//   - CORPUS_SEED: sampling seed (default: 42)
type CorpusConfig struct {
	Path       string `koanf:"path"`
	Loader     string `koanf:"loader"`
	SampleSize int    `koanf:"sample_size"`
	Seed       int64  `koanf:"seed"`
}

// VectorizerConfig holds text cleaning and TF-IDF settings.
//
// Environment Variables:
//   - MAX_VOCABULARY_SIZE: vocabulary cap (default: 5000)
//   - TOKENIZER_LANGUAGE: stopword language (default: english)
//   - MIN_TERM_LENGTH: shortest token kept (default: 2)
type VectorizerConfig struct {
	MaxVocabularySize int    `koanf:"max_vocabulary_size"`
	TokenizerLanguage string `koanf:"tokenizer_language"`
	MinTermLength     int    `koanf:"min_term_length"`
}

// RecommendConfig holds query settings.
//
// Environment Variables:
//   - TOP_K_DEFAULT: results when k is omitted (default: 5)
//   - MAX_K: upper bound for k (default: 100)
//   - RECOMMEND_CACHE_ENABLED, RECOMMEND_CACHE_SIZE, RECOMMEND_CACHE_TTL
type RecommendConfig struct {
	TopKDefault  int           `koanf:"top_k_default"`
	MaxK         int           `koanf:"max_k"`
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheSize    int           `koanf:"cache_size"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// SnapshotConfig selects where snapshots are persisted.
//
// Environment Variables:
//   - SNAPSHOT_STORE: file or badger (default: file)
//   - SNAPSHOT_PATH: directory for the store (default: /data/snapshot)
//   - SNAPSHOT_LOAD_ON_STARTUP: load the persisted snapshot (default: true)
type SnapshotConfig struct {
	Store         string `koanf:"store"`
	Path          string `koanf:"path"`
	LoadOnStartup bool   `koanf:"load_on_startup"`
}

// RebuildConfig controls server-side rebuilds.
//
// Environment Variables:
//   - REBUILD_ON_STARTUP: build when no snapshot was loaded (default: true)
//   - REBUILD_INTERVAL: periodic rebuild interval, 0 disables (default: 0s)
//   - REBUILD_TIMEOUT: bound for one rebuild (default: 30m)
type RebuildConfig struct {
	OnStartup bool          `koanf:"on_startup"`
	Interval  time.Duration `koanf:"interval"`
	Timeout   time.Duration `koanf:"timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`

	// File, when set, receives a JSON copy of every log event.
	File string `koanf:"file"`
}

// CorpusLoaderConfig returns the settings for corpus.New.
func (c *Config) CorpusLoaderConfig() corpus.Config {
	return corpus.Config{
		Path:       c.Corpus.Path,
		Loader:     c.Corpus.Loader,
		SampleSize: c.Corpus.SampleSize,
		Seed:       c.Corpus.Seed,
	}
}

// BuilderConfig returns the settings for snapshot.NewBuilder.
func (c *Config) BuilderConfig() snapshot.BuilderConfig {
	return snapshot.BuilderConfig{
		Language:      c.Vectorizer.TokenizerLanguage,
		MaxFeatures:   c.Vectorizer.MaxVocabularySize,
		MinTermLength: c.Vectorizer.MinTermLength,
	}
}

// ServiceConfig returns the settings for recommend.NewService.
func (c *Config) ServiceConfig() *recommend.Config {
	return &recommend.Config{
		Language: c.Vectorizer.TokenizerLanguage,
		Limits: recommend.LimitsConfig{
			DefaultK: c.Recommend.TopKDefault,
			MaxK:     c.Recommend.MaxK,
		},
		Cache: recommend.CacheConfig{
			Enabled: c.Recommend.CacheEnabled,
			Size:    c.Recommend.CacheSize,
			TTL:     c.Recommend.CacheTTL,
		},
		Rebuild: recommend.RebuildConfig{
			Timeout: c.Rebuild.Timeout,
		},
	}
}

// LoggerConfig returns the settings for logging.Init. The optional log
// file is opened by the caller.
func (c *Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}
