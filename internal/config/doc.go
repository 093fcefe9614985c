// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

/*
Package config provides centralized configuration management for Songsim.

# Configuration Sources

Configuration is layered with koanf, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig, loaded through the structs provider)
 2. An optional YAML file: CONFIG_PATH, or the first of config.yaml,
    config.yml, /etc/songsim/config.yaml, /etc/songsim/config.yml
 3. Environment variables with an explicit mapping table; unmapped
    variables are ignored

# Environment Variables

Corpus:
  - CORPUS_PATH, CORPUS_LOADER (csv|duckdb), SAMPLE_SIZE, CORPUS_SEED

Vectorizer:
  - MAX_VOCABULARY_SIZE, TOKENIZER_LANGUAGE, MIN_TERM_LENGTH

Recommendations:
  - TOP_K_DEFAULT, MAX_K
  - RECOMMEND_CACHE_ENABLED, RECOMMEND_CACHE_SIZE, RECOMMEND_CACHE_TTL

Snapshots and rebuilds:
  - SNAPSHOT_STORE (file|badger), SNAPSHOT_PATH, SNAPSHOT_LOAD_ON_STARTUP
  - REBUILD_ON_STARTUP, REBUILD_INTERVAL, REBUILD_TIMEOUT

HTTP server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
  - CORS_ORIGINS (comma separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW,
    DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT (json|console), LOG_CALLER, LOG_FILE

# Validation

Load returns an error wrapping an apperrors.ConfigurationError when any
value is out of range, so callers can test it with errors.Is against
apperrors.ErrConfiguration.
*/
package config
