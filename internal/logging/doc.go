// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

// Package logging provides centralized zerolog-based structured logging.
//
// JSON output is the default; console output is available for development.
// Components obtain a child logger and tag it with their name:
//
//	logger := logging.Logger().With().Str("component", "vectorizer").Logger()
//	logger.Info().Int("vocabulary", n).Msg("vocabulary built")
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Msg("Server starting")
//	logging.Ctx(ctx).Info().Str("title", title).Msg("recommendation served")
//
// # Build Log File
//
// Config.FileOutput duplicates every event to a second writer as JSON. The
// build command points it at its log file so a build leaves a record on
// disk as well as on stderr.
//
// # Suture Integration
//
// NewSlogLogger returns a *slog.Logger backed by zerolog for sutureslog.
//
// Always terminate log chains with .Msg() or .Send().
package logging
