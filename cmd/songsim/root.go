// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/songsim/internal/config"
	"github.com/tomtom215/songsim/internal/logging"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
	"github.com/tomtom215/songsim/internal/recommend/storage"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "songsim",
	Short: "Recommend songs with similar lyrics",
	Long: `Songsim ranks songs by the TF-IDF cosine similarity of their lyrics.
Build a snapshot from a lyrics corpus once, then query it as often as needed.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: config.yaml or /etc/songsim/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the layered configuration and applies --log-level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		if !logging.ValidLevel(logLevel) {
			return nil, fmt.Errorf("invalid --log-level %q", logLevel)
		}
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// initLogging points the global logger at stderr, plus the log file when
// one is configured. The returned func closes the file.
func initLogging(cmd *cobra.Command, cfg *config.Config) (func() error, error) {
	logCfg := cfg.LoggerConfig()
	logCfg.Version = version
	logCfg.Output = cmd.ErrOrStderr()

	closeLog := func() error { return nil }
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logCfg.FileOutput = f
		closeLog = f.Close
	}
	logging.Init(logCfg)
	return closeLog, nil
}

// loadSnapshot returns the snapshot persisted in the configured store.
func loadSnapshot(ctx context.Context, cfg *config.Config) (*snapshot.Snapshot, error) {
	store, err := storage.Open(cfg.Snapshot.Store, cfg.Snapshot.Path, logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	defer store.Close()

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot from %s: %w", cfg.Snapshot.Path, err)
	}
	return snap, nil
}
