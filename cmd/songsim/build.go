// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/config"
	"github.com/tomtom215/songsim/internal/corpus"
	"github.com/tomtom215/songsim/internal/logging"
	"github.com/tomtom215/songsim/internal/recommend"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
	"github.com/tomtom215/songsim/internal/recommend/storage"
)

var (
	buildCorpus string
	buildOut    string
	buildSample int
	buildStore  string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build and persist a similarity snapshot",
	Long: `Loads the lyrics corpus, samples it, normalizes the lyrics, fits the
TF-IDF vectorizer, computes the pairwise cosine similarity matrix and
saves the result to the snapshot store. Each stage is logged with its
duration; set LOG_FILE to keep a build log next to stderr.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildCorpus, "corpus", "", "corpus file (csv or any file DuckDB can read)")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "snapshot directory")
	buildCmd.Flags().IntVar(&buildSample, "sample", 0, "number of songs to sample, 0 loads the whole corpus")
	buildCmd.Flags().StringVar(&buildStore, "store", "", "snapshot store: file or badger")
	rootCmd.AddCommand(buildCmd)
}

func applyBuildFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("corpus") {
		cfg.Corpus.Path = buildCorpus
	}
	if flags.Changed("out") {
		cfg.Snapshot.Path = buildOut
	}
	if flags.Changed("sample") {
		cfg.Corpus.SampleSize = buildSample
	}
	if flags.Changed("store") {
		cfg.Snapshot.Store = buildStore
	}
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyBuildFlags(cmd, cfg)
	if buildSample < 0 {
		return apperrors.NewConfigurationError("sample", "must not be negative")
	}

	closeLog, err := initLogging(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := commandContext(cmd)
	logger := logging.Logger()

	loader, err := corpus.New(cfg.CorpusLoaderConfig())
	if err != nil {
		return err
	}
	builder, err := snapshot.NewBuilder(cfg.BuilderConfig(), logger)
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.Snapshot.Store, cfg.Snapshot.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	holder := snapshot.NewHolder()
	svc, err := recommend.NewService(cfg.ServiceConfig(), holder, logger)
	if err != nil {
		return err
	}
	if err := svc.SetPipeline(&recommend.Pipeline{Loader: loader, Builder: builder, Store: store, Holder: holder}); err != nil {
		return err
	}

	// Continue the generation sequence of whatever is already stored.
	if prev, err := store.Load(ctx); err == nil {
		if err := svc.Publish(prev); errors.Is(err, apperrors.ErrConfiguration) {
			logger.Warn().Err(err).Msg("existing snapshot does not match the configuration, it will be replaced")
		} else if err != nil {
			return err
		}
	} else if !apperrors.IsNotFound(err) {
		logger.Warn().Err(err).Msg("existing snapshot unreadable, it will be replaced")
	}

	snap, err := svc.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	info := snap.Info()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Snapshot generation %d saved to %s (%s)\n", info.Generation, cfg.Snapshot.Path, store.Name())
	fmt.Fprintf(out, "  songs:      %d\n", info.Documents)
	fmt.Fprintf(out, "  titles:     %d\n", info.DistinctTitles)
	fmt.Fprintf(out, "  vocabulary: %d\n", info.VocabularySize)
	return nil
}
