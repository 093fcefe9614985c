// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/logging"
	"github.com/tomtom215/songsim/internal/recommend"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
)

// notFoundMessage is printed when the title is not in the snapshot.
const notFoundMessage = "Sorry, song not found."

var (
	recommendK        int
	recommendSnapshot string
	recommendJSON     bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [title]",
	Short: "Recommend songs with lyrics similar to a title",
	Long: `Looks up the title (exact, case-sensitive match) in the snapshot and
prints the k songs whose lyrics are most similar, best first.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendK, "k", "k", 0, "number of recommendations, 0 uses the configured default")
	recommendCmd.Flags().StringVar(&recommendSnapshot, "snapshot", "", "snapshot directory")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(recommendCmd)
}

// openService loads the snapshot into a read-only service. The returned
// func closes the log file.
func openService(cmd *cobra.Command, snapshotFlag string) (*recommend.Service, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("snapshot") {
		cfg.Snapshot.Path = snapshotFlag
	}
	closeLog, err := initLogging(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	snap, err := loadSnapshot(commandContext(cmd), cfg)
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	svc, err := recommend.NewService(cfg.ServiceConfig(), snapshot.NewStatic(snap), logging.Logger())
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	return svc, closeLog, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runRecommend(cmd *cobra.Command, args []string) error {
	svc, closeLog, err := openService(cmd, recommendSnapshot)
	if err != nil {
		return err
	}
	defer closeLog()

	resp, err := svc.Recommend(commandContext(cmd), recommend.Request{Title: args[0], K: recommendK})
	if apperrors.IsNotFound(err) {
		fmt.Fprintln(cmd.OutOrStdout(), notFoundMessage)
		return nil
	}
	if err != nil {
		return fmt.Errorf("recommend failed: %w", err)
	}

	if recommendJSON {
		return outputRecommendJSON(cmd, resp)
	}
	outputRecommendTable(cmd, resp)
	return nil
}

func outputRecommendJSON(cmd *cobra.Command, resp *recommend.Response) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputRecommendTable(cmd *cobra.Command, resp *recommend.Response) {
	out := cmd.OutOrStdout()
	if len(resp.Items) == 0 {
		fmt.Fprintln(out, "No similar songs found.")
		return
	}

	if resp.Source != nil {
		fmt.Fprintf(out, "Songs like %q:\n", resp.Source.Title)
	}
	for i, item := range resp.Items {
		// Format: [N] Title - Artist (Score)
		if item.Artist != "" {
			fmt.Fprintf(out, "  [%d] %s - %s (%.4f)\n", i+1, item.Title, item.Artist, item.Score)
			continue
		}
		fmt.Fprintf(out, "  [%d] %s (%.4f)\n", i+1, item.Title, item.Score)
	}
}
