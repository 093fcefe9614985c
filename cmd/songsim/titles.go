// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var titlesSnapshot string

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "List the song titles in a snapshot",
	Long:  `Prints every distinct, non-empty title in the snapshot, sorted, one per line.`,
	Args:  cobra.NoArgs,
	RunE:  runTitles,
}

func init() {
	titlesCmd.Flags().StringVar(&titlesSnapshot, "snapshot", "", "snapshot directory")
	rootCmd.AddCommand(titlesCmd)
}

func runTitles(cmd *cobra.Command, _ []string) error {
	svc, closeLog, err := openService(cmd, titlesSnapshot)
	if err != nil {
		return err
	}
	defer closeLog()

	titles, err := svc.Titles(commandContext(cmd))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, title := range titles {
		fmt.Fprintln(out, title)
	}
	return nil
}
