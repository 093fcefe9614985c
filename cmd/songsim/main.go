// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

// Command songsim builds lyric-similarity snapshots and queries them from
// the command line.
//
//	songsim build --corpus spotify_millsongdata.csv --out ./snapshot
//	songsim recommend "Dancing Queen" -k 5 --snapshot ./snapshot
//	songsim titles --snapshot ./snapshot
package main

import "os"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
