// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

/*
Package main is the entry point for the songsim recommendation server.

The server answers "songs with lyrics like this one" from an immutable
snapshot of a preprocessed corpus. Snapshots are produced offline by
`songsim build` or by the server's own rebuild loop.

# Application Architecture

	RootSupervisor ("songsim")
	├── DataSupervisor ("data-layer")
	│   ├── RebuildService (startup and periodic rebuilds)
	│   └── CacheJanitorService (expired cache entries)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (chi router)

Startup order:

 1. Configuration: koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog, optionally teeing JSON to LOG_FILE
 3. Snapshot store: file or badger, loaded when SNAPSHOT_LOAD_ON_STARTUP
 4. Recommendation service with its rebuild pipeline
 5. Supervisor tree, then signal handling

A snapshot that fails its integrity check is logged at error level and
not served; the server starts unready and the rebuild loop, when enabled,
replaces it.

# Example Usage

	export CORPUS_PATH=/data/songdata.csv
	export SNAPSHOT_PATH=/var/lib/songsim
	export REBUILD_ON_STARTUP=true
	./server

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
to ten seconds and services that miss the supervisor timeout are listed
before exit.
*/
package main
