// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

/*
Package supervisor provides the suture v4 process supervision tree.

# Tree Layout

	songsim (root)
	├── data-layer
	│   ├── rebuild-service
	│   └── cache-janitor
	└── api-layer
	    └── http-server

Each layer restarts its own services with exponential backoff. Supervisor
events are logged through sutureslog, bridged onto zerolog by
logging.NewSlogHandler.

# Usage

	tree, err := supervisor.NewSupervisorTree(slog.New(logging.NewSlogHandler()), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewRebuildService(svc, rebuildCfg, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(srv, addr, 10*time.Second, logging.Logger()))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

See the services subpackage for the suture.Service wrappers.
*/
package supervisor
