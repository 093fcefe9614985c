// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

/*
Package services provides suture.Service wrappers for songsim components.

Every wrapper implements suture.Service and fmt.Stringer:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTPServerService wraps *http.Server. ListenAndServe runs in a goroutine;
context cancellation triggers Shutdown bounded by a drain timeout.

RebuildService builds a snapshot on startup when none was loaded from the
store, then rebuilds on a fixed interval. Failures are logged and the loop
keeps going, so the current snapshot keeps serving and suture never enters
a restart loop over a bad corpus file.

CacheJanitorService periodically drops expired recommendation cache
entries.

# Return Values

Returning ctx.Err() after cancellation tells suture the stop was requested.
Any other error is treated as a crash and the service is restarted.
*/
package services
