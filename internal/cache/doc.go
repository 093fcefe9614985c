// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

/*
Package cache provides a generic, thread-safe LRU cache with TTL support.

The recommendation service caches ranked responses keyed by snapshot
generation, title and k. Keys carry the generation, so publishing a new
snapshot never serves an older ranking; stale generations are dropped
with RemoveFunc or simply age out.

# Usage

	c := cache.NewLRU[string, int](1024, 10*time.Minute)
	c.Add("a", 1)
	if v, ok := c.Get("a"); ok {
	    _ = v
	}

Expired entries are removed lazily on Get. CleanupExpired can be called
periodically to reclaim memory held by entries that are never read
again.
*/
package cache
