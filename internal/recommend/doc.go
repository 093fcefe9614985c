// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

// Package recommend implements the content-based song recommendation
// service on top of a TF-IDF lyric similarity snapshot.
//
// # Architecture
//
// The offline build pass runs once per snapshot generation:
//
//	corpus.Loader -> normalize -> tfidf -> similarity -> storage.Store -> snapshot.Holder
//
// Queries never touch the build pipeline. They read whatever snapshot is
// current when they start and keep using it even if a rebuild publishes a
// newer generation meanwhile.
//
// Sub-packages:
//
//   - normalize: lowercasing, non-letter stripping, stopword removal
//   - tfidf: vocabulary, smoothed IDF and unit-length document vectors
//   - similarity: packed pairwise cosine matrix and top-k neighbors
//   - snapshot: the immutable published unit plus its builder and holder
//   - storage: file and badger persistence with integrity checks
//
// # Usage
//
//	holder := snapshot.NewHolder()
//	svc, err := recommend.NewService(recommend.DefaultConfig(), holder, logger)
//	_ = svc.SetPipeline(&recommend.Pipeline{Loader: loader, Builder: builder, Store: store, Holder: holder})
//	if _, err := svc.Rebuild(ctx); err != nil { ... }
//
//	resp, err := svc.Recommend(ctx, recommend.Request{Title: "Dancing Queen", K: 5})
//	if apperrors.IsNotFound(err) {
//	    fmt.Println("Sorry, song not found.")
//	}
//
// # Determinism
//
// The same title and k against the same generation always produce the same
// ordered result. Scores tie-break by ascending document id. Responses are
// cached per (generation, operation, key, k).
//
// # Thread Safety
//
// Queries are lock-free reads of an immutable snapshot. Rebuilds are
// serialized with a TryLock, so a second concurrent rebuild is rejected
// with apperrors.ErrRebuildInProgress instead of queueing.
package recommend
