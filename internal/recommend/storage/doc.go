// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

// Package storage persists built snapshots so a server can start without
// rebuilding.
//
// # Overview
//
// A snapshot is stored as three artifacts that share one generation:
//   - corpus: documents with titles, raw and cleaned text
//   - tfidf: vocabulary, IDF weights and sparse rows
//   - similarity: the packed upper triangle of the similarity matrix
//
// Each artifact is gob-encoded, checksummed with SHA-256 and compressed with
// gzip. A JSON manifest, written last, records the generation and the
// checksum of every artifact.
//
// # Stores
//
// FileStore keeps one directory:
//
//	manifest.json
//	corpus_g{generation}.gob.gz
//	tfidf_g{generation}.gob.gz
//	similarity_g{generation}.gob.gz
//
// BadgerStore keeps the same artifacts in a BadgerDB, split into chunks.
//
// # Integrity
//
// Load fails with an apperrors.IntegrityError when an artifact is missing,
// fails its checksum, carries a different generation than the manifest, or
// does not line up with the others by row count. Nothing partial is ever
// returned. A store with no manifest at all yields an
// apperrors.NotFoundError, which callers treat as "build one".
//
// # Usage Example
//
//	store, err := storage.Open("file", "/data/snapshot", logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if err := store.Save(ctx, snap); err != nil {
//	    return err
//	}
//
//	snap, err = store.Load(ctx)
//	switch {
//	case errors.Is(err, apperrors.ErrNotFound):
//	    // nothing saved yet
//	case errors.Is(err, apperrors.ErrSnapshotIntegrity):
//	    // refuse to serve
//	}
//
// # Thread Safety
//
// Both stores serialize writers; Save and Load may be called concurrently.
package storage
