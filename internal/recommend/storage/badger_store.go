// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/metrics"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
)

// Key layout:
//
//	snapshot/manifest                       JSON manifest
//	snapshot/artifact/{gen}/{name}/{chunk}  artifact bytes, split into chunks
const (
	manifestKey    = "snapshot/manifest"
	artifactPrefix = "snapshot/artifact/"

	// defaultChunkSize keeps values well below the value log file size.
	defaultChunkSize = 4 << 20
)

// BadgerStore persists snapshots in a BadgerDB. Artifacts are written in a
// write batch and the manifest in its own transaction afterwards, so readers
// see either the previous manifest or the complete new generation.
type BadgerStore struct {
	db        *badger.DB
	ownsDB    bool
	chunkSize int
	logger    zerolog.Logger
	mu        sync.Mutex
}

// NewBadgerStore opens a BadgerDB at path.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerStore(path string, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for snapshots: %w", err)
	}
	s := NewBadgerStoreFromDB(db, logger)
	s.ownsDB = true
	return s, nil
}

// NewBadgerStoreFromDB creates a store on an existing BadgerDB. Close does
// not close db.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerStoreFromDB(db *badger.DB, logger zerolog.Logger) *BadgerStore {
	return &BadgerStore{
		db:        db,
		chunkSize: defaultChunkSize,
		logger:    logger.With().Str("component", "badger_store").Logger(),
	}
}

// Name returns "badger".
func (s *BadgerStore) Name() string {
	return StoreBadger
}

// Save writes the snapshot and drops older generations.
func (s *BadgerStore) Save(ctx context.Context, snap *snapshot.Snapshot) (err error) {
	defer func() { metrics.RecordStoreOperation(StoreBadger, "save", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	enc, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, name := range artifactNames {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		data := enc.data[name]
		chunks := 0
		for off := 0; off < len(data) || chunks == 0; off += s.chunkSize {
			end := min(off+s.chunkSize, len(data))
			if err := wb.Set(chunkKey(snap.Generation, name, chunks), data[off:end]); err != nil {
				return fmt.Errorf("write %s chunk %d: %w", name, chunks, err)
			}
			chunks++
		}
		header := enc.manifest.Artifacts[name]
		header.Chunks = chunks
		enc.manifest.Artifacts[name] = header
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush artifacts: %w", err)
	}

	manifest, err := json.Marshal(enc.manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(manifestKey), manifest)
	}); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	if err := s.dropOtherGenerations(snap.Generation); err != nil {
		s.logger.Warn().Err(err).Msg("failed to drop old generations")
	}

	s.logger.Info().
		Int64("generation", snap.Generation).
		Int("similarity_chunks", enc.manifest.Artifacts[ArtifactSimilarity].Chunks).
		Msg("snapshot saved")
	return nil
}

// Load reads the manifest and its artifacts in one read transaction.
func (s *BadgerStore) Load(ctx context.Context) (snap *snapshot.Snapshot, err error) {
	defer func() { metrics.RecordStoreOperation(StoreBadger, "load", err) }()

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(manifestKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NewNotFoundError("snapshot", manifestKey)
		}
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}

		var m Manifest
		if err := json.Unmarshal(raw, &m); err != nil {
			return apperrors.NewIntegrityError("manifest", fmt.Sprintf("unreadable: %v", err))
		}

		snap, err = decodeSnapshot(&m, func(h ArtifactHeader) ([]byte, error) {
			return readChunks(ctx, txn, m.Generation, h)
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("generation", snap.Generation).
		Int("documents", snap.Len()).
		Msg("snapshot loaded")
	return snap, nil
}

// Close closes the database if this store opened it.
func (s *BadgerStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

func readChunks(ctx context.Context, txn *badger.Txn, generation int64, h ArtifactHeader) ([]byte, error) {
	if h.Chunks <= 0 {
		return nil, apperrors.NewIntegrityError(h.Name, "manifest lists no chunks")
	}
	var buf bytes.Buffer
	for c := 0; c < h.Chunks; c++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		item, err := txn.Get(chunkKey(generation, h.Name, c))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NewIntegrityError(h.Name, fmt.Sprintf("chunk %d of %d missing", c, h.Chunks))
		}
		if err != nil {
			return nil, fmt.Errorf("read %s chunk %d: %w", h.Name, c, err)
		}
		if err := item.Value(func(val []byte) error {
			buf.Write(val)
			return nil
		}); err != nil {
			return nil, fmt.Errorf("read %s chunk %d: %w", h.Name, c, err)
		}
	}
	return buf.Bytes(), nil
}

// dropOtherGenerations deletes artifact keys of every generation but keep.
func (s *BadgerStore) dropOtherGenerations(keep int64) error {
	keepPrefix := generationPrefix(keep)
	var stale [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(artifactPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if !bytes.HasPrefix(key, keepPrefix) {
				stale = append(stale, key)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func generationPrefix(generation int64) []byte {
	return []byte(fmt.Sprintf("%s%d/", artifactPrefix, generation))
}

func chunkKey(generation int64, name string, chunk int) []byte {
	return []byte(fmt.Sprintf("%s%d/%s/%06d", artifactPrefix, generation, name, chunk))
}
