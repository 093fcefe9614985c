// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/metrics"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
)

const (
	manifestFile    = "manifest.json"
	artifactSuffix  = ".gob.gz"
	generationInfix = "_g"
)

// FileStore persists snapshots as gzip-compressed gob files plus a JSON
// manifest in one directory. Only the latest generation is kept.
type FileStore struct {
	baseDir string
	logger  zerolog.Logger
	mu      sync.RWMutex
}

// NewFileStore creates a store at the given directory.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFileStore(baseDir string, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for snapshot storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileStore{
		baseDir: baseDir,
		logger:  logger.With().Str("component", "file_store").Str("dir", baseDir).Logger(),
	}, nil
}

// Name returns "file".
func (s *FileStore) Name() string {
	return StoreFile
}

// Save writes every artifact, then the manifest, then removes artifacts of
// older generations. A crash before the manifest is renamed leaves the
// previous snapshot loadable.
func (s *FileStore) Save(ctx context.Context, snap *snapshot.Snapshot) (err error) {
	defer func() { metrics.RecordStoreOperation(StoreFile, "save", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	enc, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	for _, name := range artifactNames {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		if err := writeFileAtomic(s.artifactPath(name, snap.Generation), enc.data[name]); err != nil {
			return fmt.Errorf("write %s artifact: %w", name, err)
		}
	}

	manifest, err := json.MarshalIndent(enc.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.baseDir, manifestFile), manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	s.prune(snap.Generation)

	s.logger.Info().
		Int64("generation", snap.Generation).
		Int64("corpus_bytes", enc.manifest.Artifacts[ArtifactCorpus].SizeBytes).
		Int64("tfidf_bytes", enc.manifest.Artifacts[ArtifactTFIDF].SizeBytes).
		Int64("similarity_bytes", enc.manifest.Artifacts[ArtifactSimilarity].SizeBytes).
		Msg("snapshot saved")
	return nil
}

// Load reads the manifest and its artifacts. A missing manifest is a
// NotFoundError; anything else that does not line up is an IntegrityError.
func (s *FileStore) Load(ctx context.Context) (snap *snapshot.Snapshot, err error) {
	defer func() { metrics.RecordStoreOperation(StoreFile, "load", err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.baseDir, manifestFile)) //nolint:gosec // path is constructed from the configured directory
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.NewNotFoundError("snapshot", s.baseDir)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperrors.NewIntegrityError("manifest", fmt.Sprintf("unreadable: %v", err))
	}

	snap, err = decodeSnapshot(&m, func(h ArtifactHeader) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		b, err := os.ReadFile(s.artifactPath(h.Name, m.Generation))
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewIntegrityError(h.Name, "artifact file missing")
		}
		if err != nil {
			return nil, fmt.Errorf("read %s artifact: %w", h.Name, err)
		}
		return b, nil
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

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

// prune removes artifact files of every generation except keep.
func (s *FileStore) prune(keep int64) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to scan snapshot directory")
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, gen := parseArtifactFilename(entry.Name())
		if name == "" || gen == keep {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("failed to remove old artifact")
		}
	}
}

// artifactPath returns the file path for an artifact.
func (s *FileStore) artifactPath(name string, generation int64) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s%s%d%s", name, generationInfix, generation, artifactSuffix))
}

// parseArtifactFilename extracts the artifact name and generation from a
// filename like "tfidf_g3.gob.gz".
func parseArtifactFilename(filename string) (name string, generation int64) {
	base, ok := strings.CutSuffix(filename, artifactSuffix)
	if !ok {
		return "", 0
	}
	idx := strings.LastIndex(base, generationInfix)
	if idx <= 0 {
		return "", 0
	}
	gen, err := strconv.ParseInt(base[idx+len(generationInfix):], 10, 64)
	if err != nil {
		return "", 0
	}
	return base[:idx], gen
}

// writeFileAtomic writes data to a temporary file and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil { //nolint:gosec // 0640 is acceptable for snapshot files
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return err
	}
	return nil
}
