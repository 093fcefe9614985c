// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/songsim/internal/apperrors"
)

// Artifact names. Every persisted snapshot has exactly these three.
const (
	ArtifactCorpus     = "corpus"
	ArtifactTFIDF      = "tfidf"
	ArtifactSimilarity = "similarity"
)

var artifactNames = []string{ArtifactCorpus, ArtifactTFIDF, ArtifactSimilarity}

// ArtifactHeader describes one stored artifact.
type ArtifactHeader struct {
	// Name is the artifact name (corpus, tfidf, similarity).
	Name string `json:"name"`

	// Generation is the snapshot generation the artifact belongs to.
	Generation int64 `json:"generation"`

	// Checksum is the SHA-256 checksum of the uncompressed gob data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed artifact size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// SavedAt is when the artifact was written.
	SavedAt time.Time `json:"saved_at"`

	// Chunks is the number of values the artifact is split into. Only
	// key-value stores set it.
	Chunks int `json:"chunks,omitempty"`
}

// Manifest is written last and names the artifacts of one generation.
type Manifest struct {
	Generation     int64                     `json:"generation"`
	BuildID        string                    `json:"build_id"`
	BuiltAt        time.Time                 `json:"built_at"`
	SavedAt        time.Time                 `json:"saved_at"`
	Language       string                    `json:"language,omitempty"`
	Documents      int                       `json:"documents"`
	VocabularySize int                       `json:"vocabulary_size"`
	Artifacts      map[string]ArtifactHeader `json:"artifacts"`
}

// artifactFile is the on-disk format of one artifact.
type artifactFile struct {
	Header         ArtifactHeader
	CompressedData []byte
}

// encodeArtifact serializes state and wraps it with its header.
func encodeArtifact(name string, generation int64, state any) ([]byte, ArtifactHeader, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(state); err != nil {
		return nil, ArtifactHeader{}, fmt.Errorf("encode %s: %w", name, err)
	}

	hash := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, ArtifactHeader{}, fmt.Errorf("compress %s: %w", name, err)
	}
	if err := gzw.Close(); err != nil {
		return nil, ArtifactHeader{}, fmt.Errorf("finalize compression: %w", err)
	}

	header := ArtifactHeader{
		Name:       name,
		Generation: generation,
		Checksum:   hex.EncodeToString(hash[:]),
		SizeBytes:  int64(compressed.Len()),
		SavedAt:    time.Now().UTC(),
	}

	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(artifactFile{Header: header, CompressedData: compressed.Bytes()}); err != nil {
		return nil, ArtifactHeader{}, fmt.Errorf("write %s: %w", name, err)
	}
	return out.Bytes(), header, nil
}

// decodeArtifact checks data against the manifest entry want and decodes it
// into target. Every failure is an IntegrityError.
func decodeArtifact(data []byte, want ArtifactHeader, target any) error {
	var af artifactFile
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&af); err != nil {
		return apperrors.NewIntegrityError(want.Name, fmt.Sprintf("unreadable artifact: %v", err))
	}
	if af.Header.Name != want.Name {
		return apperrors.NewIntegrityError(want.Name, fmt.Sprintf("artifact is named %q", af.Header.Name))
	}
	if af.Header.Generation != want.Generation {
		return apperrors.NewIntegrityError(want.Name,
			fmt.Sprintf("generation %d, manifest has %d", af.Header.Generation, want.Generation))
	}

	gzr, err := gzip.NewReader(bytes.NewReader(af.CompressedData))
	if err != nil {
		return apperrors.NewIntegrityError(want.Name, fmt.Sprintf("decompress: %v", err))
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return apperrors.NewIntegrityError(want.Name, fmt.Sprintf("read decompressed data: %v", err))
	}

	hash := sha256.Sum256(raw)
	checksum := hex.EncodeToString(hash[:])
	if checksum != af.Header.Checksum || checksum != want.Checksum {
		return apperrors.NewIntegrityError(want.Name,
			fmt.Sprintf("checksum mismatch: expected %s, got %s", want.Checksum, checksum))
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return apperrors.NewIntegrityError(want.Name, fmt.Sprintf("decode: %v", err))
	}
	return nil
}
