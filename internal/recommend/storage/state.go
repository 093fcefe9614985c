// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package storage

import (
	"fmt"
	"time"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/recommend/similarity"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
	"github.com/tomtom215/songsim/internal/recommend/tfidf"
)

// CorpusState is the serializable corpus artifact.
type CorpusState struct {
	Documents []snapshot.Document
}

// TFIDFState is the serializable TF-IDF artifact.
type TFIDFState struct {
	Terms         []string
	IDF           []float64
	MinTermLength int
	Rows          []tfidf.Vector
}

// SimilarityState is the serializable similarity artifact.
type SimilarityState struct {
	N      int
	Packed []float32
}

// encodedSnapshot holds the encoded artifacts of one snapshot.
type encodedSnapshot struct {
	manifest Manifest
	data     map[string][]byte
}

func encodeSnapshot(s *snapshot.Snapshot) (*encodedSnapshot, error) {
	if s == nil {
		return nil, fmt.Errorf("save nil snapshot")
	}
	states := map[string]any{
		ArtifactCorpus: CorpusState{Documents: s.Documents},
		ArtifactTFIDF: TFIDFState{
			Terms:         s.TFIDF.Vocabulary().Terms(),
			IDF:           s.TFIDF.IDF(),
			MinTermLength: s.TFIDF.MinTermLength(),
			Rows:          s.TFIDF.Rows(),
		},
		ArtifactSimilarity: SimilarityState{N: s.Similarity.Len(), Packed: s.Similarity.Packed()},
	}

	enc := &encodedSnapshot{
		manifest: Manifest{
			Generation:     s.Generation,
			BuildID:        s.BuildID,
			BuiltAt:        s.BuiltAt,
			SavedAt:        time.Now().UTC(),
			Language:       s.Language,
			Documents:      s.Len(),
			VocabularySize: s.TFIDF.Vocabulary().Len(),
			Artifacts:      make(map[string]ArtifactHeader, len(artifactNames)),
		},
		data: make(map[string][]byte, len(artifactNames)),
	}
	for _, name := range artifactNames {
		data, header, err := encodeArtifact(name, s.Generation, states[name])
		if err != nil {
			return nil, err
		}
		enc.manifest.Artifacts[name] = header
		enc.data[name] = data
	}
	return enc, nil
}

// artifactReader returns the stored bytes of one artifact.
type artifactReader func(header ArtifactHeader) ([]byte, error)

// decodeSnapshot reads and verifies every artifact named by m and
// reassembles the snapshot.
func decodeSnapshot(m *Manifest, read artifactReader) (*snapshot.Snapshot, error) {
	var (
		corpus CorpusState
		tf     TFIDFState
		sim    SimilarityState
	)
	targets := map[string]any{
		ArtifactCorpus:     &corpus,
		ArtifactTFIDF:      &tf,
		ArtifactSimilarity: &sim,
	}

	for _, name := range artifactNames {
		header, ok := m.Artifacts[name]
		if !ok {
			return nil, apperrors.NewIntegrityError(name, "not listed in manifest")
		}
		if header.Generation != m.Generation {
			return nil, apperrors.NewIntegrityError(name,
				fmt.Sprintf("manifest entry has generation %d, manifest has %d", header.Generation, m.Generation))
		}
		header.Name = name
		data, err := read(header)
		if err != nil {
			return nil, err
		}
		if err := decodeArtifact(data, header, targets[name]); err != nil {
			return nil, err
		}
	}

	if len(corpus.Documents) != m.Documents {
		return nil, apperrors.NewIntegrityError(ArtifactCorpus,
			fmt.Sprintf("%d documents, manifest has %d", len(corpus.Documents), m.Documents))
	}

	matrix, err := tfidf.Restore(tf.Terms, tf.IDF, tf.Rows, tf.MinTermLength)
	if err != nil {
		return nil, apperrors.NewIntegrityError(ArtifactTFIDF, err.Error())
	}
	simMatrix, err := similarity.FromPacked(sim.N, sim.Packed)
	if err != nil {
		return nil, apperrors.NewIntegrityError(ArtifactSimilarity, err.Error())
	}

	return snapshot.Assemble(m.Generation, m.BuildID, m.BuiltAt, m.Language, corpus.Documents, matrix, simMatrix)
}
