// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package snapshot

import (
	"fmt"
	"sync/atomic"

	"github.com/tomtom215/songsim/internal/apperrors"
)

// Source yields the snapshot queries should read. Current returns nil until
// one is available.
type Source interface {
	Current() *Snapshot
}

// Holder is a Source whose snapshot can be replaced wholesale.
// It is safe for concurrent use.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder creates an empty Holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the published snapshot or nil.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Generation returns the published generation, or 0 when empty.
func (h *Holder) Generation() int64 {
	if s := h.current.Load(); s != nil {
		return s.Generation
	}
	return 0
}

// NextGeneration returns the generation the next build should use.
func (h *Holder) NextGeneration() int64 {
	return h.Generation() + 1
}

// Publish replaces the current snapshot. Generations must increase.
func (h *Holder) Publish(s *Snapshot) error {
	if s == nil {
		return fmt.Errorf("publish nil snapshot")
	}
	for {
		old := h.current.Load()
		if old != nil && s.Generation <= old.Generation {
			return apperrors.NewIntegrityError("manifest",
				fmt.Sprintf("generation %d does not advance past %d", s.Generation, old.Generation))
		}
		if h.current.CompareAndSwap(old, s) {
			return nil
		}
	}
}

// Static is a Source that always returns the same snapshot.
type Static struct {
	snap *Snapshot
}

// NewStatic wraps s.
func NewStatic(s *Snapshot) Static {
	return Static{snap: s}
}

// Current returns the wrapped snapshot.
func (s Static) Current() *Snapshot {
	return s.snap
}
