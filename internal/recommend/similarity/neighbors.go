// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package similarity

import (
	"container/heap"
	"sort"
	"strconv"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/recommend/tfidf"
)

// Neighbor is a scored document.
type Neighbor struct {
	DocID int     `json:"doc_id"`
	Score float64 `json:"score"`
}

// better orders by descending score, then ascending id.
func better(a, b Neighbor) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.DocID < b.DocID
}

// neighborHeap keeps the worst retained candidate at the root.
type neighborHeap []Neighbor

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return better(h[j], h[i]) }
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *neighborHeap) Push(x any) {
	*h = append(*h, x.(Neighbor))
}

func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Neighbors returns up to k documents most similar to docID, excluding
// docID itself and any ids in exclude. Zero scores are eligible. A
// non-positive k yields an empty result.
func (m *Matrix) Neighbors(docID, k int, exclude ...int) ([]Neighbor, error) {
	if docID < 0 || docID >= m.n {
		return nil, apperrors.NewNotFoundError("document", strconv.Itoa(docID))
	}
	skip := make(map[int]struct{}, len(exclude)+1)
	skip[docID] = struct{}{}
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	return topK(m.n, k, skip, func(j int) float64 { return m.Score(docID, j) }), nil
}

// NeighborsOfVector ranks every document against an arbitrary unit or zero
// query vector. No document is excluded.
func NeighborsOfVector(query tfidf.Vector, rows []tfidf.Vector, k int) []Neighbor {
	return topK(len(rows), k, nil, func(j int) float64 {
		return float64(clamp(query.Dot(rows[j])))
	})
}

func topK(n, k int, skip map[int]struct{}, score func(int) float64) []Neighbor {
	if k <= 0 || n == 0 {
		return []Neighbor{}
	}

	h := make(neighborHeap, 0, min(k, n))
	for j := 0; j < n; j++ {
		if _, ok := skip[j]; ok {
			continue
		}
		cand := Neighbor{DocID: j, Score: score(j)}
		if h.Len() < k {
			heap.Push(&h, cand)
		} else if better(cand, h[0]) {
			h[0] = cand
			heap.Fix(&h, 0)
		}
	}

	out := []Neighbor(h)
	sort.Slice(out, func(a, b int) bool { return better(out[a], out[b]) })
	return out
}
