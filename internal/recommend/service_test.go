// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package recommend

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
)

func newBuilder(t *testing.T) *snapshot.Builder {
	t.Helper()
	b, err := snapshot.NewBuilder(snapshot.BuilderConfig{Language: "english", MaxFeatures: 5000, MinTermLength: 2}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func buildSnapshot(t *testing.T, generation int64, pairs ...string) *snapshot.Snapshot {
	t.Helper()
	docs := make([]snapshot.Document, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		docs = append(docs, snapshot.Document{Title: pairs[i], Text: pairs[i+1]})
	}
	s, err := newBuilder(t).Build(context.Background(), generation, docs)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return s
}

func newService(t *testing.T, cfg *Config, src snapshot.Source) *Service {
	t.Helper()
	svc, err := NewService(cfg, src, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func abcService(t *testing.T) *Service {
	t.Helper()
	snap := buildSnapshot(t, 1, "A", "love rain", "B", "love sun", "C", "war")
	return newService(t, nil, snapshot.NewStatic(snap))
}

func TestNewService_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "zero default k", modify: func(c *Config) { c.Limits.DefaultK = 0 }},
		{name: "max below default", modify: func(c *Config) { c.Limits.MaxK = 2 }},
		{name: "unknown language", modify: func(c *Config) { c.Language = "klingon" }},
		{name: "empty cache", modify: func(c *Config) { c.Cache.Size = 0 }},
		{name: "zero ttl", modify: func(c *Config) { c.Cache.TTL = 0 }},
		{name: "zero rebuild timeout", modify: func(c *Config) { c.Rebuild.Timeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(cfg)
			_, err := NewService(cfg, snapshot.NewHolder(), zerolog.Nop())
			if !errors.Is(err, apperrors.ErrConfiguration) {
				t.Errorf("NewService() error = %v, want configuration error", err)
			}
		})
	}

	if _, err := NewService(nil, nil, zerolog.Nop()); err == nil {
		t.Error("NewService() with nil source should fail")
	}

	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Cache.Size = 0
	if _, err := NewService(cfg, snapshot.NewHolder(), zerolog.Nop()); err != nil {
		t.Errorf("disabled cache should not need a size: %v", err)
	}
}

func TestRecommend_Scenario(t *testing.T) {
	t.Parallel()

	svc := abcService(t)
	resp, err := svc.Recommend(context.Background(), Request{Title: "A", K: 2})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if got := resp.Titles(); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Fatalf("Titles() = %v, want [B C]", got)
	}
	if resp.Items[0].Score <= 0 {
		t.Errorf("B score = %v, want > 0", resp.Items[0].Score)
	}
	if resp.Items[1].Score != 0 {
		t.Errorf("C score = %v, want 0", resp.Items[1].Score)
	}
	if resp.Source == nil || resp.Source.ID != 0 || resp.Source.Title != "A" {
		t.Errorf("Source = %+v, want song A", resp.Source)
	}
	if resp.Metadata.Generation != 1 || resp.Metadata.K != 2 || resp.Metadata.RequestID == "" {
		t.Errorf("Metadata = %+v", resp.Metadata)
	}
}

func TestRecommend_SharedVocabularyScenario(t *testing.T) {
	t.Parallel()

	snap := buildSnapshot(t, 1, "A", "love love rain", "B", "love rain shine", "C", "war conflict")
	svc := newService(t, nil, snapshot.NewStatic(snap))

	first, err := svc.Recommend(context.Background(), Request{Title: "A", K: 2})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := first.Titles(); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Fatalf("Titles() = %v, want [B C]", got)
	}
	if first.Items[0].Score <= first.Items[1].Score {
		t.Errorf("B score %v should exceed C score %v", first.Items[0].Score, first.Items[1].Score)
	}

	again, err := svc.Recommend(context.Background(), Request{Title: "A", K: 2})
	if err != nil {
		t.Fatalf("second Recommend() error = %v", err)
	}
	if !reflect.DeepEqual(again.Items, first.Items) {
		t.Errorf("repeated Recommend() = %+v, want %+v", again.Items, first.Items)
	}
}

func TestRecommend_UnknownTitle(t *testing.T) {
	t.Parallel()

	svc := abcService(t)
	tests := []string{"Z", "a", " A", ""}

	for _, title := range tests {
		resp, err := svc.Recommend(context.Background(), Request{Title: title, K: 2})
		if resp != nil {
			t.Errorf("Recommend(%q) returned a response", title)
		}
		var nf *apperrors.NotFoundError
		if !errors.As(err, &nf) || !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Recommend(%q) error = %v, want NotFoundError", title, err)
		}
	}

	if m := svc.Metrics(); m.NotFoundCount != int64(len(tests)) {
		t.Errorf("NotFoundCount = %d, want %d", m.NotFoundCount, len(tests))
	}
}

func TestRecommend_DuplicateTitle(t *testing.T) {
	t.Parallel()

	snap := buildSnapshot(t, 1,
		"Same", "love rain",
		"Other", "love rain",
		"Same", "war peace",
	)
	svc := newService(t, nil, snapshot.NewStatic(snap))

	resp, err := svc.Recommend(context.Background(), Request{Title: "Same", K: 2})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Source.ID != 0 {
		t.Errorf("resolved to doc %d, want first occurrence 0", resp.Source.ID)
	}
	if resp.Items[0].ID != 1 || resp.Items[0].Score < 0.999 {
		t.Errorf("first item = %+v, want identical doc 1", resp.Items[0])
	}
	if resp.Items[1].ID != 2 || resp.Items[1].Title != "Same" {
		t.Errorf("second item = %+v, want the later duplicate", resp.Items[1])
	}
}

func TestRecommend_Idempotent(t *testing.T) {
	t.Parallel()

	for _, cacheEnabled := range []bool{true, false} {
		cfg := DefaultConfig()
		cfg.Cache.Enabled = cacheEnabled
		snap := buildSnapshot(t, 1,
			"A", "midnight train going anywhere",
			"B", "train night rain",
			"C", "small town girl",
			"D", "midnight rain town",
		)
		svc := newService(t, cfg, snapshot.NewStatic(snap))

		first, err := svc.Recommend(context.Background(), Request{Title: "A", K: 3})
		if err != nil {
			t.Fatal(err)
		}
		second, err := svc.Recommend(context.Background(), Request{Title: "A", K: 3})
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(first.Items, second.Items) {
			t.Errorf("cache=%v: results differ: %v vs %v", cacheEnabled, first.Items, second.Items)
		}
		if first.Metadata.CacheHit {
			t.Errorf("cache=%v: first call reported a cache hit", cacheEnabled)
		}
		if second.Metadata.CacheHit != cacheEnabled {
			t.Errorf("cache=%v: second CacheHit = %v", cacheEnabled, second.Metadata.CacheHit)
		}

		// Mutating a response must not leak into the cache.
		first.Items[0].Title = "mutated"
		third, _ := svc.Recommend(context.Background(), Request{Title: "A", K: 3})
		if third.Items[0].Title == "mutated" {
			t.Errorf("cache=%v: cached response shares items with caller", cacheEnabled)
		}
	}
}

func TestRecommend_K(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Limits.DefaultK = 2
	cfg.Limits.MaxK = 3
	snap := buildSnapshot(t, 1, "A", "aa", "B", "aa bb", "C", "bb", "D", "cc", "E", "dd")
	svc := newService(t, cfg, snapshot.NewStatic(snap))

	tests := []struct {
		name      string
		k         int
		wantK     int
		wantItems int
		wantErr   bool
	}{
		{name: "default", k: 0, wantK: 2, wantItems: 2},
		{name: "explicit", k: 1, wantK: 1, wantItems: 1},
		{name: "clamped", k: 50, wantK: 3, wantItems: 3},
		{name: "negative", k: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, err := svc.Recommend(context.Background(), Request{Title: "A", K: tt.k})
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrConfiguration) {
					t.Errorf("error = %v, want configuration error", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if resp.Metadata.K != tt.wantK || len(resp.Items) != tt.wantItems {
				t.Errorf("k = %d, items = %d; want %d, %d", resp.Metadata.K, len(resp.Items), tt.wantK, tt.wantItems)
			}
		})
	}
}

func TestService_Unavailable(t *testing.T) {
	t.Parallel()

	svc := newService(t, nil, snapshot.NewHolder())
	ctx := context.Background()

	if _, err := svc.Recommend(ctx, Request{Title: "A"}); !errors.Is(err, apperrors.ErrUnavailable) {
		t.Errorf("Recommend() error = %v, want ErrUnavailable", err)
	}
	if _, err := svc.Similar(ctx, 0, 1); !errors.Is(err, apperrors.ErrUnavailable) {
		t.Errorf("Similar() error = %v, want ErrUnavailable", err)
	}
	if _, err := svc.Query(ctx, "love", 1); !errors.Is(err, apperrors.ErrUnavailable) {
		t.Errorf("Query() error = %v, want ErrUnavailable", err)
	}
	if _, err := svc.Titles(ctx); !errors.Is(err, apperrors.ErrUnavailable) {
		t.Errorf("Titles() error = %v, want ErrUnavailable", err)
	}
	if svc.Ready() || svc.Status().Ready || svc.Status().Snapshot != nil {
		t.Error("service without snapshot reports ready")
	}
}

func TestService_Similar(t *testing.T) {
	t.Parallel()

	svc := abcService(t)
	resp, err := svc.Similar(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "A" {
		t.Errorf("Similar(1) = %v, want [A]", resp.Titles())
	}

	for _, id := range []int{-1, 3} {
		if _, err := svc.Similar(context.Background(), id, 1); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Similar(%d) error = %v, want not found", id, err)
		}
	}
}

func TestService_Query(t *testing.T) {
	t.Parallel()

	svc := abcService(t)
	resp, err := svc.Query(context.Background(), "The WAR!", 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "C" {
		t.Errorf("Query(war) = %v, want [C]", resp.Titles())
	}
	if resp.Source != nil {
		t.Error("free-text query should have no source song")
	}

	// Nothing is excluded, and unknown terms rank every song at zero.
	resp, err = svc.Query(context.Background(), "unicorn", 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Titles(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("Query(unicorn) = %v, want every song in id order", got)
	}

	if _, err := svc.Query(context.Background(), "   ", 1); !errors.Is(err, apperrors.ErrConfiguration) {
		t.Errorf("Query(blank) error = %v, want configuration error", err)
	}
}

func TestService_Titles(t *testing.T) {
	t.Parallel()

	snap := buildSnapshot(t, 1, "b", "love", "a", "rain", "b", "sun", "", "war")
	svc := newService(t, nil, snapshot.NewStatic(snap))

	got, err := svc.Titles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Titles() = %v, want [a b]", got)
	}
}

func TestService_NewGenerationBypassesCache(t *testing.T) {
	t.Parallel()

	holder := snapshot.NewHolder()
	svc := newService(t, nil, holder)
	ctx := context.Background()

	if err := holder.Publish(buildSnapshot(t, 1, "A", "love rain", "B", "love sun", "C", "war")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Recommend(ctx, Request{Title: "A", K: 1}); err != nil {
		t.Fatal(err)
	}

	if err := holder.Publish(buildSnapshot(t, 2, "A", "war rain", "B", "love sun", "C", "war")); err != nil {
		t.Fatal(err)
	}
	resp, err := svc.Recommend(ctx, Request{Title: "A", K: 1})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.CacheHit || resp.Metadata.Generation != 2 {
		t.Errorf("Metadata = %+v, want fresh generation 2 result", resp.Metadata)
	}
	if resp.Items[0].Title != "C" {
		t.Errorf("Recommend(A) on generation 2 = %v, want [C]", resp.Titles())
	}
}

func TestService_ConcurrentQueries(t *testing.T) {
	t.Parallel()

	svc := abcService(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				resp, err := svc.Recommend(context.Background(), Request{Title: "A", K: 2})
				if err != nil || resp.Items[0].Title != "B" {
					t.Errorf("concurrent Recommend() = %v, %v", resp, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if m := svc.Metrics(); m.RequestCount != 400 || m.CacheHits+m.CacheMisses != 400 {
		t.Errorf("Metrics() = %+v", m)
	}
}

func TestService_CleanupCache(t *testing.T) {
	t.Parallel()

	snap := buildSnapshot(t, 1, "A", "love rain", "B", "love sun", "C", "war")

	cfg := DefaultConfig()
	cfg.Cache.TTL = time.Millisecond
	svc := newService(t, cfg, snapshot.NewStatic(snap))

	if _, err := svc.Recommend(context.Background(), Request{Title: "A"}); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if removed := svc.CleanupCache(); removed != 1 {
		t.Errorf("CleanupCache() = %d, want 1", removed)
	}

	cfg = DefaultConfig()
	cfg.Cache.Enabled = false
	if removed := newService(t, cfg, snapshot.NewStatic(snap)).CleanupCache(); removed != 0 {
		t.Errorf("CleanupCache() without cache = %d, want 0", removed)
	}
}
