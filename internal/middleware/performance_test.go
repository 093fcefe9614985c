// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func TestNewPerformanceMonitor_Defaults(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(0, -1)
	if pm.maxSamples != DefaultMaxSamples || pm.slowThreshold != DefaultSlowThreshold {
		t.Errorf("monitor = %d/%v, want defaults", pm.maxSamples, pm.slowThreshold)
	}
}

func TestPerformanceMonitor_SlidingWindow(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(3, time.Second)
	for i := int64(1); i <= 5; i++ {
		pm.Record(RequestSample{Route: "/r", Method: http.MethodGet, DurationMS: i})
	}

	recent := pm.Recent(10)
	if len(recent) != 3 {
		t.Fatalf("Recent() len = %d, want 3", len(recent))
	}
	for i, want := range []int64{3, 4, 5} {
		if recent[i].DurationMS != want {
			t.Errorf("recent[%d] = %d, want %d", i, recent[i].DurationMS, want)
		}
	}
	if got := pm.Recent(0); got != nil {
		t.Errorf("Recent(0) = %v, want nil", got)
	}
}

func TestPerformanceMonitor_Stats(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(100, time.Second)
	for _, d := range []int64{40, 10, 30, 20} {
		pm.Record(RequestSample{Route: "/api/v1/recommendations", Method: http.MethodGet, DurationMS: d, StatusCode: http.StatusOK})
	}
	pm.Record(RequestSample{Route: "/api/v1/snapshot/rebuild", Method: http.MethodPost, DurationMS: 5, StatusCode: http.StatusInternalServerError})

	stats := pm.Stats()
	if len(stats) != 2 {
		t.Fatalf("Stats() len = %d, want 2", len(stats))
	}

	rec := stats[0]
	if rec.Endpoint != "GET /api/v1/recommendations" || rec.RequestCount != 4 {
		t.Errorf("stats[0] = %+v", rec)
	}
	if rec.AvgMS != 25 || rec.MinMS != 10 || rec.MaxMS != 40 || rec.P50MS != 20 || rec.P99MS != 30 {
		t.Errorf("stats[0] aggregates = %+v", rec)
	}
	if stats[1].ErrorCount != 1 {
		t.Errorf("stats[1].ErrorCount = %d, want 1", stats[1].ErrorCount)
	}
}

func TestPerformanceMonitor_Middleware(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(10, time.Hour)
	r := chi.NewRouter()
	r.Use(pm.Middleware)
	r.Get("/api/v1/songs/{id}/similar", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/songs/7/similar", nil))

	recent := pm.Recent(1)
	if len(recent) != 1 {
		t.Fatal("no sample recorded")
	}
	if recent[0].Route != "/api/v1/songs/{id}/similar" || recent[0].StatusCode != http.StatusTeapot {
		t.Errorf("sample = %+v", recent[0])
	}
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	sorted := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    float64
		want int64
	}{
		{0, 1}, {0.5, 5}, {0.95, 9}, {1, 10},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %d, want %d", tt.p, got, tt.want)
		}
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %d, want 0", got)
	}
}

func TestPerformanceMonitor_Concurrent(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(50, time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				pm.Record(RequestSample{Route: "/r", Method: http.MethodGet, DurationMS: int64(j)})
				_ = pm.Stats()
			}
		}()
	}
	wg.Wait()

	if got := len(pm.Recent(1000)); got != 50 {
		t.Errorf("window size = %d, want 50", got)
	}
}
