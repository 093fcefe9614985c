// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
)

// mockRebuilder counts Rebuild calls and returns queued errors in order.
type mockRebuilder struct {
	mu      sync.Mutex
	ready   bool
	errs    []error
	calls   atomic.Int32
	rebuilt chan struct{}
}

func newMockRebuilder(ready bool, errs ...error) *mockRebuilder {
	return &mockRebuilder{ready: ready, errs: errs, rebuilt: make(chan struct{}, 16)}
}

func (m *mockRebuilder) Rebuild(_ context.Context) (*snapshot.Snapshot, error) {
	n := int(m.calls.Add(1))
	defer func() { m.rebuilt <- struct{}{} }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= len(m.errs) && m.errs[n-1] != nil {
		return nil, m.errs[n-1]
	}
	m.ready = true
	return &snapshot.Snapshot{Generation: int64(n)}, nil
}

func (m *mockRebuilder) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// syncBuffer guards a bytes.Buffer shared with the logger.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitRebuild(t *testing.T, m *mockRebuilder) {
	t.Helper()
	select {
	case <-m.rebuilt:
	case <-time.After(2 * time.Second):
		t.Fatal("rebuild did not run")
	}
}

func TestRebuildService_StartupBuildWhenEmpty(t *testing.T) {
	t.Parallel()

	m := newMockRebuilder(false)
	svc := NewRebuildService(m, RebuildServiceConfig{OnStartup: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	waitRebuild(t, m)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if m.calls.Load() != 1 {
		t.Errorf("Rebuild calls = %d, want 1", m.calls.Load())
	}
}

func TestRebuildService_SkipsStartupWhenLoaded(t *testing.T) {
	t.Parallel()

	m := newMockRebuilder(true)
	svc := NewRebuildService(m, RebuildServiceConfig{OnStartup: true}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v", err)
	}
	if m.calls.Load() != 0 {
		t.Errorf("Rebuild calls = %d, want 0 when a snapshot is loaded", m.calls.Load())
	}
}

func TestRebuildService_PeriodicKeepsGoingAfterFailure(t *testing.T) {
	t.Parallel()

	m := newMockRebuilder(true, errors.New("corpus missing"), apperrors.ErrRebuildInProgress)
	logs := &syncBuffer{}
	logger := zerolog.New(logs)
	svc := NewRebuildService(m, RebuildServiceConfig{Interval: 10 * time.Millisecond}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	for i := 0; i < 3; i++ {
		waitRebuild(t, m)
	}
	cancel()
	<-done

	out := logs.String()
	if !strings.Contains(out, "rebuild failed, keeping current snapshot") {
		t.Errorf("failure not logged: %s", out)
	}
	if !strings.Contains(out, "another one is running") {
		t.Errorf("in-progress skip not logged: %s", out)
	}
	if !strings.Contains(out, `"generation":3`) {
		t.Errorf("successful rebuild not logged: %s", out)
	}
}

func TestRebuildService_String(t *testing.T) {
	t.Parallel()

	svc := NewRebuildService(newMockRebuilder(true), RebuildServiceConfig{}, zerolog.Nop())
	if svc.String() != "rebuild-service" {
		t.Errorf("String() = %q", svc.String())
	}
}
