// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/songsim/internal/apperrors"
	"github.com/tomtom215/songsim/internal/config"
	"github.com/tomtom215/songsim/internal/logging"
	"github.com/tomtom215/songsim/internal/recommend"
	"github.com/tomtom215/songsim/internal/recommend/snapshot"
	"github.com/tomtom215/songsim/internal/supervisor"
)

const testCorpus = `artist,song,link,text
ABBA,A,/a,love rain
Queen,B,/b,love sun
Toto,C,/c,war
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "songs.csv")
	if err := os.WriteFile(corpusPath, []byte(testCorpus), 0o600); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	cfg := config.Default()
	cfg.Corpus.Path = corpusPath
	cfg.Corpus.SampleSize = 0
	cfg.Vectorizer.MinTermLength = 1
	cfg.Snapshot.Path = filepath.Join(dir, "snapshot")
	return cfg
}

// failingStore returns a fixed Load error.
type failingStore struct {
	err error
}

func (s failingStore) Save(context.Context, *snapshot.Snapshot) error { return nil }
func (s failingStore) Load(context.Context) (*snapshot.Snapshot, error) {
	return nil, s.err
}
func (s failingStore) Name() string { return "failing" }
func (s failingStore) Close() error { return nil }

func TestInitRecommend_RebuildThenRestore(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	first, err := initRecommend(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("initRecommend() error = %v", err)
	}
	if first.Loaded || first.Service.Ready() {
		t.Fatal("nothing was persisted yet, service should start unready")
	}
	if _, err := first.Service.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := initRecommend(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("initRecommend() error = %v", err)
	}
	defer second.Close()

	if !second.Loaded || !second.Service.Ready() {
		t.Fatal("persisted snapshot was not restored")
	}
	resp, err := second.Service.Recommend(ctx, recommend.Request{Title: "A", K: 2})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := strings.Join(resp.Titles(), ","); got != "B,C" {
		t.Errorf("Recommend titles = %s, want B,C", got)
	}
}

func TestInitRecommend_InvalidStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Snapshot.Store = "s3"

	if _, err := initRecommend(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("initRecommend() error = nil, want unknown store error")
	}
}

func TestRestoreSnapshot_Failures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantLog string
	}{
		{name: "nothing persisted", err: apperrors.NewNotFoundError("snapshot", "manifest"), wantLog: "no persisted snapshot found"},
		{name: "integrity", err: apperrors.NewIntegrityError("similarity", "checksum mismatch"), wantLog: "failed integrity check"},
		{name: "other", err: os.ErrPermission, wantLog: "failed to load persisted snapshot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holder := snapshot.NewHolder()
			svc, err := recommend.NewService(nil, holder, zerolog.Nop())
			if err != nil {
				t.Fatalf("NewService() error = %v", err)
			}

			var buf bytes.Buffer
			if restoreSnapshot(context.Background(), svc, failingStore{err: tt.err}, zerolog.New(&buf)) {
				t.Fatal("restoreSnapshot() = true, want false")
			}
			if svc.Ready() {
				t.Error("service should stay unready")
			}
			if !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log = %s, want %q", buf.String(), tt.wantLog)
			}
		})
	}
}

func TestAddRecommendServices_StartupRebuild(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rebuild.OnStartup = true
	components, err := initRecommend(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("initRecommend() error = %v", err)
	}
	defer components.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	addRecommendServices(tree, cfg, components, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	defer func() {
		cancel()
		<-errCh
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !components.Service.Ready() {
		if time.Now().After(deadline) {
			t.Fatal("startup rebuild did not publish a snapshot")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if gen := components.Service.Snapshot().Generation; gen != 1 {
		t.Errorf("generation = %d, want 1", gen)
	}
}
