// Songsim - Lyric Similarity Song Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songsim

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/songsim/internal/recommend"
)

const testCorpus = `artist,song,link,text
ABBA,A,/a,love rain
Queen,B,/b,love sun
Toto,C,/c,war
,B,/b2,love sun again
`

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

// buildTestSnapshot writes the test corpus and builds a snapshot from it.
func buildTestSnapshot(t *testing.T, store string) string {
	t.Helper()
	t.Setenv("MIN_TERM_LENGTH", "1")

	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "songs.csv")
	require.NoError(t, os.WriteFile(corpusPath, []byte(testCorpus), 0o600))

	snapDir := filepath.Join(dir, "snapshot")
	out, err := execute(t, "build", "--corpus", corpusPath, "--out", snapDir, "--sample", "0", "--store", store, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshot generation 1")
	assert.Contains(t, out, "songs:      4")
	return snapDir
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"build", "recommend", "titles", "version"})
}

func TestRecommendCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "recommend")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestRecommendCmd_HasKFlag(t *testing.T) {
	flag := recommendCmd.Flags().Lookup("k")
	require.NotNil(t, flag, "k flag should exist")
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestBuildThenRecommend(t *testing.T) {
	snapDir := buildTestSnapshot(t, "file")

	out, err := execute(t, "recommend", "A", "-k", "2", "--snapshot", snapDir, "--log-level", "error")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `Songs like "A":`, lines[0])
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[1]), "[1] B - Queen"), lines[1])
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[2]), "[2] B ("), lines[2])
}

func TestRecommendCmd_JSON(t *testing.T) {
	snapDir := buildTestSnapshot(t, "badger")

	t.Setenv("SNAPSHOT_STORE", "badger")
	out, err := execute(t, "recommend", "C", "--json", "-k", "3", "--snapshot", snapDir, "--log-level", "error")
	require.NoError(t, err)

	var resp recommend.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Source)
	assert.Equal(t, "C", resp.Source.Title)
	assert.Len(t, resp.Items, 3)
	for i := 1; i < len(resp.Items); i++ {
		assert.GreaterOrEqual(t, resp.Items[i-1].Score, resp.Items[i].Score)
	}
}

func TestRecommendCmd_NotFound(t *testing.T) {
	snapDir := buildTestSnapshot(t, "file")

	out, err := execute(t, "recommend", "a", "--snapshot", snapDir, "--log-level", "error")
	require.NoError(t, err, "an unknown title is not a command failure")
	assert.Equal(t, notFoundMessage+"\n", out)
}

func TestRecommendCmd_MissingSnapshot(t *testing.T) {
	_, err := execute(t, "recommend", "A", "--snapshot", filepath.Join(t.TempDir(), "none"), "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load snapshot")
}

func TestTitlesCmd(t *testing.T) {
	snapDir := buildTestSnapshot(t, "file")

	out, err := execute(t, "titles", "--snapshot", snapDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "A\nB\nC\n", out)
}

func TestBuildCmd_GenerationsIncrease(t *testing.T) {
	snapDir := buildTestSnapshot(t, "file")
	corpusPath := filepath.Join(filepath.Dir(snapDir), "songs.csv")

	out, err := execute(t, "build", "--corpus", corpusPath, "--out", snapDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshot generation 2")
}

func TestBuildCmd_UnknownStore(t *testing.T) {
	_, err := execute(t, "build", "--store", "s3", "--out", t.TempDir(), "--log-level", "error")
	require.Error(t, err)
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	_, err := execute(t, "titles", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --log-level")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "songsim version dev\n", out)
}
