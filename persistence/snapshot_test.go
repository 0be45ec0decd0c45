// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/CrawX/go-hammie/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *domain.State {
	return &domain.State{
		TokenStats: MemoryTokenStats{
			"subject:viagra": {SpamCount: 12, HamCount: 0},
			"hello":          {SpamCount: 3, HamCount: 7},
			"skip:c 30":      {SpamCount: 1, HamCount: 1},
		},
		NumHam:  7,
		NumSpam: 12,
	}
}

func TestSnapshotStore_LoadMissing(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "hammie.snap"))

	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, state.NumHam)
	assert.Equal(t, 0, state.NumSpam)
	n, err := state.TokenStats.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hammie.snap")
	store := NewSnapshotStore(path)

	require.NoError(t, store.Save(sampleState()))

	loaded, err := NewSnapshotStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, sampleState(), loaded)
}

func TestSnapshotStore_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hammie.snap")
	store := NewSnapshotStore(path)

	require.NoError(t, store.Save(sampleState()))
	require.NoError(t, store.Save(&domain.State{TokenStats: MemoryTokenStats{"a": {HamCount: 1}}, NumHam: 1}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, &domain.State{TokenStats: MemoryTokenStats{"a": {HamCount: 1}}, NumHam: 1}, loaded)

	matches, err := filepath.Glob(path + ".tmp-*")
	require.NoError(t, err)
	assert.Empty(t, matches, "no temporary files should be left behind")
}

type failingTokenStats struct {
	MemoryTokenStats
}

func (f failingTokenStats) Range(func(string, domain.WordStat) error) error {
	return errors.New("disk on fire")
}

func TestSnapshotStore_FailedSaveKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hammie.snap")
	store := NewSnapshotStore(path)
	require.NoError(t, store.Save(sampleState()))

	err := store.Save(&domain.State{TokenStats: failingTokenStats{NewMemoryTokenStats()}, NumHam: 99})
	assert.Error(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleState(), loaded)
}

func TestSnapshotStore_SaveIntoMissingDirectory(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "missing", "hammie.snap"))
	err := store.Save(sampleState())
	assert.Error(t, err)
}

func TestSnapshotStore_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		write func(t *testing.T, path string)
	}{
		{"version", func(t *testing.T, path string) {
			f, err := os.Create(path)
			require.NoError(t, err)
			defer f.Close()
			require.NoError(t, encodeSnapshot(f, &snapshot{Version: SnapshotVersion + 1}))
		}},
		{"garbage", func(t *testing.T, path string) {
			require.NoError(t, os.WriteFile(path, []byte("definitely not msgpack"), 0600))
		}},
		{"negativecounts", func(t *testing.T, path string) {
			f, err := os.Create(path)
			require.NoError(t, err)
			defer f.Close()
			require.NoError(t, encodeSnapshot(f, &snapshot{Version: SnapshotVersion, NumHam: -1}))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "hammie.snap")
			tc.write(t, path)

			state, err := NewSnapshotStore(path).Load()
			assert.Nil(t, state)
			assert.True(t, errors.Is(err, domain.ErrFormat), "expected ErrFormat, got %v", err)
		})
	}
}

func TestSnapshotStore_LoadIOError(t *testing.T) {
	// a directory cannot be decoded as a snapshot, but it is not a format problem either
	dir := t.TempDir()
	state, err := NewSnapshotStore(dir).Load()
	assert.Nil(t, state)
	assert.Error(t, err)
}
