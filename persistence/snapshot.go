// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/CrawX/go-hammie/domain"
	"github.com/CrawX/go-hammie/log"

	"github.com/sirupsen/logrus"
)

// SnapshotStore keeps the complete classifier state in one file which is
// rewritten on every save.
type SnapshotStore struct {
	path string
	l    *logrus.Logger
}

func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{
		path: path,
		l:    log.Logger(log.LOG_STORE),
	}
}

func (s *SnapshotStore) Load() (*domain.State, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.l.WithField("file", s.path).Debug("Snapshot does not exist, starting with an empty state")
		return &domain.State{TokenStats: NewMemoryTokenStats()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open snapshot: %w", err)
	}
	defer f.Close()

	snap, err := decodeSnapshot(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("could not load snapshot %s: %w", s.path, err)
	}

	stats := MemoryTokenStats(snap.TokenStats)
	if stats == nil {
		stats = NewMemoryTokenStats()
	}

	s.l.WithFields(logrus.Fields{"file": s.path, "ham": snap.NumHam, "spam": snap.NumSpam, "tokens": len(stats)}).Debug("Loaded snapshot")

	return &domain.State{
		TokenStats: stats,
		NumHam:     snap.NumHam,
		NumSpam:    snap.NumSpam,
	}, nil
}

// Save writes the state to a temporary file next to the snapshot and renames
// it over the snapshot, a failed save leaves the previous file untouched.
func (s *SnapshotStore) Save(state *domain.State) error {
	stats, err := collect(state.TokenStats)
	if err != nil {
		return fmt.Errorf("could not collect token stats: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("could not create temporary snapshot: %w", err)
	}
	tmpName := f.Name()

	err = writeSnapshot(f, &snapshot{
		Version:    SnapshotVersion,
		TokenStats: stats,
		NumHam:     state.NumHam,
		NumSpam:    state.NumSpam,
	})
	if err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not replace snapshot: %w", err)
	}

	s.l.WithFields(logrus.Fields{"file": s.path, "ham": state.NumHam, "spam": state.NumSpam, "tokens": len(stats)}).Debug("Saved snapshot")
	return nil
}

func writeSnapshot(f *os.File, snap *snapshot) error {
	w := bufio.NewWriter(f)
	if err := encodeSnapshot(w, snap); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("could not write snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("could not sync snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close snapshot: %w", err)
	}

	return nil
}

// Close is a no-op, the snapshot file is only open during Load and Save.
func (s *SnapshotStore) Close() error {
	return nil
}
