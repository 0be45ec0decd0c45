// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"errors"
	"fmt"

	"github.com/CrawX/go-hammie/domain"
	"github.com/CrawX/go-hammie/log"

	"github.com/sirupsen/logrus"
)

// StateKey is the reserved key holding the ham and spam message counts.
const StateKey = "saved state"

type batchSetter interface {
	SetBatch(entries map[string][]byte) error
}

// IncrementalStore keeps the classifier state in a KeyValueStore, one entry
// per token. Token statistics are written through as the engine mutates them,
// Save only persists the message counts.
type IncrementalStore struct {
	kv    domain.KeyValueStore
	stats *kvTokenStats
	l     *logrus.Logger
}

func NewIncrementalStore(kv domain.KeyValueStore) *IncrementalStore {
	return &IncrementalStore{
		kv:    kv,
		stats: &kvTokenStats{kv: kv},
		l:     log.Logger(log.LOG_STORE),
	}
}

func (s *IncrementalStore) Load() (*domain.State, error) {
	numHam, numSpam := 0, 0

	b, err := s.kv.Get(StateKey)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.l.Debug("No saved state in store, starting with an empty state")
	case err != nil:
		return nil, fmt.Errorf("could not read saved state: %w", err)
	default:
		numHam, numSpam, err = decodeCounts(b)
		if err != nil {
			return nil, fmt.Errorf("could not load saved state: %w", err)
		}
		s.l.WithFields(logrus.Fields{"ham": numHam, "spam": numSpam}).Debug("Loaded saved state")
	}

	return &domain.State{
		TokenStats: s.stats,
		NumHam:     numHam,
		NumSpam:    numSpam,
	}, nil
}

func (s *IncrementalStore) Save(state *domain.State) error {
	if live, ok := state.TokenStats.(*kvTokenStats); !ok || live != s.stats {
		if err := s.importTokenStats(state.TokenStats); err != nil {
			return err
		}
	}

	b, err := encodeCounts(state.NumHam, state.NumSpam)
	if err != nil {
		return err
	}

	if err := s.kv.Set(StateKey, b); err != nil {
		return fmt.Errorf("could not save state: %w", err)
	}

	if err := s.kv.Sync(); err != nil {
		return fmt.Errorf("could not sync store: %w", err)
	}

	s.l.WithFields(logrus.Fields{"ham": state.NumHam, "spam": state.NumSpam}).Debug("Saved state")
	return nil
}

// importTokenStats replaces the stored tokens with statistics that do not
// live in this store, for example a state loaded from a snapshot.
func (s *IncrementalStore) importTokenStats(stats domain.TokenStats) error {
	if stats == nil {
		return nil
	}

	entries := map[string][]byte{}
	err := stats.Range(func(token string, stat domain.WordStat) error {
		if token == StateKey {
			return fmt.Errorf("token %q collides with the reserved state key", token)
		}
		b, err := EncodeWordStat(stat)
		if err != nil {
			return err
		}
		entries[token] = b
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not collect token stats: %w", err)
	}

	stale, err := s.staleTokens(entries)
	if err != nil {
		return err
	}
	for _, token := range stale {
		if err := s.kv.Delete(token); err != nil {
			return fmt.Errorf("could not remove stale token %q: %w", token, err)
		}
	}

	if bs, ok := s.kv.(batchSetter); ok {
		err = bs.SetBatch(entries)
	} else {
		for token, b := range entries {
			if err = s.kv.Set(token, b); err != nil {
				break
			}
		}
	}
	if err != nil {
		return fmt.Errorf("could not import token stats: %w", err)
	}

	s.l.WithFields(logrus.Fields{"tokens": len(entries), "removed": len(stale)}).Debug("Imported token stats")
	return nil
}

// staleTokens lists the stored tokens missing from an imported state.
func (s *IncrementalStore) staleTokens(entries map[string][]byte) ([]string, error) {
	keys, err := s.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("could not list stored tokens: %w", err)
	}

	stale := []string{}
	for _, key := range keys {
		if key == StateKey {
			continue
		}
		if _, ok := entries[key]; !ok {
			stale = append(stale, key)
		}
	}
	return stale, nil
}

func (s *IncrementalStore) Close() error {
	return s.kv.Close()
}

// kvTokenStats is a live view on the token entries of a KeyValueStore.
type kvTokenStats struct {
	kv domain.KeyValueStore
}

var skipStateKey = map[string]bool{StateKey: true}

func (k *kvTokenStats) Get(token string) (domain.WordStat, bool, error) {
	if token == StateKey {
		return domain.WordStat{}, false, nil
	}

	b, err := k.kv.Get(token)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.WordStat{}, false, nil
	}
	if err != nil {
		return domain.WordStat{}, false, err
	}

	stat, err := DecodeWordStat(b)
	if err != nil {
		return domain.WordStat{}, false, fmt.Errorf("token %q: %w", token, err)
	}

	return stat, true, nil
}

func (k *kvTokenStats) Set(token string, stat domain.WordStat) error {
	if token == StateKey {
		return fmt.Errorf("token %q collides with the reserved state key", token)
	}

	b, err := EncodeWordStat(stat)
	if err != nil {
		return err
	}

	return k.kv.Set(token, b)
}

func (k *kvTokenStats) Delete(token string) error {
	if token == StateKey {
		return nil
	}
	return k.kv.Delete(token)
}

func (k *kvTokenStats) Range(fn func(token string, stat domain.WordStat) error) error {
	return k.kv.Iterate(skipStateKey, func(key string, value []byte) error {
		stat, err := DecodeWordStat(value)
		if err != nil {
			return fmt.Errorf("token %q: %w", key, err)
		}
		return fn(key, stat)
	})
}

func (k *kvTokenStats) Len() (int, error) {
	n := 0
	err := k.kv.Iterate(skipStateKey, func(string, []byte) error {
		n++
		return nil
	})
	return n, err
}
