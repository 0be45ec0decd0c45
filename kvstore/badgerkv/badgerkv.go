// SPDX-License-Identifier: GPL-3.0-or-later
package badgerkv

import (
	"errors"
	"fmt"
	"os"

	"github.com/CrawX/go-hammie/domain"
	"github.com/CrawX/go-hammie/log"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// Store is a KeyValueStore on top of a BadgerDB directory.
type Store struct {
	db       *badger.DB
	inMemory bool
	l        *logrus.Logger
}

// badgerLogger routes badger's chatty internal logging into our store logger,
// demoting its informational output to debug.
type badgerLogger struct {
	l *logrus.Logger
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Errorf("badger: "+format, args...)
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warnf("badger: "+format, args...)
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debugf("badger: "+format, args...)
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Debugf("badger: "+format, args...)
}

func Open(path string) (*Store, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("path is required for a badger store")
	}
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, fmt.Errorf("could not create store directory %s: %w", path, err)
	}

	l := log.Logger(log.LOG_STORE)
	opts := badger.DefaultOptions(path).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{l})

	return open(opts, false, l, path)
}

// OpenInMemory opens a store that is discarded on Close.
func OpenInMemory() (*Store, error) {
	l := log.Logger(log.LOG_STORE)
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(&badgerLogger{l})

	return open(opts, true, l, ":memory:")
}

func open(opts badger.Options, inMemory bool, l *logrus.Logger, name string) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open badger store: %w", err)
	}

	l.WithField("path", name).Debug("Opened badger store")

	return &Store{
		db:       db,
		inMemory: inMemory,
		l:        l,
	}, nil
}

func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not read key %q: %w", key, err)
	}

	return value, nil
}

func (s *Store) Set(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("could not write key %q: %w", key, err)
	}

	return nil
}

// SetBatch writes all entries through a single badger write batch.
func (s *Store) SetBatch(entries map[string][]byte) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for key, value := range entries {
		if err := wb.Set([]byte(key), value); err != nil {
			return fmt.Errorf("could not batch key %q: %w", key, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("could not flush write batch: %w", err)
	}

	return nil
}

func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("could not delete key %q: %w", key, err)
	}

	return nil
}

func (s *Store) Sync() error {
	if s.inMemory {
		return nil
	}

	err := s.db.Sync()
	if err != nil {
		return fmt.Errorf("could not sync badger store: %w", err)
	}

	return nil
}

func (s *Store) Iterate(skip map[string]bool, fn func(key string, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.KeyCopy(nil))
			if skip[key] {
				continue
			}

			value, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("could not read value of %q: %w", key, err)
			}

			if err := fn(key, value); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *Store) Keys() ([]string, error) {
	keys := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not list keys: %w", err)
	}

	return keys, nil
}

func (s *Store) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("could not close badger store: %w", err)
	}
	s.l.Debug("Closed badger store")
	return nil
}
