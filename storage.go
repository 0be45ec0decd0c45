// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"fmt"

	"github.com/CrawX/go-hammie/bayes"
	"github.com/CrawX/go-hammie/classifier"
	"github.com/CrawX/go-hammie/config"
	"github.com/CrawX/go-hammie/domain"
	"github.com/CrawX/go-hammie/kvstore/badgerkv"
	"github.com/CrawX/go-hammie/kvstore/sqlitekv"
	"github.com/CrawX/go-hammie/persistence"
)

func openStateStore(backend, storageFile string) (domain.StateStore, error) {
	switch backend {
	case config.BackendSnapshot:
		return persistence.NewSnapshotStore(storageFile), nil
	case config.BackendBadger:
		kv, err := badgerkv.Open(storageFile)
		if err != nil {
			return nil, err
		}
		return persistence.NewIncrementalStore(kv), nil
	case config.BackendSqlite:
		kv, err := sqlitekv.Open(storageFile)
		if err != nil {
			return nil, err
		}
		return persistence.NewIncrementalStore(kv), nil
	}

	return nil, fmt.Errorf("%w: unknown backend %q", domain.ErrInvalidConfiguration, backend)
}

// openClassifier opens the configured store. Callers own the classifier and
// must Close it.
func openClassifier(conf *config.Config) (*classifier.PersistentClassifier, error) {
	store, err := openStateStore(conf.Backend, conf.StorageFile)
	if err != nil {
		return nil, fmt.Errorf("could not open %s store %s: %w", conf.Backend, conf.StorageFile, err)
	}

	return classifier.Open(store, bayes.NewEngine(bayes.DefaultOptions()), conf.Cutoffs())
}
