// SPDX-License-Identifier: GPL-3.0-or-later
package imapcorpus

import (
	"errors"
	"fmt"

	"github.com/CrawX/go-hammie/domain"
	"github.com/CrawX/go-hammie/log"
	"github.com/CrawX/go-hammie/mail"

	"github.com/sirupsen/logrus"
)

const (
	ledgerSpam = "spam"
	ledgerHam  = "ham"
)

// Ledger remembers which IMAP messages were trained with which class, so
// folders can be trained repeatedly without counting a message twice.
//
// Changes are kept pending until Commit, which callers run after the
// classifier state was stored.
type Ledger struct {
	kv      domain.KeyValueStore
	pending map[string]bool

	l *logrus.Logger
}

type SyncResult struct {
	Trained   int
	Retrained int
	Skipped   int
}

func NewLedger(kv domain.KeyValueStore) *Ledger {
	return &Ledger{
		kv:      kv,
		pending: map[string]bool{},
		l:       log.Logger(log.LOG_IMAP),
	}
}

// Lookup returns whether key was trained and with which class.
func (l *Ledger) Lookup(key string) (trained bool, isSpam bool, err error) {
	if isSpam, ok := l.pending[key]; ok {
		return true, isSpam, nil
	}

	value, err := l.kv.Get(key)
	if errors.Is(err, domain.ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("could not look up %s: %w", key, err)
	}

	switch string(value) {
	case ledgerSpam:
		return true, true, nil
	case ledgerHam:
		return true, false, nil
	}
	return false, false, fmt.Errorf("%w: ledger entry %s holds %q", domain.ErrFormat, key, value)
}

// Sync trains msgs as isSpam unless the ledger already has them with that
// class. Messages trained with the other class before, because they were
// moved between folders, are untrained first.
func (l *Ledger) Sync(classifier domain.Trainable, msgs []*mail.Message, isSpam bool) (SyncResult, error) {
	result := SyncResult{}

	for _, msg := range msgs {
		trained, wasSpam, err := l.Lookup(msg.Key())
		if err != nil {
			return result, err
		}

		if trained && wasSpam == isSpam {
			result.Skipped++
			continue
		}

		l.l.WithFields(logrus.Fields{"subject": msg.Subject(), "spam": isSpam, "moved": trained}).Debug("Training message")

		if trained {
			err = classifier.Untrain(msg, wasSpam)
			if err != nil {
				return result, fmt.Errorf("could not untrain moved message %s: %w", msg.Key(), err)
			}
			result.Retrained++
		} else {
			result.Trained++
		}

		err = classifier.Train(msg, isSpam)
		if err != nil {
			return result, fmt.Errorf("could not train %s: %w", msg.Key(), err)
		}
		l.pending[msg.Key()] = isSpam
	}

	l.l.WithFields(logrus.Fields{"spam": isSpam, "trained": result.Trained, "retrained": result.Retrained, "skipped": result.Skipped}).Info("Synced messages")
	return result, nil
}

// Commit persists the pending entries.
func (l *Ledger) Commit() error {
	for key, isSpam := range l.pending {
		value := ledgerHam
		if isSpam {
			value = ledgerSpam
		}

		if err := l.kv.Set(key, []byte(value)); err != nil {
			return fmt.Errorf("could not record %s: %w", key, err)
		}
		delete(l.pending, key)
	}

	return l.kv.Sync()
}

func (l *Ledger) Close() error {
	return l.kv.Close()
}
