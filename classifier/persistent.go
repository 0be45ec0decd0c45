// SPDX-License-Identifier: GPL-3.0-or-later
package classifier

import (
	"fmt"

	"github.com/CrawX/go-hammie/domain"
	"github.com/CrawX/go-hammie/log"

	"github.com/sirupsen/logrus"
)

// PersistentClassifier combines a classifier state with the store it is
// loaded from and saved to. Nothing is saved implicitly, callers invoke Store.
//
// A PersistentClassifier is not safe for concurrent use and expects exclusive
// ownership of its backing store.
type PersistentClassifier struct {
	store   domain.StateStore
	engine  domain.Engine
	cutoffs domain.Cutoffs

	state *domain.State

	l *logrus.Logger
}

func NewPersistentClassifier(store domain.StateStore, engine domain.Engine, cutoffs domain.Cutoffs) *PersistentClassifier {
	return &PersistentClassifier{
		store:   store,
		engine:  engine,
		cutoffs: cutoffs,
		l:       log.Logger(log.LOG_CLASSIFIER),
	}
}

// Open creates a classifier and loads its state. The store is closed if
// loading fails.
func Open(store domain.StateStore, engine domain.Engine, cutoffs domain.Cutoffs) (*PersistentClassifier, error) {
	pc := NewPersistentClassifier(store, engine, cutoffs)
	if err := pc.Load(); err != nil {
		closeErr := store.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("%v, could not close store: %w", err, closeErr)
		}
		return nil, err
	}

	return pc, nil
}

// Load replaces the in-memory state with the stored one, discarding any
// unsaved training.
func (pc *PersistentClassifier) Load() error {
	state, err := pc.store.Load()
	if err != nil {
		return fmt.Errorf("could not load classifier state: %w", err)
	}

	pc.state = state
	pc.l.WithFields(logrus.Fields{"ham": state.NumHam, "spam": state.NumSpam}).Debug("Loaded classifier state")
	return nil
}

func (pc *PersistentClassifier) Store() error {
	if pc.state == nil {
		return domain.ErrNotLoaded
	}

	err := pc.store.Save(pc.state)
	if err != nil {
		return fmt.Errorf("could not store classifier state: %w", err)
	}

	pc.l.WithFields(logrus.Fields{"ham": pc.state.NumHam, "spam": pc.state.NumSpam}).Debug("Stored classifier state")
	return nil
}

func (pc *PersistentClassifier) Close() error {
	return pc.store.Close()
}

// Score returns the spam probability of msg and records it on the message.
func (pc *PersistentClassifier) Score(msg domain.Message) (float64, error) {
	if pc.state == nil {
		return 0, domain.ErrNotLoaded
	}

	tokens, err := msg.Tokenize()
	if err != nil {
		return 0, fmt.Errorf("could not tokenize %s: %w", msg.Key(), err)
	}

	score, err := pc.engine.Score(pc.state.TokenStats, pc.state.NumHam, pc.state.NumSpam, tokens)
	if err != nil {
		return 0, fmt.Errorf("could not score %s: %w", msg.Key(), err)
	}

	msg.SetScore(score)
	return score, nil
}

func (pc *PersistentClassifier) Classify(msg domain.Message) (domain.Classification, error) {
	score, err := pc.Score(msg)
	if err != nil {
		return "", err
	}

	class := pc.cutoffs.Classify(score)
	pc.l.WithFields(logrus.Fields{"message": msg.Key(), "score": score, "class": class}).Debug("Classified message")
	return class, nil
}

func (pc *PersistentClassifier) Train(msg domain.Message, isSpam bool) error {
	if pc.state == nil {
		return domain.ErrNotLoaded
	}

	tokens, err := msg.Tokenize()
	if err != nil {
		return fmt.Errorf("could not tokenize %s: %w", msg.Key(), err)
	}

	if err := pc.engine.Learn(pc.state.TokenStats, tokens, isSpam); err != nil {
		return fmt.Errorf("could not learn %s: %w", msg.Key(), err)
	}

	if isSpam {
		pc.state.NumSpam++
	} else {
		pc.state.NumHam++
	}

	pc.l.WithFields(logrus.Fields{"message": msg.Key(), "spam": isSpam}).Debug("Trained message")
	return nil
}

// Untrain reverses a previous Train of msg. An ErrTrainingInconsistency
// means the state no longer matches the corpus, the store has to be rebuilt
// by retraining from scratch.
func (pc *PersistentClassifier) Untrain(msg domain.Message, isSpam bool) error {
	if pc.state == nil {
		return domain.ErrNotLoaded
	}

	if (isSpam && pc.state.NumSpam == 0) || (!isSpam && pc.state.NumHam == 0) {
		return fmt.Errorf("%w: no %s messages trained, cannot untrain %s", domain.ErrTrainingInconsistency, className(isSpam), msg.Key())
	}

	tokens, err := msg.Tokenize()
	if err != nil {
		return fmt.Errorf("could not tokenize %s: %w", msg.Key(), err)
	}

	if err := pc.engine.Unlearn(pc.state.TokenStats, tokens, isSpam); err != nil {
		return fmt.Errorf("could not unlearn %s: %w", msg.Key(), err)
	}

	if isSpam {
		pc.state.NumSpam--
	} else {
		pc.state.NumHam--
	}

	pc.l.WithFields(logrus.Fields{"message": msg.Key(), "spam": isSpam}).Debug("Untrained message")
	return nil
}

func (pc *PersistentClassifier) NumHam() int {
	if pc.state == nil {
		return 0
	}
	return pc.state.NumHam
}

func (pc *PersistentClassifier) NumSpam() int {
	if pc.state == nil {
		return 0
	}
	return pc.state.NumSpam
}

// State exposes the loaded state, nil before Load.
func (pc *PersistentClassifier) State() *domain.State {
	return pc.state
}

func className(isSpam bool) string {
	if isSpam {
		return "spam"
	}
	return "ham"
}
