// SPDX-License-Identifier: GPL-3.0-or-later

// Package trainer keeps a classifier in line with the contents of a corpus by
// training messages as they are added and untraining them as they leave.
package trainer

import (
	"fmt"

	"github.com/CrawX/go-hammie/domain"
	"github.com/CrawX/go-hammie/log"

	"github.com/sirupsen/logrus"
)

type Trainer struct {
	classifier domain.Trainable
	isSpam     bool
	l          *logrus.Logger
}

func NewTrainer(classifier domain.Trainable, isSpam bool) *Trainer {
	return &Trainer{
		classifier: classifier,
		isSpam:     isSpam,
		l:          log.Logger(log.LOG_TRAINER),
	}
}

func NewSpamTrainer(classifier domain.Trainable) *Trainer {
	return NewTrainer(classifier, true)
}

func NewHamTrainer(classifier domain.Trainable) *Trainer {
	return NewTrainer(classifier, false)
}

func (t *Trainer) IsSpam() bool {
	return t.isSpam
}

func (t *Trainer) OnAddMessage(msg domain.Message) error {
	return t.Train(msg)
}

func (t *Trainer) OnRemoveMessage(msg domain.Message) error {
	return t.Untrain(msg)
}

func (t *Trainer) Train(msg domain.Message) error {
	err := t.classifier.Train(msg, t.isSpam)
	if err != nil {
		return fmt.Errorf("could not train %s: %w", msg.Key(), err)
	}
	return nil
}

func (t *Trainer) Untrain(msg domain.Message) error {
	err := t.classifier.Untrain(msg, t.isSpam)
	if err != nil {
		return fmt.Errorf("could not untrain %s: %w", msg.Key(), err)
	}
	return nil
}

// TrainAll trains msgs in order. Nothing is rolled back on failure: the
// messages before the failing one stay trained, reload the classifier to
// discard them.
func (t *Trainer) TrainAll(msgs []domain.Message) error {
	return t.all(msgs, t.classifier.Train, "trained")
}

// UntrainAll is the inverse of TrainAll, with the same failure semantics.
func (t *Trainer) UntrainAll(msgs []domain.Message) error {
	return t.all(msgs, t.classifier.Untrain, "untrained")
}

func (t *Trainer) all(msgs []domain.Message, apply func(domain.Message, bool) error, verb string) error {
	for i, msg := range msgs {
		err := apply(msg, t.isSpam)
		if err != nil {
			t.l.WithFields(logrus.Fields{"done": i, "total": len(msgs), "message": msg.Key()}).Error("Batch aborted")
			return fmt.Errorf("message %d of %d (%s) could not be %s: %w", i+1, len(msgs), msg.Key(), verb, err)
		}
	}

	t.l.WithFields(logrus.Fields{"count": len(msgs), "spam": t.isSpam}).Infof("Messages %s", verb)
	return nil
}
