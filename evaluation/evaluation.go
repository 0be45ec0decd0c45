// SPDX-License-Identifier: GPL-3.0-or-later

// Package evaluation simulates a user who only corrects some of the
// classifier's decisions: every message is scored, its cost is recorded, and
// a Decision picks the messages that are trained afterwards.
package evaluation

import (
	"fmt"

	"github.com/CrawX/go-hammie/costcounter"
	"github.com/CrawX/go-hammie/domain"
	"github.com/CrawX/go-hammie/log"
	"github.com/CrawX/go-hammie/trainer"

	"github.com/sirupsen/logrus"
)

const DefaultProgressInterval = 100

// Classifier is what a Driver needs from a classifier.
type Classifier interface {
	domain.Trainable
	Score(msg domain.Message) (float64, error)
}

type Sample struct {
	Message domain.Message
	IsSpam  bool
}

type Options struct {
	Decision Decision
	// WarmUp messages are trained unconditionally and not counted.
	WarmUp int
	// ProgressInterval is the number of messages between progress logs,
	// 0 disables them.
	ProgressInterval int
}

type Result struct {
	Seen        int
	HamTrained  int
	SpamTrained int
}

type Driver struct {
	classifier Classifier
	spam, ham  *trainer.Trainer
	costs      costcounter.Counter
	opts       Options

	l *logrus.Logger
}

// NewDriver creates a driver reporting into costs. The counter is rendered
// with every progress log, so it must not be a delayed one.
func NewDriver(c Classifier, costs costcounter.Counter, opts Options) *Driver {
	return &Driver{
		classifier: c,
		spam:       trainer.NewSpamTrainer(c),
		ham:        trainer.NewHamTrainer(c),
		costs:      costs,
		opts:       opts,
		l:          log.Logger(log.LOG_EVALUATION),
	}
}

func (d *Driver) Run(samples []Sample) (Result, error) {
	result := Result{}

	for _, s := range samples {
		result.Seen++

		score, err := d.classifier.Score(s.Message)
		if err != nil {
			return result, fmt.Errorf("could not score message %d: %w", result.Seen, err)
		}

		warmingUp := result.Seen <= d.opts.WarmUp
		if !warmingUp {
			if s.IsSpam {
				d.costs.Spam(score)
			} else {
				d.costs.Ham(score)
			}
		}

		d.l.WithFields(logrus.Fields{"message": s.Message.Key(), "spam": s.IsSpam, "score": score}).Debug("Scored message")

		if warmingUp || d.opts.Decision(score, s.IsSpam) {
			if s.IsSpam {
				err = d.spam.Train(s.Message)
			} else {
				err = d.ham.Train(s.Message)
			}
			if err != nil {
				return result, err
			}

			if s.IsSpam {
				result.SpamTrained++
			} else {
				result.HamTrained++
			}
		}

		if d.opts.ProgressInterval > 0 && result.Seen%d.opts.ProgressInterval == 0 {
			d.progress(result)
		}
	}

	d.progress(result)
	return result, nil
}

func (d *Driver) progress(r Result) {
	fields := logrus.Fields{"seen": r.Seen, "hamtrained": r.HamTrained, "spamtrained": r.SpamTrained}
	if v, ok := d.classifier.(interface{ State() *domain.State }); ok && v.State() != nil {
		words, err := v.State().TokenStats.Len()
		if err == nil {
			fields["words"] = words
		}
	}

	d.l.WithFields(fields).Info("Progress")
	d.l.Info(d.costs.String())
}
