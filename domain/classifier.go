// SPDX-License-Identifier: GPL-3.0-or-later

//go:generate mockgen -destination=mocks/classifier.go -package=mocks . Engine,Message,Trainable
package domain

import (
	"fmt"
	"math"
)

type Classification string

const (
	Ham    = Classification("ham")
	Spam   = Classification("spam")
	Unsure = Classification("unsure")
)

// WordStat is the per token record kept by the scoring engine. The
// persistence layer stores it without interpreting the counts.
type WordStat struct {
	SpamCount int `msgpack:"s"`
	HamCount  int `msgpack:"h"`
}

// Message is a classifiable unit of a corpus.
type Message interface {
	Key() string
	Tokenize() ([]string, error)
	SetScore(score float64)
}

// Engine is the token probability algorithm. It reads and mutates token
// statistics but never the aggregate ham/spam counts, those are maintained by
// the classifier owning the state.
type Engine interface {
	Score(stats TokenStats, numHam, numSpam int, tokens []string) (float64, error)
	Learn(stats TokenStats, tokens []string, isSpam bool) error
	Unlearn(stats TokenStats, tokens []string, isSpam bool) error
}

// Trainable is what a corpus trainer drives.
type Trainable interface {
	Train(msg Message, isSpam bool) error
	Untrain(msg Message, isSpam bool) error
}

type Cutoffs struct {
	Ham  float64
	Spam float64
}

func (c Cutoffs) Validate() error {
	if math.IsNaN(c.Ham) || math.IsNaN(c.Spam) {
		return fmt.Errorf("%w: cutoffs must be numbers, got ham=%v spam=%v", ErrInvalidConfiguration, c.Ham, c.Spam)
	}
	if c.Ham < 0 || c.Spam > 1 {
		return fmt.Errorf("%w: cutoffs must lie within [0, 1], got ham=%v spam=%v", ErrInvalidConfiguration, c.Ham, c.Spam)
	}
	if c.Ham >= c.Spam {
		return fmt.Errorf("%w: ham cutoff %v must be below spam cutoff %v", ErrInvalidConfiguration, c.Ham, c.Spam)
	}

	return nil
}

// Classify maps a score onto the ham/unsure/spam bands. Both cutoffs belong
// to the unsure band.
func (c Cutoffs) Classify(score float64) Classification {
	if score < c.Ham {
		return Ham
	}
	if score > c.Spam {
		return Spam
	}
	return Unsure
}
