// SPDX-License-Identifier: GPL-3.0-or-later

// Package costcounter turns classifier scores of messages with a known label
// into a cost figure, given the classification cutoffs and what each kind of
// mistake is worth.
package costcounter

import (
	"fmt"
	"math"

	"github.com/CrawX/go-hammie/domain"
)

// Counter accumulates the cost of scored messages whose true label is known.
// String renders the accumulated cost.
type Counter interface {
	Spam(score float64)
	Ham(score float64)
	String() string
}

type Weights struct {
	FalseNegative float64
	FalsePositive float64
	UnsureHam     float64
	UnsureSpam    float64
}

func (w Weights) Validate() error {
	for _, v := range []float64{w.FalseNegative, w.FalsePositive, w.UnsureHam, w.UnsureSpam} {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: weights must be numbers, got %+v", domain.ErrInvalidConfiguration, w)
		}
	}
	if w.FalseNegative < 0 || w.FalsePositive < 0 || w.UnsureHam < 0 || w.UnsureSpam < 0 {
		return fmt.Errorf("%w: weights must not be negative, got %+v", domain.ErrInvalidConfiguration, w)
	}
	return nil
}

// total is shared by the single valued counters.
type total struct {
	name  string
	value float64
}

func (t *total) Total() float64 {
	return t.value
}

func (t *total) String() string {
	return fmt.Sprintf("%s: $%.4f", t.name, t.value)
}

// Standard charges the full weight of the band a score falls into.
type Standard struct {
	total
	cutoffs domain.Cutoffs
	weights Weights
}

func NewStandard(cutoffs domain.Cutoffs, weights Weights) *Standard {
	return &Standard{
		total:   total{name: "Standard Cost"},
		cutoffs: cutoffs,
		weights: weights,
	}
}

func (s *Standard) Spam(score float64) {
	if score < s.cutoffs.Ham {
		s.value += s.weights.FalseNegative
	} else if score < s.cutoffs.Spam {
		s.value += s.weights.UnsureSpam
	}
}

func (s *Standard) Ham(score float64) {
	if score > s.cutoffs.Spam {
		s.value += s.weights.FalsePositive
	} else if score > s.cutoffs.Ham {
		s.value += s.weights.UnsureHam
	}
}

// Lambda interpolates score linearly between the cutoffs: 0 at or below the
// ham cutoff, 1 at or above the spam cutoff.
func Lambda(cutoffs domain.Cutoffs, score float64) float64 {
	if score <= cutoffs.Ham {
		return 0
	}
	if score >= cutoffs.Spam {
		return 1
	}
	return (score - cutoffs.Ham) / (cutoffs.Spam - cutoffs.Ham)
}

// Flex charges a share of the error weight that grows linearly as a score
// moves through the unsure band towards the wrong side.
type Flex struct {
	total
	cutoffs domain.Cutoffs
	weights Weights
}

func NewFlex(cutoffs domain.Cutoffs, weights Weights) *Flex {
	return &Flex{
		total:   total{name: "Flex Cost"},
		cutoffs: cutoffs,
		weights: weights,
	}
}

func (f *Flex) Spam(score float64) {
	f.value += (1 - Lambda(f.cutoffs, score)) * f.weights.FalseNegative
}

func (f *Flex) Ham(score float64) {
	f.value += Lambda(f.cutoffs, score) * f.weights.FalsePositive
}

// Flex2 squares the Flex share, so scores near the correct side cost less
// and scores deep in the wrong territory weigh relatively more.
type Flex2 struct {
	total
	cutoffs domain.Cutoffs
	weights Weights
}

func NewFlex2(cutoffs domain.Cutoffs, weights Weights) *Flex2 {
	return &Flex2{
		total:   total{name: "Flex**2 Cost"},
		cutoffs: cutoffs,
		weights: weights,
	}
}

func (f *Flex2) Spam(score float64) {
	miss := 1 - Lambda(f.cutoffs, score)
	f.value += miss * miss * f.weights.FalseNegative
}

func (f *Flex2) Ham(score float64) {
	hit := Lambda(f.cutoffs, score)
	f.value += hit * hit * f.weights.FalsePositive
}
