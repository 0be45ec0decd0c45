// SPDX-License-Identifier: GPL-3.0-or-later

// Package bayes implements a token probability engine using Gary Robinson's
// probability estimate and geometric mean combining.
package bayes

import (
	"fmt"
	"math"
	"sort"

	"github.com/CrawX/go-hammie/domain"
)

type Options struct {
	// UnknownProb is the probability assigned to a token never seen before.
	UnknownProb float64
	// Strength (Robinson's s) weighs UnknownProb against the observed ratio.
	Strength float64
	// MinProbStrength drops clues closer than this to 0.5.
	MinProbStrength float64
	// MaxDiscriminators caps the number of clues used for a score.
	MaxDiscriminators int
}

func DefaultOptions() Options {
	return Options{
		UnknownProb:       0.5,
		Strength:          1.0,
		MinProbStrength:   0.1,
		MaxDiscriminators: 150,
	}
}

type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

type clue struct {
	token string
	prob  float64
}

func (e *Engine) Score(stats domain.TokenStats, numHam, numSpam int, tokens []string) (float64, error) {
	clues := []clue{}
	for _, token := range unique(tokens) {
		stat, ok, err := stats.Get(token)
		if err != nil {
			return 0, fmt.Errorf("could not read token %q: %w", token, err)
		}

		prob := e.opts.UnknownProb
		if ok {
			prob = e.probability(stat, numHam, numSpam)
		}

		if math.Abs(prob-0.5) >= e.opts.MinProbStrength {
			clues = append(clues, clue{token, prob})
		}
	}

	sort.SliceStable(clues, func(i, j int) bool {
		return math.Abs(clues[i].prob-0.5) > math.Abs(clues[j].prob-0.5)
	})
	if e.opts.MaxDiscriminators > 0 && len(clues) > e.opts.MaxDiscriminators {
		clues = clues[:e.opts.MaxDiscriminators]
	}

	if len(clues) == 0 {
		return 0.5, nil
	}

	// Work in logs, products over many clues underflow otherwise.
	var hamLog, spamLog float64
	for _, c := range clues {
		hamLog += math.Log(1 - c.prob)
		spamLog += math.Log(c.prob)
	}
	n := float64(len(clues))
	p := 1 - math.Exp(hamLog/n)
	q := 1 - math.Exp(spamLog/n)

	if p+q == 0 {
		return 0.5, nil
	}
	s := (p - q) / (p + q)
	return (1 + s) / 2, nil
}

// probability is Robinson's f(w) = (s*x + n*p(w)) / (s + n).
func (e *Engine) probability(stat domain.WordStat, numHam, numSpam int) float64 {
	hamRatio, spamRatio := 0.0, 0.0
	if numHam > 0 {
		hamRatio = math.Min(1, float64(stat.HamCount)/float64(numHam))
	}
	if numSpam > 0 {
		spamRatio = math.Min(1, float64(stat.SpamCount)/float64(numSpam))
	}

	if hamRatio+spamRatio == 0 {
		return e.opts.UnknownProb
	}
	prob := spamRatio / (hamRatio + spamRatio)

	n := float64(stat.HamCount + stat.SpamCount)
	s := e.opts.Strength
	prob = (s*e.opts.UnknownProb + n*prob) / (s + n)

	// Keep clear of 0 and 1, the logs above would diverge.
	return math.Min(math.Max(prob, 1e-6), 1-1e-6)
}

func (e *Engine) Learn(stats domain.TokenStats, tokens []string, isSpam bool) error {
	for _, token := range unique(tokens) {
		stat, _, err := stats.Get(token)
		if err != nil {
			return fmt.Errorf("could not read token %q: %w", token, err)
		}

		if isSpam {
			stat.SpamCount++
		} else {
			stat.HamCount++
		}

		if err := stats.Set(token, stat); err != nil {
			return fmt.Errorf("could not write token %q: %w", token, err)
		}
	}

	return nil
}

// Unlearn reverses Learn. All tokens are checked before anything is written,
// so an inconsistent untrain leaves the statistics unchanged.
func (e *Engine) Unlearn(stats domain.TokenStats, tokens []string, isSpam bool) error {
	tokens = unique(tokens)
	updated := make([]domain.WordStat, len(tokens))

	for i, token := range tokens {
		stat, ok, err := stats.Get(token)
		if err != nil {
			return fmt.Errorf("could not read token %q: %w", token, err)
		}

		if isSpam {
			stat.SpamCount--
		} else {
			stat.HamCount--
		}

		if !ok || stat.SpamCount < 0 || stat.HamCount < 0 {
			return fmt.Errorf("%w: token %q was never trained as %s", domain.ErrTrainingInconsistency, token, label(isSpam))
		}
		updated[i] = stat
	}

	for i, token := range tokens {
		var err error
		if updated[i].SpamCount == 0 && updated[i].HamCount == 0 {
			err = stats.Delete(token)
		} else {
			err = stats.Set(token, updated[i])
		}
		if err != nil {
			return fmt.Errorf("could not write token %q: %w", token, err)
		}
	}

	return nil
}

func unique(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	result := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			result = append(result, t)
		}
	}
	return result
}

func label(isSpam bool) string {
	if isSpam {
		return "spam"
	}
	return "ham"
}
