// SPDX-License-Identifier: GPL-3.0-or-later
package evaluation

import (
	"fmt"
	"sort"

	"github.com/CrawX/go-hammie/domain"
)

// Decision tells whether a message with a known class and the given score
// is trained.
type Decision func(score float64, isSpam bool) bool

const (
	DecisionAll             = "all"
	DecisionAllBut0And100   = "allbut0and100"
	DecisionUnsureOnly      = "unsureonly"
	DecisionUnsureAndFalses = "unsureandfalses"
)

var decisions = map[string]func(cutoffs domain.Cutoffs) Decision{
	DecisionAll: func(domain.Cutoffs) Decision {
		return func(float64, bool) bool {
			return true
		}
	},
	// everything except messages the classifier is already certain about
	DecisionAllBut0And100: func(domain.Cutoffs) Decision {
		return func(score float64, isSpam bool) bool {
			if isSpam {
				return score < 0.995
			}
			return score > 0.005
		}
	},
	DecisionUnsureOnly: func(cutoffs domain.Cutoffs) Decision {
		return func(score float64, _ bool) bool {
			return cutoffs.Ham < score && score < cutoffs.Spam
		}
	},
	// train on error: unsure messages and misclassifications
	DecisionUnsureAndFalses: func(cutoffs domain.Cutoffs) Decision {
		return func(score float64, isSpam bool) bool {
			if isSpam {
				return score < cutoffs.Spam
			}
			return score > cutoffs.Ham
		}
	},
}

func NewDecision(name string, cutoffs domain.Cutoffs) (Decision, error) {
	factory, ok := decisions[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown decision %q, expected one of %v", domain.ErrInvalidConfiguration, name, DecisionNames())
	}
	return factory(cutoffs), nil
}

func DecisionNames() []string {
	names := make([]string, 0, len(decisions))
	for name := range decisions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
