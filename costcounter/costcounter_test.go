// SPDX-License-Identifier: GPL-3.0-or-later
package costcounter

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/CrawX/go-hammie/domain"

	"github.com/stretchr/testify/assert"
)

var (
	cutoffs = domain.Cutoffs{Ham: 0.4, Spam: 0.7}
	weights = Weights{FalseNegative: 1, FalsePositive: 1, UnsureHam: 0.25, UnsureSpam: 0.125}
)

type observation struct {
	score  float64
	isSpam bool
}

var observations = []observation{
	{0, false},
	{1, true},
	{0.5, false},
	{0.5, true},
	{0.2, true},
	{0.95, false},
	{0.69, false},
	{0.41, true},
	{0.7, true},
	{0.4, false},
}

func feed(c Counter, obs []observation) {
	for _, o := range obs {
		if o.isSpam {
			c.Spam(o.score)
		} else {
			c.Ham(o.score)
		}
	}
}

func TestStandard_Example(t *testing.T) {
	s := NewStandard(cutoffs, weights)
	s.Ham(0)
	s.Spam(1)
	assert.Equal(t, 0.0, s.Total())

	s.Ham(0.5)
	s.Spam(0.5)
	assert.Equal(t, weights.UnsureHam+weights.UnsureSpam, s.Total())
}

func TestStandard_Bands(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		isSpam   bool
		expected float64
	}{
		{"falsenegative", 0.39, true, weights.FalseNegative},
		{"spamathamcutoff", 0.4, true, weights.UnsureSpam},
		{"unsurespam", 0.6, true, weights.UnsureSpam},
		{"spamatspamcutoff", 0.7, true, 0},
		{"falsepositive", 0.71, false, weights.FalsePositive},
		{"hamatspamcutoff", 0.7, false, weights.UnsureHam},
		{"unsureham", 0.5, false, weights.UnsureHam},
		{"hamathamcutoff", 0.4, false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStandard(cutoffs, weights)
			feed(s, []observation{{tc.score, tc.isSpam}})
			assert.Equal(t, tc.expected, s.Total())
		})
	}
}

func TestLambda(t *testing.T) {
	assert.Equal(t, 0.0, Lambda(cutoffs, cutoffs.Ham))
	assert.Equal(t, 1.0, Lambda(cutoffs, cutoffs.Spam))
	assert.InDelta(t, 0.5, Lambda(cutoffs, (cutoffs.Ham+cutoffs.Spam)/2), 1e-12)
	assert.Equal(t, 0.0, Lambda(cutoffs, 0))
	assert.Equal(t, 1.0, Lambda(cutoffs, 1))
}

func TestFlex(t *testing.T) {
	w := Weights{FalseNegative: 2, FalsePositive: 8}
	f := NewFlex(cutoffs, w)
	f.Spam(0.55)
	assert.InDelta(t, 1.0, f.Total(), 1e-12)
	f.Ham(0.55)
	assert.InDelta(t, 5.0, f.Total(), 1e-12)
	// correct side of the cutoffs is free
	f.Spam(0.8)
	f.Ham(0.1)
	assert.InDelta(t, 5.0, f.Total(), 1e-12)
}

func TestFlex2(t *testing.T) {
	w := Weights{FalseNegative: 2, FalsePositive: 8}
	f := NewFlex2(cutoffs, w)
	f.Spam(0.55)
	assert.InDelta(t, 0.5, f.Total(), 1e-12)
	f.Ham(0.55)
	assert.InDelta(t, 2.5, f.Total(), 1e-12)
	f.Ham(1)
	assert.InDelta(t, 10.5, f.Total(), 1e-12)
}

func TestFlex2_NeverAboveFlex(t *testing.T) {
	flex := NewFlex(cutoffs, weights)
	flex2 := NewFlex2(cutoffs, weights)
	feed(flex, observations)
	feed(flex2, observations)
	assert.LessOrEqual(t, flex2.Total(), flex.Total())
}

func TestComposite_Render(t *testing.T) {
	c := NoDelay(cutoffs, weights)
	c.Ham(0.5)
	c.Spam(0.5)

	lines := strings.Split(c.String(), "\n")
	assert.Equal(t, []string{
		"Standard Cost: $0.3750",
		"Flex Cost: $1.0000",
		"Flex**2 Cost: $0.5556",
	}, lines)
}

func TestDelayed_MatchesImmediate(t *testing.T) {
	immediate := NoDelay(cutoffs, weights)
	delayed := NewDelayed(
		NewStandard(cutoffs, weights),
		NewFlex(cutoffs, weights),
		NewFlex2(cutoffs, weights),
	)

	feed(immediate, observations)
	feed(delayed, observations)

	// nothing reaches the members before rendering
	for _, m := range delayed.Members() {
		assert.Equal(t, 0.0, m.(interface{ Total() float64 }).Total())
	}

	rendered := delayed.String()
	for i, m := range immediate.Members() {
		expected := m.(interface{ Total() float64 }).Total()
		actual := delayed.Members()[i].(interface{ Total() float64 }).Total()
		assert.InDelta(t, expected, actual, 1e-12, "member %d", i)
	}

	immediateLines := strings.Split(immediate.String(), "\n")
	for i, line := range strings.Split(rendered, "\n") {
		assert.Equal(t, "Delayed-"+immediateLines[i], line)
	}
}

func TestDelayed_RepeatedRenderAccumulates(t *testing.T) {
	standard := NewStandard(cutoffs, weights)
	delayed := NewDelayed(standard)
	delayed.Ham(0.5)

	_ = delayed.String()
	assert.Equal(t, weights.UnsureHam, standard.Total())
	_ = delayed.String()
	assert.Equal(t, 2*weights.UnsureHam, standard.Total())

	delayed.Reset()
	_ = delayed.String()
	assert.Equal(t, 2*weights.UnsureHam, standard.Total())
}

func TestDelayed_ReplaySpamFirst(t *testing.T) {
	var calls []string
	rec := &recorder{calls: &calls}

	delayed := NewDelayed()
	delayed.Ham(0.1)
	delayed.Spam(0.9)
	delayed.Ham(0.2)
	delayed.Replay(rec)

	assert.Equal(t, []string{"spam 0.90", "ham 0.10", "ham 0.20"}, calls)
}

func TestDefault(t *testing.T) {
	c := Default(cutoffs, weights)
	feed(c, observations)

	lines := strings.Split(c.String(), "\n")
	assert.Len(t, lines, 6)
	for i := 0; i < 3; i++ {
		assert.Equal(t, "Delayed-"+lines[i], lines[i+3])
	}
}

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, weights.Validate())
	assert.NoError(t, Weights{}.Validate())

	err := Weights{FalsePositive: -1}.Validate()
	assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration))

	err = Weights{UnsureSpam: math.NaN()}.Validate()
	assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration))
}

type recorder struct {
	calls *[]string
}

func (r *recorder) Spam(score float64) {
	*r.calls = append(*r.calls, "spam "+format(score))
}

func (r *recorder) Ham(score float64) {
	*r.calls = append(*r.calls, "ham "+format(score))
}

func (r *recorder) String() string {
	return "recorder"
}

func format(score float64) string {
	return fmt.Sprintf("%.2f", score)
}
