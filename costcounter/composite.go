// SPDX-License-Identifier: GPL-3.0-or-later
package costcounter

import (
	"strings"

	"github.com/CrawX/go-hammie/domain"
)

// Composite forwards every observation to each of its members.
type Composite struct {
	members []Counter
}

func NewComposite(members ...Counter) *Composite {
	return &Composite{members: members}
}

func (c *Composite) Members() []Counter {
	return c.members
}

func (c *Composite) Spam(score float64) {
	for _, m := range c.members {
		m.Spam(score)
	}
}

func (c *Composite) Ham(score float64) {
	for _, m := range c.members {
		m.Ham(score)
	}
}

func (c *Composite) String() string {
	lines := make([]string, 0, len(c.members))
	for _, m := range c.members {
		lines = append(lines, m.String())
	}
	return strings.Join(lines, "\n")
}

// Delayed buffers scores and only feeds them into its members when rendered.
//
// Every call to String replays the complete buffer again, so the members
// accumulate the same scores once per render. Render once, or Reset between
// renders.
type Delayed struct {
	composite *Composite
	spam      []float64
	ham       []float64
}

func NewDelayed(members ...Counter) *Delayed {
	return &Delayed{composite: NewComposite(members...)}
}

func (d *Delayed) Members() []Counter {
	return d.composite.Members()
}

func (d *Delayed) Spam(score float64) {
	d.spam = append(d.spam, score)
}

func (d *Delayed) Ham(score float64) {
	d.ham = append(d.ham, score)
}

// Replay feeds the buffered spam scores and then the buffered ham scores into
// counter.
func (d *Delayed) Replay(counter Counter) {
	for _, score := range d.spam {
		counter.Spam(score)
	}
	for _, score := range d.ham {
		counter.Ham(score)
	}
}

// Reset drops the buffered scores.
func (d *Delayed) Reset() {
	d.spam = nil
	d.ham = nil
}

func (d *Delayed) String() string {
	d.Replay(d.composite)

	lines := strings.Split(d.composite.String(), "\n")
	for i := range lines {
		lines[i] = "Delayed-" + lines[i]
	}
	return strings.Join(lines, "\n")
}

// NoDelay reports the standard, flex and flex² costs side by side.
func NoDelay(cutoffs domain.Cutoffs, weights Weights) *Composite {
	return NewComposite(
		NewStandard(cutoffs, weights),
		NewFlex(cutoffs, weights),
		NewFlex2(cutoffs, weights),
	)
}

// Default is NoDelay plus a delayed copy of the same counters, to compare
// immediate and deferred evaluation.
func Default(cutoffs domain.Cutoffs, weights Weights) *Composite {
	return NewComposite(
		NewStandard(cutoffs, weights),
		NewFlex(cutoffs, weights),
		NewFlex2(cutoffs, weights),
		NewDelayed(
			NewStandard(cutoffs, weights),
			NewFlex(cutoffs, weights),
			NewFlex2(cutoffs, weights),
		),
	)
}
