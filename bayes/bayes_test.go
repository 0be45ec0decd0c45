// SPDX-License-Identifier: GPL-3.0-or-later
package bayes

import (
	"errors"
	"testing"

	"github.com/CrawX/go-hammie/domain"
	"github.com/CrawX/go-hammie/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	spamTokens = []string{"viagra", "cheap", "now", "cheap"}
	hamTokens  = []string{"meeting", "tomorrow", "now"}
)

func trained(t *testing.T) (*Engine, persistence.MemoryTokenStats) {
	engine := NewEngine(DefaultOptions())
	stats := persistence.NewMemoryTokenStats()
	require.NoError(t, engine.Learn(stats, spamTokens, true))
	require.NoError(t, engine.Learn(stats, hamTokens, false))
	return engine, stats
}

func TestEngine_Learn(t *testing.T) {
	_, stats := trained(t)

	assert.Equal(t, persistence.MemoryTokenStats{
		"viagra":   {SpamCount: 1},
		"cheap":    {SpamCount: 1},
		"now":      {SpamCount: 1, HamCount: 1},
		"meeting":  {HamCount: 1},
		"tomorrow": {HamCount: 1},
	}, stats, "duplicate tokens of one message count once")
}

func TestEngine_Score(t *testing.T) {
	engine, stats := trained(t)

	tests := []struct {
		name   string
		tokens []string
		check  func(t *testing.T, score float64)
	}{
		{"spammy", []string{"viagra", "cheap"}, func(t *testing.T, score float64) {
			assert.InDelta(t, 0.75, score, 1e-9)
		}},
		{"hammy", []string{"meeting", "tomorrow"}, func(t *testing.T, score float64) {
			assert.InDelta(t, 0.25, score, 1e-9)
		}},
		{"neutral", []string{"now"}, func(t *testing.T, score float64) {
			assert.Equal(t, 0.5, score)
		}},
		{"unknown", []string{"never", "seen"}, func(t *testing.T, score float64) {
			assert.Equal(t, 0.5, score)
		}},
		{"empty", nil, func(t *testing.T, score float64) {
			assert.Equal(t, 0.5, score)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, err := engine.Score(stats, 1, 1, tc.tokens)
			require.NoError(t, err)
			tc.check(t, score)
		})
	}
}

func TestEngine_MaxDiscriminators(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDiscriminators = 1
	engine := NewEngine(opts)
	stats := persistence.MemoryTokenStats{
		"strong": {SpamCount: 10},
		"weak":   {HamCount: 1, SpamCount: 3},
	}

	score, err := engine.Score(stats, 10, 10, []string{"weak", "strong"})
	require.NoError(t, err)
	only, err := engine.Score(stats, 10, 10, []string{"strong"})
	require.NoError(t, err)
	assert.Equal(t, only, score, "only the strongest clue should be used")
}

func TestEngine_UnlearnRestores(t *testing.T) {
	engine, stats := trained(t)

	require.NoError(t, engine.Unlearn(stats, spamTokens, true))
	require.NoError(t, engine.Unlearn(stats, hamTokens, false))
	assert.Empty(t, stats)
}

func TestEngine_UnlearnInconsistent(t *testing.T) {
	engine, stats := trained(t)

	err := engine.Unlearn(stats, []string{"viagra", "meeting"}, true)
	assert.True(t, errors.Is(err, domain.ErrTrainingInconsistency), "got %v", err)

	assert.Equal(t, domain.WordStat{SpamCount: 1}, stats["viagra"], "nothing is written when untraining fails")
}
