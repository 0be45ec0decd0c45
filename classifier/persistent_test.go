// SPDX-License-Identifier: GPL-3.0-or-later
package classifier

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CrawX/go-hammie/bayes"
	"github.com/CrawX/go-hammie/domain"
	"github.com/CrawX/go-hammie/domain/mocks"
	"github.com/CrawX/go-hammie/persistence"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMessage struct {
	key   string
	text  string
	score *float64
}

func msg(key, text string) *testMessage {
	return &testMessage{key: key, text: text}
}

func (m *testMessage) Key() string {
	return m.key
}

func (m *testMessage) Tokenize() ([]string, error) {
	return strings.Fields(m.text), nil
}

func (m *testMessage) SetScore(score float64) {
	m.score = &score
}

var testCutoffs = domain.Cutoffs{Ham: 0.4, Spam: 0.7}

func TestPersistentClassifier_ClassifyBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected domain.Classification
	}{
		{"atham", 0.4, domain.Unsure},
		{"belowham", 0.39, domain.Ham},
		{"between", 0.55, domain.Unsure},
		{"atspam", 0.7, domain.Unsure},
		{"abovespam", 0.71, domain.Spam},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			state := &domain.State{TokenStats: persistence.NewMemoryTokenStats(), NumHam: 3, NumSpam: 4}
			store := mocks.NewMockStateStore(ctrl)
			store.EXPECT().Load().Return(state, nil)
			engine := mocks.NewMockEngine(ctrl)
			engine.EXPECT().
				Score(gomock.Eq(state.TokenStats), gomock.Eq(3), gomock.Eq(4), gomock.Eq([]string{"a", "b"})).
				Return(tc.score, nil)

			pc, err := Open(store, engine, testCutoffs)
			require.NoError(t, err)

			m := msg("m", "a b")
			class, err := pc.Classify(m)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, class)
			require.NotNil(t, m.score, "score should be recorded on the message")
			assert.Equal(t, tc.score, *m.score)
		})
	}
}

func TestPersistentClassifier_TrainUntrainInverse(t *testing.T) {
	for _, isSpam := range []bool{true, false} {
		t.Run(className(isSpam), func(t *testing.T) {
			store := persistence.NewSnapshotStore(filepath.Join(t.TempDir(), "hammie.snap"))
			pc, err := Open(store, bayes.NewEngine(bayes.DefaultOptions()), testCutoffs)
			require.NoError(t, err)
			defer pc.Close()

			require.NoError(t, pc.Train(msg("base-spam", "cheap pills now"), true))
			require.NoError(t, pc.Train(msg("base-ham", "lunch meeting now"), false))
			before := copyStats(t, pc.State().TokenStats)
			numHam, numSpam := pc.NumHam(), pc.NumSpam()

			m := msg("m", "cheap lunch offer")
			require.NoError(t, pc.Train(m, isSpam))
			require.NoError(t, pc.Untrain(m, isSpam))

			assert.Equal(t, numHam, pc.NumHam())
			assert.Equal(t, numSpam, pc.NumSpam())
			assert.Equal(t, before, copyStats(t, pc.State().TokenStats))
		})
	}
}

func TestPersistentClassifier_UntrainWithoutTraining(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStateStore(ctrl)
	store.EXPECT().Load().Return(&domain.State{TokenStats: persistence.NewMemoryTokenStats(), NumSpam: 1}, nil)
	// the engine is never asked to unlearn
	engine := mocks.NewMockEngine(ctrl)

	pc, err := Open(store, engine, testCutoffs)
	require.NoError(t, err)

	err = pc.Untrain(msg("m", "a"), false)
	assert.True(t, errors.Is(err, domain.ErrTrainingInconsistency), "got %v", err)
	assert.Equal(t, 0, pc.NumHam())
}

func TestPersistentClassifier_UntrainEngineInconsistency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stats := persistence.NewMemoryTokenStats()
	store := mocks.NewMockStateStore(ctrl)
	store.EXPECT().Load().Return(&domain.State{TokenStats: stats, NumSpam: 2}, nil)
	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().Unlearn(gomock.Eq(stats), gomock.Eq([]string{"a"}), gomock.Eq(true)).
		Return(domain.ErrTrainingInconsistency)

	pc, err := Open(store, engine, testCutoffs)
	require.NoError(t, err)

	err = pc.Untrain(msg("m", "a"), true)
	assert.True(t, errors.Is(err, domain.ErrTrainingInconsistency))
	assert.Equal(t, 2, pc.NumSpam(), "counts are untouched when the engine fails")
}

func TestOpen_ClosesStoreOnLoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loadErr := errors.New("disk on fire")
	store := mocks.NewMockStateStore(ctrl)
	store.EXPECT().Load().Return(nil, loadErr)
	store.EXPECT().Close().Return(nil)

	pc, err := Open(store, mocks.NewMockEngine(ctrl), testCutoffs)
	assert.Nil(t, pc)
	assert.True(t, errors.Is(err, loadErr))
}

func TestPersistentClassifier_NotLoaded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pc := NewPersistentClassifier(mocks.NewMockStateStore(ctrl), mocks.NewMockEngine(ctrl), testCutoffs)

	_, err := pc.Classify(msg("m", "a"))
	assert.Equal(t, domain.ErrNotLoaded, err)
	assert.Equal(t, domain.ErrNotLoaded, pc.Train(msg("m", "a"), true))
	assert.Equal(t, domain.ErrNotLoaded, pc.Untrain(msg("m", "a"), true))
	assert.Equal(t, domain.ErrNotLoaded, pc.Store())
}

func TestPersistentClassifier_StoreAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hammie.snap")
	engine := bayes.NewEngine(bayes.DefaultOptions())

	pc, err := Open(persistence.NewSnapshotStore(path), engine, testCutoffs)
	require.NoError(t, err)
	require.NoError(t, pc.Train(msg("s", "cheap pills"), true))
	require.NoError(t, pc.Store())

	// unsaved training is discarded by Load
	require.NoError(t, pc.Train(msg("h", "lunch meeting"), false))
	require.NoError(t, pc.Load())
	assert.Equal(t, 0, pc.NumHam())
	assert.Equal(t, 1, pc.NumSpam())
	require.NoError(t, pc.Close())

	reopened, err := Open(persistence.NewSnapshotStore(path), engine, testCutoffs)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 1, reopened.NumSpam())
	assert.Equal(t, copyStats(t, pc.State().TokenStats), copyStats(t, reopened.State().TokenStats))
}

func copyStats(t *testing.T, stats domain.TokenStats) map[string]domain.WordStat {
	m := map[string]domain.WordStat{}
	require.NoError(t, stats.Range(func(token string, stat domain.WordStat) error {
		m[token] = stat
		return nil
	}))
	return m
}
