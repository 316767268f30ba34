package mastery

import (
	"context"
	"testing"
	"time"

	"github.com/codeready-toolchain/practice-scheduler/pkg/clock"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_ComputesMasteryAndSuccessRate(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	require.NoError(t, s.Problems().Put(ctx, &models.Problem{
		ProblemID: "p1", LeetCodeID: 1, Tags: []string{"Array"}, Difficulty: models.DifficultyEasy,
	}))

	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		success := i != 9 // 9 successes, 1 failure -> 0.9 success rate
		require.NoError(t, s.Attempts().Insert(ctx, &models.Attempt{
			AttemptID: uuidLike(i), ProblemID: "p1", AttemptDate: now.AddDate(0, 0, -i), Success: success,
		}))
	}

	e := New(s, clock.NewFrozen(now))
	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)

	m := snap["Array"]
	require.NotNil(t, m)
	assert.Equal(t, 10, m.TotalAttempts)
	assert.Equal(t, 9, m.SuccessfulAttempts)
	assert.InDelta(t, 0.9, m.SuccessRate, 1e-9)
	assert.True(t, m.Mastered)
}

func TestSnapshot_NotMasteredBelowThreshold(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Problems().Put(ctx, &models.Problem{ProblemID: "p1", LeetCodeID: 1, Tags: []string{"Array"}, Difficulty: models.DifficultyEasy}))
	require.NoError(t, s.Attempts().Insert(ctx, &models.Attempt{AttemptID: "a1", ProblemID: "p1", AttemptDate: time.Now(), Success: true}))

	e := New(s, clock.NewFrozen(time.Now()))
	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, snap["Array"].Mastered)
}

func TestDecayScore_DropsWithAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := DecayScore(now, now)
	old := DecayScore(now, now.AddDate(0, 0, -60))
	assert.Greater(t, fresh, old)
	assert.InDelta(t, 1.0, fresh, 1e-9)
}

func TestDeltas_NewTag(t *testing.T) {
	post := map[string]*models.TagMastery{
		"Array": {Tag: "Array", TotalAttempts: 3, DecayScore: 0.8},
	}
	deltas := Deltas(map[string]*models.TagMastery{}, post)
	require.Len(t, deltas, 1)
	assert.Equal(t, models.DeltaNew, deltas[0].Type)
	assert.Equal(t, 3, deltas[0].StrengthDelta)
}

func TestDeltas_DropsNoOpChanges(t *testing.T) {
	pre := map[string]*models.TagMastery{"Array": {Tag: "Array", TotalAttempts: 5, DecayScore: 0.5, Mastered: false}}
	post := map[string]*models.TagMastery{"Array": {Tag: "Array", TotalAttempts: 5, DecayScore: 0.5, Mastered: false}}
	assert.Empty(t, Deltas(pre, post))
}

func uuidLike(i int) string {
	return "attempt-" + string(rune('a'+i))
}
