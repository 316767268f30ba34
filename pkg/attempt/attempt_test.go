package attempt

import (
	"context"
	"testing"
	"time"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/clock"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProblem(t *testing.T, s *memstore.Store, p *models.Problem) {
	t.Helper()
	require.NoError(t, s.Problems().Put(context.Background(), p))
}

func TestAddAttempt_PromotesOnSuccess(t *testing.T) {
	s := memstore.New()
	seedProblem(t, s, &models.Problem{
		ProblemID: "p1", LeetCodeID: 1, Title: "Two Sum", Slug: "two-sum",
		Difficulty: models.DifficultyEasy, Tags: []string{"Array"}, BoxLevel: 1,
	})

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e := New(s, clock.NewFrozen(now), nil)

	res, err := e.AddAttempt(context.Background(), models.AddAttemptRequest{
		ProblemID: "p1", Success: true, TimeSpent: 120,
	})
	require.NoError(t, err)
	assert.True(t, res.Attempt.Success)

	p, err := s.Problems().Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.BoxLevel)
	assert.Equal(t, now.AddDate(0, 0, 1), p.ReviewSchedule)
	assert.Equal(t, models.AttemptStats{Total: 1, Successful: 1}, p.AttemptStats)
}

func TestAddAttempt_DemotesOnFailureFlooredAtOne(t *testing.T) {
	s := memstore.New()
	seedProblem(t, s, &models.Problem{
		ProblemID: "p1", LeetCodeID: 1, Title: "Two Sum", Slug: "two-sum",
		Difficulty: models.DifficultyEasy, Tags: []string{"Array"}, BoxLevel: 1,
		AttemptStats: models.AttemptStats{Total: 3, Successful: 2},
	})

	e := New(s, clock.NewFrozen(time.Now()), nil)
	_, err := e.AddAttempt(context.Background(), models.AddAttemptRequest{
		ProblemID: "p1", Success: false, TimeSpent: 60,
	})
	require.NoError(t, err)

	p, err := s.Problems().Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.BoxLevel)
	assert.Equal(t, models.AttemptStats{Total: 4, Successful: 2}, p.AttemptStats)
}

func TestAddAttempt_PromotionCapsAtSeven(t *testing.T) {
	s := memstore.New()
	seedProblem(t, s, &models.Problem{
		ProblemID: "p1", LeetCodeID: 1, Difficulty: models.DifficultyEasy,
		Tags: []string{"Array"}, BoxLevel: 7, AttemptStats: models.AttemptStats{Total: 10, Successful: 9},
	})

	e := New(s, clock.NewFrozen(time.Now()), nil)
	_, err := e.AddAttempt(context.Background(), models.AddAttemptRequest{ProblemID: "p1", Success: true})
	require.NoError(t, err)

	p, err := s.Problems().Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, p.BoxLevel)
}

func TestAddAttempt_ProblemNotFound(t *testing.T) {
	s := memstore.New()
	e := New(s, clock.NewFrozen(time.Now()), nil)

	_, err := e.AddAttempt(context.Background(), models.AddAttemptRequest{ProblemID: "missing", Success: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddAttempt_ResolvesByLeetCodeID(t *testing.T) {
	s := memstore.New()
	seedProblem(t, s, &models.Problem{ProblemID: "p1", LeetCodeID: 42, Difficulty: models.DifficultyEasy, Tags: []string{"Array"}, BoxLevel: 1})

	e := New(s, clock.NewFrozen(time.Now()), nil)
	res, err := e.AddAttempt(context.Background(), models.AddAttemptRequest{LeetCodeID: 42, Success: true})
	require.NoError(t, err)
	assert.Equal(t, "p1", res.Attempt.ProblemID)
}

func TestAddAttempt_NoPriorAttemptsTreatsBoxLevelAsOne(t *testing.T) {
	s := memstore.New()
	// box_level field defaults to 0 in storage (never attempted); the engine
	// must treat it as 1 for the promotion rule regardless of the stored value.
	seedProblem(t, s, &models.Problem{ProblemID: "p1", LeetCodeID: 1, Difficulty: models.DifficultyEasy, Tags: []string{"Array"}, BoxLevel: 0})

	e := New(s, clock.NewFrozen(time.Now()), nil)
	_, err := e.AddAttempt(context.Background(), models.AddAttemptRequest{ProblemID: "p1", Success: true})
	require.NoError(t, err)

	p, err := s.Problems().Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.BoxLevel)
}
