package assembler

import (
	"context"
	"testing"
	"time"

	"github.com/codeready-toolchain/practice-scheduler/pkg/catalogue"
	"github.com/codeready-toolchain/practice-scheduler/pkg/clock"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/scheduler"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProblem(t *testing.T, s *memstore.Store, p *models.Problem) {
	t.Helper()
	require.NoError(t, s.Problems().Put(context.Background(), p))
}

func TestAssemble_FillsReviewThenNewThenFallback(t *testing.T) {
	s := memstore.New()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	// One due review problem.
	seedProblem(t, s, &models.Problem{
		ProblemID: "rev1", LeetCodeID: 1, Tags: []string{"Array"}, Difficulty: models.DifficultyEasy,
		ReviewSchedule: now.AddDate(0, 0, -1),
	})
	// Two never-attempted problems eligible as "new".
	seedProblem(t, s, &models.Problem{ProblemID: "new1", LeetCodeID: 2, Tags: []string{"Array"}, Difficulty: models.DifficultyEasy, ReviewSchedule: now})
	seedProblem(t, s, &models.Problem{ProblemID: "new2", LeetCodeID: 3, Tags: []string{"Array"}, Difficulty: models.DifficultyEasy, ReviewSchedule: now})

	cat := catalogue.New(s)
	sched := scheduler.New(s, clock.NewFrozen(now), nil)
	a := New(cat, sched, clock.NewFrozen(now), nil)

	settings := Settings{SessionLength: 3, ReviewRatio: 40, MinReviewRatio: 30, DifficultyCap: models.DifficultyHard, AllowedTags: []string{"Array"}}
	out, err := a.Assemble(context.Background(), settings, nil, scheduler.LearningState{TierTags: []string{"Array"}})

	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "rev1", out[0].Problem.ProblemID)
	assert.Equal(t, models.ReasonReview, out[0].Reason)
}

func TestAssemble_ExcludesInFlightProblems(t *testing.T) {
	s := memstore.New()
	now := time.Now()
	seedProblem(t, s, &models.Problem{ProblemID: "p1", LeetCodeID: 1, Tags: []string{"Array"}, Difficulty: models.DifficultyEasy})

	cat := catalogue.New(s)
	sched := scheduler.New(s, clock.NewFrozen(now), nil)
	a := New(cat, sched, clock.NewFrozen(now), nil)

	settings := Settings{SessionLength: 1, ReviewRatio: 40, MinReviewRatio: 30, DifficultyCap: models.DifficultyHard, AllowedTags: []string{"Array"}}
	out, err := a.Assemble(context.Background(), settings, map[int]struct{}{1: {}}, scheduler.LearningState{TierTags: []string{"Array"}})

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAssemble_TruncatesToSessionLength(t *testing.T) {
	s := memstore.New()
	now := time.Now()
	for i := 1; i <= 5; i++ {
		seedProblem(t, s, &models.Problem{ProblemID: string(rune('a' + i)), LeetCodeID: i, Tags: []string{"Array"}, Difficulty: models.DifficultyEasy})
	}

	cat := catalogue.New(s)
	sched := scheduler.New(s, clock.NewFrozen(now), nil)
	a := New(cat, sched, clock.NewFrozen(now), nil)

	settings := Settings{SessionLength: 2, ReviewRatio: 40, MinReviewRatio: 30, DifficultyCap: models.DifficultyHard, AllowedTags: []string{"Array"}}
	out, err := a.Assemble(context.Background(), settings, nil, scheduler.LearningState{TierTags: []string{"Array"}})

	require.NoError(t, err)
	assert.Len(t, out, 2)
}
