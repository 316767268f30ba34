package scheduler

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

func putProblem(t *testing.T, s *memstore.Store, p *models.Problem) {
	t.Helper()
	require.NoError(t, s.Problems().Put(context.Background(), p))
}

func TestDailyReviewSchedule_TierGateExcludesOutOfScopeTags(t *testing.T) {
	s := memstore.New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	putProblem(t, s, &models.Problem{ProblemID: "p1", LeetCodeID: 1, Tags: []string{"Graph"}, ReviewSchedule: now.AddDate(0, 0, -1)})
	putProblem(t, s, &models.Problem{ProblemID: "p2", LeetCodeID: 2, Tags: []string{"Array"}, ReviewSchedule: now.AddDate(0, 0, -1)})

	sch := New(s, clock.NewFrozen(now), nil)
	out := sch.DailyReviewSchedule(context.Background(), 5, LearningState{TierTags: []string{"Array"}})

	require.Len(t, out, 1)
	assert.Equal(t, "p2", out[0].ProblemID)
}

func TestDailyReviewSchedule_TagMatchedPassPicksOnePerTag(t *testing.T) {
	s := memstore.New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	putProblem(t, s, &models.Problem{ProblemID: "p1", LeetCodeID: 1, Tags: []string{"Array"}, ReviewSchedule: now.AddDate(0, 0, -3)})
	putProblem(t, s, &models.Problem{ProblemID: "p2", LeetCodeID: 2, Tags: []string{"Array"}, ReviewSchedule: now.AddDate(0, 0, -1)})
	putProblem(t, s, &models.Problem{ProblemID: "p3", LeetCodeID: 3, Tags: []string{"Dynamic Programming"}, ReviewSchedule: now.AddDate(0, 0, -2)})

	sch := New(s, clock.NewFrozen(now), nil)
	out := sch.DailyReviewSchedule(context.Background(), 2, LearningState{
		TierTags:       []string{"Array", "Dynamic Programming"},
		UnmasteredTags: []string{"Dynamic Programming", "Array"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "p3", out[0].ProblemID)
	assert.Equal(t, "p1", out[1].ProblemID)
}

func TestDailyReviewSchedule_NotDueProblemsExcluded(t *testing.T) {
	s := memstore.New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -1)
	putProblem(t, s, &models.Problem{
		ProblemID: "p1", LeetCodeID: 1, Tags: []string{"Array"},
		ReviewSchedule: now.AddDate(0, 0, 10), BoxLevel: 5, LastAttemptDate: &last,
	})

	sch := New(s, clock.NewFrozen(now), nil)
	out := sch.DailyReviewSchedule(context.Background(), 5, LearningState{TierTags: []string{"Array"}})
	assert.Empty(t, out)
}

func TestDailyReviewSchedule_TieBreaksByClockPortNotWallClock(t *testing.T) {
	// Both problems share review_schedule and attempt_stats.total, forcing
	// the tie-break down to decayWeightedScore. Their last_attempt_date
	// values only make sense relative to the injected (frozen, far-future)
	// clock — if decayWeightedScore read the real wall clock instead, both
	// would look "attempted in the future," clamp to the same decay score,
	// and the outcome would depend on map iteration order instead of being
	// deterministic.
	store := memstore.New()
	now := time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)
	reviewSchedule := now.AddDate(0, 0, -100)
	fresher := now.AddDate(0, 0, -1)
	staler := now.AddDate(0, 0, -60)

	putProblem(t, store, &models.Problem{
		ProblemID: "fresher", LeetCodeID: 1, Tags: []string{"Array"},
		ReviewSchedule: reviewSchedule, LastAttemptDate: &fresher,
	})
	putProblem(t, store, &models.Problem{
		ProblemID: "staler", LeetCodeID: 2, Tags: []string{"Array"},
		ReviewSchedule: reviewSchedule, LastAttemptDate: &staler,
	})

	sch := New(store, clock.NewFrozen(now), nil)
	out := sch.DailyReviewSchedule(context.Background(), 2, LearningState{TierTags: []string{"Array"}})

	require.Len(t, out, 2)
	assert.Equal(t, "fresher", out[0].ProblemID)
	assert.Equal(t, "staler", out[1].ProblemID)
}

func TestDailyReviewSchedule_EmptyStoreReturnsEmpty(t *testing.T) {
	// An empty store (no problems) is the degenerate case of "nothing to
	// return"; the scheduler must never panic or return a partial slice.
	s := memstore.New()
	sch := New(s, clock.NewFrozen(time.Now()), nil)
	out := sch.DailyReviewSchedule(context.Background(), 5, LearningState{TierTags: []string{"Array"}})
	assert.Empty(t, out)
}
