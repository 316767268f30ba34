package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/assembler"
	"github.com/codeready-toolchain/practice-scheduler/pkg/catalogue"
	"github.com/codeready-toolchain/practice-scheduler/pkg/clock"
	"github.com/codeready-toolchain/practice-scheduler/pkg/mastery"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/scheduler"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, now time.Time) (*Manager, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	fc := clock.NewFrozen(now)
	cat := catalogue.New(s)
	sched := scheduler.New(s, fc, nil)
	asm := assembler.New(cat, sched, fc, nil)
	me := mastery.New(s, fc)
	return New(s, fc, asm, me, nil), s
}

func seedTagged(t *testing.T, s *memstore.Store, id string, leetCodeID int, tags ...string) {
	t.Helper()
	require.NoError(t, s.Problems().Put(context.Background(), &models.Problem{
		ProblemID: id, LeetCodeID: leetCodeID, Tags: tags, Difficulty: models.DifficultyEasy,
	}))
}

func TestGetOrCreateSession_CreatesWhenNoneExists(t *testing.T) {
	m, s := newManager(t, time.Now())
	seedTagged(t, s, "p1", 1, "Array")

	sess, err := m.GetOrCreateSession(context.Background(), models.SessionTypeStandard)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, models.StatusInProgress, sess.Status)
}

func TestGetOrCreateSession_ReturnsExistingCompatibleSession(t *testing.T) {
	m, s := newManager(t, time.Now())
	seedTagged(t, s, "p1", 1, "Array")

	first, err := m.GetOrCreateSession(context.Background(), models.SessionTypeStandard)
	require.NoError(t, err)

	second, err := m.GetOrCreateSession(context.Background(), models.SessionTypeTracking)
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestCreateNewSession_SealsPriorSameTypeSession(t *testing.T) {
	m, s := newManager(t, time.Now())
	seedTagged(t, s, "p1", 1, "Array")

	first, err := m.CreateNewSession(context.Background(), models.SessionTypeStandard)
	require.NoError(t, err)

	second, err := m.CreateNewSession(context.Background(), models.SessionTypeStandard)
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	sealed, err := s.Sessions().Get(context.Background(), first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, sealed.Status)
	assert.Nil(t, sealed.Accuracy, "createNewSession seals without recomputing accuracy")
}

func TestRefreshSession_ForceNewReturnsNilWithoutExisting(t *testing.T) {
	m, _ := newManager(t, time.Now())
	sess, err := m.RefreshSession(context.Background(), models.SessionTypeStandard, true)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestCheckAndCompleteSession_CompletesWhenAllAttempted(t *testing.T) {
	m, s := newManager(t, time.Now())
	seedTagged(t, s, "p1", 1, "Array")

	sess, err := m.CreateNewSession(context.Background(), models.SessionTypeStandard)
	require.NoError(t, err)
	require.Len(t, sess.Problems, 1)

	sid := sess.SessionID
	require.NoError(t, s.Attempts().Insert(context.Background(), &models.Attempt{
		AttemptID: "a1", ProblemID: "p1", SessionID: &sid, AttemptDate: time.Now(), Success: true,
	}))

	remaining, found, err := m.CheckAndCompleteSession(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, remaining)

	completed, err := s.Sessions().Get(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	require.NotNil(t, completed.Accuracy)
	assert.Equal(t, 1.0, *completed.Accuracy)
}

func TestCheckAndCompleteSession_IdempotentOnSecondCall(t *testing.T) {
	m, s := newManager(t, time.Now())
	seedTagged(t, s, "p1", 1, "Array")

	sess, err := m.CreateNewSession(context.Background(), models.SessionTypeStandard)
	require.NoError(t, err)

	sid := sess.SessionID
	require.NoError(t, s.Attempts().Insert(context.Background(), &models.Attempt{
		AttemptID: "a1", ProblemID: "p1", SessionID: &sid, AttemptDate: time.Now(), Success: true,
	}))

	_, _, err = m.CheckAndCompleteSession(context.Background(), sess.SessionID)
	require.NoError(t, err)

	remaining, found, err := m.CheckAndCompleteSession(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, remaining)
}

func TestCheckAndCompleteSession_MissingSessionReturnsNotFound(t *testing.T) {
	m, _ := newManager(t, time.Now())
	_, found, err := m.CheckAndCompleteSession(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreateNewSession_TierDefaultsToAllCatalogueTagsOnFirstRun(t *testing.T) {
	m, s := newManager(t, time.Now())
	seedTagged(t, s, "p1", 1, "Array")
	seedTagged(t, s, "p2", 2, "Graph")

	sess, err := m.CreateNewSession(context.Background(), models.SessionTypeStandard)
	require.NoError(t, err)
	assert.Len(t, sess.Problems, 2, "both tags should be in-tier since no SessionState existed yet")

	_, err = s.SessionState().Get(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "loadLearningContext must not persist the seeded default on a mere read")
}

func TestSkipProblem_RemovesAndReplaces(t *testing.T) {
	m, s := newManager(t, time.Now())
	seedTagged(t, s, "p1", 1, "Array")
	seedTagged(t, s, "p2", 2, "Array")

	sess, err := m.CreateNewSession(context.Background(), models.SessionTypeStandard)
	require.NoError(t, err)

	replacement, err := s.Problems().Get(context.Background(), "p2")
	require.NoError(t, err)

	updated, err := m.SkipProblem(context.Background(), sess.SessionID, 1, replacement)
	require.NoError(t, err)
	for _, p := range updated.Problems {
		assert.NotEqual(t, 1, p.LeetCodeID)
	}
}
