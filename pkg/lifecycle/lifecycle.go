// Package lifecycle implements the Session Lifecycle Manager (spec §4.H):
// the only mutator of Session and the sole authority on session identity and
// type. It creates, resumes, refreshes, skips-within, and completes
// sessions, enforcing type compatibility and per-type concurrency via keyed
// latches (a map[SessionType]*latchCall guarded by sync.Mutex, the same
// shape as a worker-pool's cancellation registry).
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/assembler"
	"github.com/codeready-toolchain/practice-scheduler/pkg/catalogue"
	"github.com/codeready-toolchain/practice-scheduler/pkg/clock"
	"github.com/codeready-toolchain/practice-scheduler/pkg/focus"
	"github.com/codeready-toolchain/practice-scheduler/pkg/mastery"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/scheduler"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store"
	"github.com/google/uuid"
)

// DefaultOperationTimeout is the default deadline for DB-bound paths
// (spec §5 Cancellation).
const DefaultOperationTimeout = 10 * time.Second

// CompletionPipelineTimeout is the deadline for the completion pipeline
// (spec §5 Cancellation).
const CompletionPipelineTimeout = 30 * time.Second

// keyedLatch serializes concurrent callers keyed by session type using a
// sync.Mutex-guarded map of in-flight calls, so concurrent callers attach
// to the same outcome instead of racing the store.
type keyedLatch struct {
	mu       sync.Mutex
	inFlight map[models.SessionType]*latchCall
}

type latchCall struct {
	done    chan struct{}
	session *models.Session
	err     error
}

func newKeyedLatch() *keyedLatch {
	return &keyedLatch{inFlight: make(map[models.SessionType]*latchCall)}
}

// do runs fn for key, or — if a call for key is already in flight — waits
// for that call's result instead of invoking fn again.
func (l *keyedLatch) do(ctx context.Context, key models.SessionType, fn func() (*models.Session, error)) (*models.Session, error) {
	l.mu.Lock()
	if call, ok := l.inFlight[key]; ok {
		l.mu.Unlock()
		select {
		case <-call.done:
			return call.session, call.err
		case <-ctx.Done():
			return nil, apperrors.ErrTimedOut
		}
	}

	call := &latchCall{done: make(chan struct{})}
	l.inFlight[key] = call
	l.mu.Unlock()

	call.session, call.err = fn()
	close(call.done)

	l.mu.Lock()
	delete(l.inFlight, key)
	l.mu.Unlock()

	return call.session, call.err
}

// dedupRegistry implements the completion path's "each save is keyed by
// (operation, entity_id); concurrent callers observe the same promise"
// rule (spec §4.H Failure semantics).
type dedupRegistry struct {
	mu       sync.Mutex
	inFlight map[string]*dedupCall
}

type dedupCall struct {
	done chan struct{}
	err  error
}

func newDedupRegistry() *dedupRegistry {
	return &dedupRegistry{inFlight: make(map[string]*dedupCall)}
}

func (r *dedupRegistry) do(operation, entityID string, fn func() error) error {
	key := operation + ":" + entityID
	r.mu.Lock()
	if call, ok := r.inFlight[key]; ok {
		r.mu.Unlock()
		<-call.done
		return call.err
	}
	call := &dedupCall{done: make(chan struct{})}
	r.inFlight[key] = call
	r.mu.Unlock()

	call.err = fn()
	close(call.done)

	r.mu.Lock()
	delete(r.inFlight, key)
	r.mu.Unlock()
	return call.err
}

// Manager is the Session Lifecycle Manager.
type Manager struct {
	store     store.Store
	clock     clock.Clock
	assembler *assembler.Assembler
	mastery   *mastery.Engine
	log       *slog.Logger

	creationLock  *keyedLatch
	refreshLock   *keyedLatch
	completeDedup *dedupRegistry
}

// New returns a Session Lifecycle Manager wiring the Store Port, Clock
// Port, Session Assembler, and Tag Mastery Engine together.
func New(s store.Store, c clock.Clock, asm *assembler.Assembler, me *mastery.Engine, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		store:         s,
		clock:         c,
		assembler:     asm,
		mastery:       me,
		log:           log,
		creationLock:  newKeyedLatch(),
		refreshLock:   newKeyedLatch(),
		completeDedup: newDedupRegistry(),
	}
}

// GetOrCreateSession is the canonical entry point (spec §4.H): returns an
// existing compatible in_progress session of the requested type, or creates
// a fresh one. Serialized per type via sessionCreationLock.
func (m *Manager) GetOrCreateSession(ctx context.Context, t models.SessionType) (*models.Session, error) {
	return m.creationLock.do(ctx, t, func() (*models.Session, error) {
		existing, err := m.findCompatibleInProgress(ctx, t)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		return m.createNewSessionLocked(ctx, t)
	})
}

// ResumeSession returns the most recent in_progress session compatible with
// t, or nil if none matches (spec §4.H) — the caller decides whether to
// create one.
func (m *Manager) ResumeSession(ctx context.Context, t models.SessionType) (*models.Session, error) {
	return m.findCompatibleInProgress(ctx, t)
}

// findCompatibleInProgress scans all in-progress sessions (ordered by
// last_activity_time descending) for the first one compatible with want.
func (m *Manager) findCompatibleInProgress(ctx context.Context, want models.SessionType) (*models.Session, error) {
	all, err := m.store.Sessions().AllInProgress(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("allInProgress", "sessions", err)
	}
	for _, s := range all {
		if s.SessionType.CompatibleWith(want) {
			return s, nil
		}
	}
	return nil, nil
}

// CreateNewSession unconditionally builds a new session of type t, sealing
// (without recomputing accuracy) any existing in_progress session of the
// same type first (spec §4.H).
func (m *Manager) CreateNewSession(ctx context.Context, t models.SessionType) (*models.Session, error) {
	return m.createNewSessionLocked(ctx, t)
}

func (m *Manager) createNewSessionLocked(ctx context.Context, t models.SessionType) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	var created *models.Session
	err := m.store.WithTransaction(ctx, store.ReadWrite, func(ctx context.Context, tx store.Tx) error {
		existing, err := tx.Sessions().InProgressByType(ctx, t)
		if err != nil && err != apperrors.ErrNotFound {
			return apperrors.NewStoreError("inProgressByType", "sessions", err)
		}
		if existing != nil {
			sealed := existing.Clone()
			sealed.Status = models.StatusCompleted
			if err := tx.Sessions().Put(ctx, sealed); err != nil {
				return apperrors.NewStoreError("put", "sessions", err)
			}
		}

		allInFlight, err := tx.Sessions().AllInProgress(ctx)
		if err != nil {
			return apperrors.NewStoreError("allInProgress", "sessions", err)
		}
		exclude := assembler.ExcludeIDsFromSessions(allInFlight)

		learning, settings, err := m.loadLearningContext(ctx, tx, t)
		if err != nil {
			return err
		}

		assembled, err := m.assembler.Assemble(ctx, settings, exclude, learning)
		if err != nil {
			return err
		}

		now := m.clock.Now()
		s := &models.Session{
			SessionID:        uuid.NewString(),
			SessionType:      t,
			Status:           models.StatusInProgress,
			Origin:           models.OriginGenerator,
			CreatedAt:        now,
			LastActivityTime: now,
		}
		for _, a := range assembled {
			s.Problems = append(s.Problems, models.SessionProblem{
				ProblemID:       a.Problem.ProblemID,
				LeetCodeID:      a.Problem.LeetCodeID,
				SelectionReason: a.Reason,
			})
		}
		if err := tx.Sessions().Put(ctx, s); err != nil {
			return apperrors.NewStoreError("put", "sessions", err)
		}
		if err := tx.Actions().Append(ctx, "createNewSession", map[string]any{
			"session_id": s.SessionID, "session_type": string(t),
		}); err != nil {
			return err
		}
		created = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("session created", "session_id", created.SessionID, "session_type", created.SessionType, "problems", len(created.Problems))
	return created, nil
}

// seedSessionState builds a fresh SessionState singleton with
// CurrentAllowedTags (the "tier," spec §9) defaulted to every tag seen in
// the Problem Catalogue, per spec §3's onboarding default.
func (m *Manager) seedSessionState(ctx context.Context) (*models.SessionState, error) {
	tags, err := catalogue.New(m.store).AllTags(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("scan", "problems", err)
	}
	state := models.NewSessionState(models.Settings{SessionLength: 5, NumberOfNewProblems: 3, DifficultyCap: models.DifficultyHard})
	state.CurrentAllowedTags = tags
	return state, nil
}

// seedSessionStateFromTx is seedSessionState's transactional counterpart,
// used by loadLearningContext which only holds a store.Tx (no
// WithTransaction, so it can't build a *catalogue.Catalogue).
func seedSessionStateFromTx(ctx context.Context, tx store.Tx) (*models.SessionState, error) {
	problems, err := tx.Problems().ScanAll(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("scan", "problems", err)
	}
	seen := make(map[string]struct{})
	for _, p := range problems {
		for _, t := range p.Tags {
			seen[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	state := models.NewSessionState(models.Settings{SessionLength: 5, NumberOfNewProblems: 3, DifficultyCap: models.DifficultyHard})
	state.CurrentAllowedTags = tags
	return state, nil
}

// loadLearningContext builds assembler.Settings + scheduler.LearningState
// from the process-wide SessionState singleton, falling back to defaults
// before it has been created (spec §3 SessionState lifecycle).
func (m *Manager) loadLearningContext(ctx context.Context, tx store.Tx, t models.SessionType) (scheduler.LearningState, assembler.Settings, error) {
	state, err := tx.SessionState().Get(ctx)
	if err != nil && err != apperrors.ErrNotFound {
		return scheduler.LearningState{}, assembler.Settings{}, apperrors.NewStoreError("get", "session_state", err)
	}
	if state == nil {
		state, err = seedSessionStateFromTx(ctx, tx)
		if err != nil {
			return scheduler.LearningState{}, assembler.Settings{}, err
		}
	}

	all, err := tx.TagMastery().All(ctx)
	if err != nil {
		return scheduler.LearningState{}, assembler.Settings{}, apperrors.NewStoreError("all", "tag_mastery", err)
	}
	var unmastered []string
	for _, tag := range state.CurrentFocusTags {
		if tm, ok := all[tag]; !ok || !tm.Mastered {
			unmastered = append(unmastered, tag)
		}
	}

	learning := scheduler.LearningState{TierTags: state.CurrentAllowedTags, UnmasteredTags: unmastered}
	settings := assembler.Settings{
		SessionLength:       state.SessionLength,
		NumberOfNewProblems: state.NumberOfNewProblems,
		ReviewRatio:         40,
		MinReviewRatio:      30,
		DifficultyCap:       state.CurrentDifficultyCap,
		AllowedTags:         state.CurrentAllowedTags,
	}
	if settings.SessionLength == 0 {
		settings.SessionLength = models.ProfileFor(t).DefaultSessionLength
	}
	return learning, settings, nil
}

// RefreshSession replaces an existing in_progress session of type t with a
// freshly assembled one. If forceNew is true and no in_progress session of
// t exists, it returns nil rather than materializing one of the wrong type
// (spec §4.H's critical guard).
func (m *Manager) RefreshSession(ctx context.Context, t models.SessionType, forceNew bool) (*models.Session, error) {
	return m.refreshLock.do(ctx, t, func() (*models.Session, error) {
		ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
		defer cancel()

		existing, err := m.store.Sessions().InProgressByType(ctx, t)
		if err != nil && err != apperrors.ErrNotFound {
			return nil, apperrors.NewStoreError("inProgressByType", "sessions", err)
		}
		if forceNew && existing == nil {
			return nil, nil
		}
		if existing != nil {
			if err := m.store.Sessions().Delete(ctx, existing.SessionID); err != nil {
				return nil, apperrors.NewStoreError("delete", "sessions", err)
			}
		}
		return m.createNewSessionLocked(ctx, t)
	})
}

// SkipProblem removes a problem from a session's list by LeetCode id,
// optionally replacing it with a normalized prerequisite pick. Attempts are
// never touched (spec §4.H).
func (m *Manager) SkipProblem(ctx context.Context, sessionID string, leetCodeID int, replacement *models.Problem) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	var updated *models.Session
	err := m.store.WithTransaction(ctx, store.ReadWrite, func(ctx context.Context, tx store.Tx) error {
		s, err := tx.Sessions().Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if s.Status == models.StatusCompleted {
			updated = s
			return nil
		}
		s.RemoveProblem(leetCodeID)
		if replacement != nil {
			s.Problems = append(s.Problems, models.SessionProblem{
				ProblemID:       replacement.ProblemID,
				LeetCodeID:      replacement.LeetCodeID,
				SelectionReason: models.ReasonPrerequisite,
			})
		}
		s.LastActivityTime = m.clock.Now()
		if err := tx.Sessions().Put(ctx, s); err != nil {
			return apperrors.NewStoreError("put", "sessions", err)
		}
		updated = s
		return nil
	})
	if err != nil {
		if err == apperrors.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return updated, nil
}

// GetSession returns a session by id, or nil if not found.
func (m *Manager) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	s, err := m.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// CheckAndCompleteSession implements spec §4.H's completion check and
// pipeline. Returns (nil, false, nil) for a missing session; (nil, true,
// nil) if already/now completed; otherwise (remaining, true, nil) with the
// unattempted problems. Idempotent: a session already completed short-circuits before
// recomputing anything.
func (m *Manager) CheckAndCompleteSession(ctx context.Context, sessionID string) (remaining []models.SessionProblem, found bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, CompletionPipelineTimeout)
	defer cancel()

	s, err := m.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	if s.Status == models.StatusCompleted {
		return nil, true, nil
	}

	attempts, err := m.store.Attempts().BySession(ctx, sessionID)
	if err != nil {
		return nil, true, apperrors.NewStoreError("bySession", "attempts", err)
	}

	attemptedLeetCodeIDs, err := m.attemptedLeetCodeIDs(ctx, attempts)
	if err != nil {
		return nil, true, err
	}

	var unattempted []models.SessionProblem
	for _, p := range s.Problems {
		if p.LeetCodeID == 0 {
			return nil, true, fmt.Errorf("%w: session problem %s missing leetcode_id", apperrors.ErrInvariantViolation, p.ProblemID)
		}
		if _, done := attemptedLeetCodeIDs[p.LeetCodeID]; !done {
			unattempted = append(unattempted, p)
		}
	}
	if len(unattempted) > 0 {
		return unattempted, true, nil
	}

	err = m.completeDedup.do("completeSession", sessionID, func() error {
		return m.completeSession(ctx, s, attempts)
	})
	if err != nil {
		return nil, true, err
	}
	return nil, true, nil
}

// attemptedLeetCodeIDs maps each attempt in the session to its problem's
// LeetCode id via the Attempt Engine's ProblemID reference — Attempt itself
// carries no leetcode_id (spec §4.H's "attempted" completion-matching rule).
func (m *Manager) attemptedLeetCodeIDs(ctx context.Context, attempts []*models.Attempt) (map[int]struct{}, error) {
	out := make(map[int]struct{}, len(attempts))
	cache := make(map[string]int)
	for _, a := range attempts {
		lc, ok := cache[a.ProblemID]
		if !ok {
			p, err := m.store.Problems().Get(ctx, a.ProblemID)
			if err != nil {
				if err == apperrors.ErrNotFound {
					continue
				}
				return nil, apperrors.NewStoreError("get", "problems", err)
			}
			lc = p.LeetCodeID
			cache[a.ProblemID] = lc
		}
		out[lc] = struct{}{}
	}
	return out, nil
}

// completeSession seals s as completed and runs the completion pipeline:
// Tag Mastery recompute → Focus Coordinator update → SessionState update.
// If the Focus Coordinator fails, the session is still marked completed and
// basic SessionState persisted; the error is logged and swallowed (spec
// §4.H Failure semantics, §7 FocusDecisionFailed).
func (m *Manager) completeSession(ctx context.Context, s *models.Session, attempts []*models.Attempt) error {
	successful := 0
	totalTimeSpent := 0
	for _, a := range attempts {
		if a.Success {
			successful++
		}
		totalTimeSpent += a.TimeSpent
	}
	accuracy := 0.0
	if len(attempts) > 0 {
		accuracy = float64(successful) / float64(len(attempts))
	}
	duration := float64(totalTimeSpent) / 60.0

	sealed := s.Clone()
	sealed.Status = models.StatusCompleted
	sealed.Accuracy = &accuracy
	sealed.Duration = &duration
	sealed.LastActivityTime = m.clock.Now()
	if err := m.store.Sessions().Put(ctx, sealed); err != nil {
		return apperrors.NewStoreError("put", "sessions", err)
	}

	snapshot, err := m.mastery.Recompute(ctx)
	if err != nil {
		m.log.Error("completion pipeline: mastery recompute failed", "session_id", s.SessionID, "error", err)
	}

	state, err := m.store.SessionState().Get(ctx)
	if err != nil && err != apperrors.ErrNotFound {
		m.log.Error("completion pipeline: session state load failed", "error", err)
	}
	if state == nil {
		state, err = m.seedSessionState(ctx)
		if err != nil {
			m.log.Error("completion pipeline: session state seed failed", "error", err)
			state = models.NewSessionState(models.Settings{SessionLength: 5, NumberOfNewProblems: 3, DifficultyCap: models.DifficultyHard})
		}
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				m.log.Error("completion pipeline: focus coordinator panicked, swallowing", "session_id", s.SessionID, "panic", r)
			}
		}()
		decision := focus.Decide(state, state.CurrentAllowedTags, snapshot, accuracy)
		state.CurrentFocusTags = decision.NextFocusTags
		state.PerformanceLevel = decision.PerformanceLevel
	}()

	state.NumSessionsCompleted++
	improved := accuracy >= state.LastPerformance.Accuracy
	state.LastPerformance = models.LastPerformance{Accuracy: accuracy, EfficiencyScore: efficiencyScore(attempts, duration, models.ProfileFor(s.SessionType).HintCap)}
	if accuracy >= 0.8 || improved {
		now := m.clock.Now()
		state.LastProgressDate = &now
	}

	if err := m.store.SessionState().Put(ctx, state); err != nil {
		m.log.Error("completion pipeline: session state save failed", "session_id", s.SessionID, "error", err)
	}

	m.log.Info("session completed", "session_id", s.SessionID, "accuracy", accuracy, "duration_minutes", duration)
	return nil
}

// efficiencyScore is attempts per minute (successful or not), discounted for hint use
// beyond the session type's hint cap (spec Design Notes' per-variant
// constants table): each hint spent past the cap halves that attempt's
// contribution, so two sessions with identical accuracy and duration don't
// score identically if one leaned on hints far more than its type allows.
func efficiencyScore(attempts []*models.Attempt, duration float64, hintCap int) float64 {
	if duration <= 0 || len(attempts) == 0 {
		return 0
	}
	weighted := 0.0
	for _, a := range attempts {
		weight := 1.0
		if over := a.HintsUsed - hintCap; over > 0 {
			weight = 1.0 / float64(1<<uint(over))
		}
		weighted += weight
	}
	return weighted / duration
}
