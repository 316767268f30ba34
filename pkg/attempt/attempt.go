// Package attempt implements the Attempt Engine (spec §4.D): it is the only
// component that writes attempts and a problem's learning state
// (box_level, review_schedule, attempt_stats).
package attempt

import (
	"context"
	"log/slog"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/clock"
	"github.com/codeready-toolchain/practice-scheduler/pkg/leitner"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store"
	"github.com/google/uuid"
)

// Engine is the Attempt Engine, grounded on
// pkg/services/session_service.go's transactional create pattern
// (tx := client.Tx(ctx); defer tx.Rollback(); ...; tx.Commit()), adapted
// from ent's *ent.Tx to the hand-rolled store.Tx.
type Engine struct {
	store store.Store
	clock clock.Clock
	log   *slog.Logger
}

// New returns an Attempt Engine backed by the given Store Port and Clock
// Port.
func New(s store.Store, c clock.Clock, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: s, clock: c, log: log}
}

// Result is addAttempt's return value: the written attempt plus a hint that
// the Lifecycle Manager should check whether the referenced session (if
// any) is now complete.
type Result struct {
	Attempt        *models.Attempt
	CompletionHint bool
}

// AddAttempt writes a new Attempt and recomputes the referenced problem's
// Leitner box level, review schedule, and attempt_stats in a single
// readwrite transaction (spec §4.D). ErrNotFound is returned, not
// propagated, when neither ProblemID nor LeetCodeID resolves.
func (e *Engine) AddAttempt(ctx context.Context, req models.AddAttemptRequest) (*Result, error) {
	var result *Result

	err := e.store.WithTransaction(ctx, store.ReadWrite, func(ctx context.Context, tx store.Tx) error {
		problem, err := e.resolveProblem(ctx, tx, req)
		if err != nil {
			return err
		}

		now := e.clock.Now()
		attemptDate := now
		// Time skew: an attempt dated in the future clamps to now() — this
		// engine always stamps attempt_date itself, so skew can only come
		// from a caller-supplied clock drift; clamp defensively anyway.
		if attemptDate.After(now) {
			attemptDate = now
		}

		boxAtAttempt := problem.BoxLevel
		if problem.AttemptStats.Total == 0 {
			boxAtAttempt = 1
		}
		newBox := leitner.NextBoxLevel(boxAtAttempt, req.Success)
		nextReview := attemptDate.AddDate(0, 0, leitner.IntervalDays(newBox))

		stats := problem.AttemptStats
		stats.Total++
		if req.Success {
			stats.Successful++
		}

		a := &models.Attempt{
			AttemptID:         uuid.NewString(),
			ProblemID:         problem.ProblemID,
			SessionID:         req.SessionID,
			AttemptDate:       attemptDate,
			Success:           req.Success,
			TimeSpent:         req.TimeSpent,
			HintsUsed:         req.HintsUsed,
			BoxLevelAtAttempt: boxAtAttempt,
			Comments:          req.Comments,
		}
		if err := tx.Attempts().Insert(ctx, a); err != nil {
			return apperrors.NewStoreError("insert", "attempts", err)
		}
		if err := tx.Problems().UpsertLearningState(ctx, problem.ProblemID, newBox, nextReview, attemptDate, stats); err != nil {
			return apperrors.NewStoreError("upsertLearningState", "problems", err)
		}
		if err := tx.Actions().Append(ctx, "addAttempt", map[string]any{
			"problem_id": problem.ProblemID,
			"success":    req.Success,
		}); err != nil {
			return err
		}

		e.log.Info("attempt recorded", "problem_id", problem.ProblemID, "success", req.Success, "box_level", newBox)
		result = &Result{Attempt: a, CompletionHint: req.SessionID != nil}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) resolveProblem(ctx context.Context, tx store.Tx, req models.AddAttemptRequest) (*models.Problem, error) {
	if req.ProblemID != "" {
		return tx.Problems().Get(ctx, req.ProblemID)
	}
	return tx.Problems().GetByLeetCodeID(ctx, req.LeetCodeID)
}

// GetAttemptsByProblem returns every attempt recorded against a problem,
// ordered by attempt_date.
func (e *Engine) GetAttemptsByProblem(ctx context.Context, problemID string) ([]*models.Attempt, error) {
	return e.store.Attempts().ByProblem(ctx, problemID)
}

// GetAllAttempts returns every attempt ever recorded.
func (e *Engine) GetAllAttempts(ctx context.Context) ([]*models.Attempt, error) {
	return e.store.Attempts().All(ctx)
}

// GetMostRecentAttempt returns the most recent attempt overall (problemID
// == "") or for a single problem.
func (e *Engine) GetMostRecentAttempt(ctx context.Context, problemID string) (*models.Attempt, error) {
	return e.store.Attempts().MostRecent(ctx, problemID)
}
