package pgstore

import (
	"context"
	"errors"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type sessionView struct{ q querier }

const sessionColumns = `session_id, session_type, status, origin, created_at, last_activity_time, current_problem_index, attempt_ids, accuracy, duration`

func scanSession(row pgx.Row) (*models.Session, error) {
	var s models.Session
	if err := row.Scan(
		&s.SessionID, &s.SessionType, &s.Status, &s.Origin, &s.CreatedAt, &s.LastActivityTime,
		&s.CurrentProblemIndex, &s.AttemptIDs, &s.Accuracy, &s.Duration,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (v sessionView) loadProblems(ctx context.Context, s *models.Session) error {
	rows, err := v.q.Query(ctx, `SELECT problem_id, leetcode_id, selection_reason FROM session_problems WHERE session_id = $1 ORDER BY position`, s.SessionID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sp models.SessionProblem
		if err := rows.Scan(&sp.ProblemID, &sp.LeetCodeID, &sp.SelectionReason); err != nil {
			return err
		}
		s.Problems = append(s.Problems, sp)
	}
	return rows.Err()
}

func (v sessionView) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	row := v.q.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE session_id = $1`, sessionID)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get", "sessions", err)
	}
	if err := v.loadProblems(ctx, s); err != nil {
		return nil, apperrors.NewStoreError("get", "sessions", err)
	}
	return s, nil
}

// Put relies on the partial unique index idx_sessions_one_in_progress_per_type
// to enforce the at-most-one-in_progress-per-type invariant at the database
// level; a violation surfaces as a unique_violation which is translated to
// apperrors.ErrInvariantViolation.
func (v sessionView) Put(ctx context.Context, s *models.Session) error {
	_, err := v.q.Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (session_id) DO UPDATE SET
			session_type = EXCLUDED.session_type,
			status = EXCLUDED.status,
			origin = EXCLUDED.origin,
			last_activity_time = EXCLUDED.last_activity_time,
			current_problem_index = EXCLUDED.current_problem_index,
			attempt_ids = EXCLUDED.attempt_ids,
			accuracy = EXCLUDED.accuracy,
			duration = EXCLUDED.duration`,
		s.SessionID, s.SessionType, s.Status, s.Origin, s.CreatedAt, s.LastActivityTime,
		s.CurrentProblemIndex, s.AttemptIDs, s.Accuracy, s.Duration,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrInvariantViolation
		}
		return apperrors.NewStoreError("put", "sessions", err)
	}

	if _, err := v.q.Exec(ctx, `DELETE FROM session_problems WHERE session_id = $1`, s.SessionID); err != nil {
		return apperrors.NewStoreError("put", "session_problems", err)
	}
	for i, p := range s.Problems {
		if _, err := v.q.Exec(ctx, `
			INSERT INTO session_problems (session_id, position, problem_id, leetcode_id, selection_reason)
			VALUES ($1, $2, $3, $4, $5)`,
			s.SessionID, i, p.ProblemID, p.LeetCodeID, p.SelectionReason,
		); err != nil {
			return apperrors.NewStoreError("put", "session_problems", err)
		}
	}
	return nil
}

func (v sessionView) Delete(ctx context.Context, sessionID string) error {
	if _, err := v.q.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID); err != nil {
		return apperrors.NewStoreError("delete", "sessions", err)
	}
	return nil
}

func (v sessionView) InProgressByType(ctx context.Context, t models.SessionType) (*models.Session, error) {
	row := v.q.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE session_type = $1 AND status = 'in_progress'`, t)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreError("inProgressByType", "sessions", err)
	}
	if err := v.loadProblems(ctx, s); err != nil {
		return nil, apperrors.NewStoreError("inProgressByType", "sessions", err)
	}
	return s, nil
}

func (v sessionView) AllInProgress(ctx context.Context) ([]*models.Session, error) {
	rows, err := v.q.Query(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE status = 'in_progress' ORDER BY last_activity_time DESC`)
	if err != nil {
		return nil, apperrors.NewStoreError("allInProgress", "sessions", err)
	}
	defer rows.Close()

	var out []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("allInProgress", "sessions", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("allInProgress", "sessions", err)
	}

	for _, s := range out {
		if err := v.loadProblems(ctx, s); err != nil {
			return nil, apperrors.NewStoreError("allInProgress", "sessions", err)
		}
	}
	return out, nil
}
