package pgstore

import (
	"context"
	"errors"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/jackc/pgx/v5"
)

type attemptView struct{ q querier }

const attemptColumns = `attempt_id, problem_id, session_id, attempt_date, success, time_spent, hints_used, box_level_at_attempt, comments`

func scanAttempt(row pgx.Row) (*models.Attempt, error) {
	var a models.Attempt
	if err := row.Scan(
		&a.AttemptID, &a.ProblemID, &a.SessionID, &a.AttemptDate, &a.Success,
		&a.TimeSpent, &a.HintsUsed, &a.BoxLevelAtAttempt, &a.Comments,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (v attemptView) Insert(ctx context.Context, a *models.Attempt) error {
	_, err := v.q.Exec(ctx, `
		INSERT INTO attempts (`+attemptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.AttemptID, a.ProblemID, a.SessionID, a.AttemptDate, a.Success,
		a.TimeSpent, a.HintsUsed, a.BoxLevelAtAttempt, a.Comments,
	)
	if err != nil {
		return apperrors.NewStoreError("insert", "attempts", err)
	}
	return nil
}

func (v attemptView) Get(ctx context.Context, attemptID string) (*models.Attempt, error) {
	row := v.q.QueryRow(ctx, `SELECT `+attemptColumns+` FROM attempts WHERE attempt_id = $1`, attemptID)
	a, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get", "attempts", err)
	}
	return a, nil
}

func (v attemptView) ByProblem(ctx context.Context, problemID string) ([]*models.Attempt, error) {
	rows, err := v.q.Query(ctx, `SELECT `+attemptColumns+` FROM attempts WHERE problem_id = $1 ORDER BY attempt_date`, problemID)
	if err != nil {
		return nil, apperrors.NewStoreError("byProblem", "attempts", err)
	}
	defer rows.Close()
	return collectAttempts(rows)
}

func (v attemptView) BySession(ctx context.Context, sessionID string) ([]*models.Attempt, error) {
	rows, err := v.q.Query(ctx, `SELECT `+attemptColumns+` FROM attempts WHERE session_id = $1 ORDER BY attempt_date`, sessionID)
	if err != nil {
		return nil, apperrors.NewStoreError("bySession", "attempts", err)
	}
	defer rows.Close()
	return collectAttempts(rows)
}

func (v attemptView) All(ctx context.Context) ([]*models.Attempt, error) {
	rows, err := v.q.Query(ctx, `SELECT `+attemptColumns+` FROM attempts ORDER BY attempt_date`)
	if err != nil {
		return nil, apperrors.NewStoreError("all", "attempts", err)
	}
	defer rows.Close()
	return collectAttempts(rows)
}

func (v attemptView) MostRecent(ctx context.Context, problemID string) (*models.Attempt, error) {
	var row pgx.Row
	if problemID == "" {
		row = v.q.QueryRow(ctx, `SELECT `+attemptColumns+` FROM attempts ORDER BY attempt_date DESC LIMIT 1`)
	} else {
		row = v.q.QueryRow(ctx, `SELECT `+attemptColumns+` FROM attempts WHERE problem_id = $1 ORDER BY attempt_date DESC LIMIT 1`, problemID)
	}
	a, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("mostRecent", "attempts", err)
	}
	return a, nil
}

func collectAttempts(rows pgx.Rows) ([]*models.Attempt, error) {
	var out []*models.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("scan", "attempts", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
