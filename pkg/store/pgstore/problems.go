package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/jackc/pgx/v5"
)

type problemView struct{ q querier }

const problemColumns = `problem_id, leetcode_id, title, slug, difficulty, tags, box_level, review_schedule, last_attempt_date, attempt_total, attempt_success`

func scanProblem(row pgx.Row) (*models.Problem, error) {
	var p models.Problem
	var difficulty string
	if err := row.Scan(
		&p.ProblemID, &p.LeetCodeID, &p.Title, &p.Slug, &difficulty, &p.Tags,
		&p.BoxLevel, &p.ReviewSchedule, &p.LastAttemptDate,
		&p.AttemptStats.Total, &p.AttemptStats.Successful,
	); err != nil {
		return nil, err
	}
	d, err := models.ParseDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	p.Difficulty = d
	return &p, nil
}

func (v problemView) Get(ctx context.Context, problemID string) (*models.Problem, error) {
	row := v.q.QueryRow(ctx, `SELECT `+problemColumns+` FROM problems WHERE problem_id = $1`, problemID)
	p, err := scanProblem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get", "problems", err)
	}
	return p, nil
}

func (v problemView) GetByLeetCodeID(ctx context.Context, leetCodeID int) (*models.Problem, error) {
	row := v.q.QueryRow(ctx, `SELECT `+problemColumns+` FROM problems WHERE leetcode_id = $1`, leetCodeID)
	p, err := scanProblem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("getByLeetCodeID", "problems", err)
	}
	return p, nil
}

func (v problemView) ScanAll(ctx context.Context) ([]*models.Problem, error) {
	rows, err := v.q.Query(ctx, `SELECT `+problemColumns+` FROM problems ORDER BY problem_id`)
	if err != nil {
		return nil, apperrors.NewStoreError("scanAll", "problems", err)
	}
	defer rows.Close()

	var out []*models.Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("scanAll", "problems", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (v problemView) ByTag(ctx context.Context, tag string) ([]*models.Problem, error) {
	rows, err := v.q.Query(ctx, `SELECT `+problemColumns+` FROM problems WHERE $1 = ANY(tags) ORDER BY problem_id`, tag)
	if err != nil {
		return nil, apperrors.NewStoreError("byTag", "problems", err)
	}
	defer rows.Close()

	var out []*models.Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("byTag", "problems", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (v problemView) CountByBoxLevel(ctx context.Context) (map[int]int, error) {
	rows, err := v.q.Query(ctx, `SELECT box_level, count(*) FROM problems GROUP BY box_level`)
	if err != nil {
		return nil, apperrors.NewStoreError("countByBoxLevel", "problems", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var level, count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, apperrors.NewStoreError("countByBoxLevel", "problems", err)
		}
		out[level] = count
	}
	return out, rows.Err()
}

func (v problemView) Put(ctx context.Context, p *models.Problem) error {
	_, err := v.q.Exec(ctx, `
		INSERT INTO problems (`+problemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (problem_id) DO UPDATE SET
			leetcode_id = EXCLUDED.leetcode_id,
			title = EXCLUDED.title,
			slug = EXCLUDED.slug,
			difficulty = EXCLUDED.difficulty,
			tags = EXCLUDED.tags,
			box_level = EXCLUDED.box_level,
			review_schedule = EXCLUDED.review_schedule,
			last_attempt_date = EXCLUDED.last_attempt_date,
			attempt_total = EXCLUDED.attempt_total,
			attempt_success = EXCLUDED.attempt_success`,
		p.ProblemID, p.LeetCodeID, p.Title, p.Slug, string(p.Difficulty), p.Tags,
		p.BoxLevel, p.ReviewSchedule, p.LastAttemptDate,
		p.AttemptStats.Total, p.AttemptStats.Successful,
	)
	if err != nil {
		return apperrors.NewStoreError("put", "problems", err)
	}
	return nil
}

func (v problemView) UpsertLearningState(ctx context.Context, problemID string, boxLevel int, nextReview time.Time, lastAttempt time.Time, stats models.AttemptStats) error {
	tag, err := v.q.Exec(ctx, `
		UPDATE problems SET box_level = $2, review_schedule = $3, last_attempt_date = $4,
			attempt_total = $5, attempt_success = $6
		WHERE problem_id = $1`,
		problemID, boxLevel, nextReview, lastAttempt, stats.Total, stats.Successful,
	)
	if err != nil {
		return apperrors.NewStoreError("upsertLearningState", "problems", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
