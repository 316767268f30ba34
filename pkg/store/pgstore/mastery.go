package pgstore

import (
	"context"
	"errors"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/jackc/pgx/v5"
)

type masteryView struct{ q querier }

const masteryColumns = `tag, total_attempts, successful_attempts, success_rate, mastered, decay_score, last_recomputed_at`

func scanMastery(row pgx.Row) (*models.TagMastery, error) {
	var m models.TagMastery
	if err := row.Scan(&m.Tag, &m.TotalAttempts, &m.SuccessfulAttempts, &m.SuccessRate, &m.Mastered, &m.DecayScore, &m.LastRecomputedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (v masteryView) Get(ctx context.Context, tag string) (*models.TagMastery, error) {
	row := v.q.QueryRow(ctx, `SELECT `+masteryColumns+` FROM tag_mastery WHERE tag = $1`, tag)
	m, err := scanMastery(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get", "tag_mastery", err)
	}
	return m, nil
}

func (v masteryView) Put(ctx context.Context, m *models.TagMastery) error {
	_, err := v.q.Exec(ctx, `
		INSERT INTO tag_mastery (`+masteryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tag) DO UPDATE SET
			total_attempts = EXCLUDED.total_attempts,
			successful_attempts = EXCLUDED.successful_attempts,
			success_rate = EXCLUDED.success_rate,
			mastered = EXCLUDED.mastered,
			decay_score = EXCLUDED.decay_score,
			last_recomputed_at = EXCLUDED.last_recomputed_at`,
		m.Tag, m.TotalAttempts, m.SuccessfulAttempts, m.SuccessRate, m.Mastered, m.DecayScore, m.LastRecomputedAt,
	)
	if err != nil {
		return apperrors.NewStoreError("put", "tag_mastery", err)
	}
	return nil
}

func (v masteryView) All(ctx context.Context) (map[string]*models.TagMastery, error) {
	rows, err := v.q.Query(ctx, `SELECT `+masteryColumns+` FROM tag_mastery`)
	if err != nil {
		return nil, apperrors.NewStoreError("all", "tag_mastery", err)
	}
	defer rows.Close()

	out := make(map[string]*models.TagMastery)
	for rows.Next() {
		m, err := scanMastery(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("all", "tag_mastery", err)
		}
		out[m.Tag] = m
	}
	return out, rows.Err()
}
