package pgstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/jackc/pgx/v5"
)

type stateView struct{ q querier }

func (v stateView) Get(ctx context.Context) (*models.SessionState, error) {
	var s models.SessionState
	var difficultyCap string
	var activeSessionIDs []byte

	row := v.q.QueryRow(ctx, `
		SELECT num_sessions_completed, current_focus_tags, performance_level,
			last_performance_accuracy, last_performance_efficiency, last_progress_date,
			current_difficulty_cap, session_length, number_of_new_problems,
			current_allowed_tags, active_session_ids
		FROM session_state WHERE id = TRUE`)

	err := row.Scan(
		&s.NumSessionsCompleted, &s.CurrentFocusTags, &s.PerformanceLevel,
		&s.LastPerformance.Accuracy, &s.LastPerformance.EfficiencyScore, &s.LastProgressDate,
		&difficultyCap, &s.SessionLength, &s.NumberOfNewProblems,
		&s.CurrentAllowedTags, &activeSessionIDs,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get", "session_state", err)
	}

	d, err := models.ParseDifficulty(difficultyCap)
	if err != nil {
		return nil, apperrors.NewStoreError("get", "session_state", err)
	}
	s.CurrentDifficultyCap = d

	s.ActiveSessionID = make(map[models.SessionType]string)
	if err := json.Unmarshal(activeSessionIDs, &s.ActiveSessionID); err != nil {
		return nil, apperrors.NewStoreError("get", "session_state", err)
	}
	return &s, nil
}

func (v stateView) Put(ctx context.Context, s *models.SessionState) error {
	activeSessionIDs, err := json.Marshal(s.ActiveSessionID)
	if err != nil {
		return apperrors.NewStoreError("put", "session_state", err)
	}

	_, err = v.q.Exec(ctx, `
		INSERT INTO session_state (id, num_sessions_completed, current_focus_tags, performance_level,
			last_performance_accuracy, last_performance_efficiency, last_progress_date,
			current_difficulty_cap, session_length, number_of_new_problems,
			current_allowed_tags, active_session_ids)
		VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			num_sessions_completed = EXCLUDED.num_sessions_completed,
			current_focus_tags = EXCLUDED.current_focus_tags,
			performance_level = EXCLUDED.performance_level,
			last_performance_accuracy = EXCLUDED.last_performance_accuracy,
			last_performance_efficiency = EXCLUDED.last_performance_efficiency,
			last_progress_date = EXCLUDED.last_progress_date,
			current_difficulty_cap = EXCLUDED.current_difficulty_cap,
			session_length = EXCLUDED.session_length,
			number_of_new_problems = EXCLUDED.number_of_new_problems,
			current_allowed_tags = EXCLUDED.current_allowed_tags,
			active_session_ids = EXCLUDED.active_session_ids`,
		s.NumSessionsCompleted, s.CurrentFocusTags, s.PerformanceLevel,
		s.LastPerformance.Accuracy, s.LastPerformance.EfficiencyScore, s.LastProgressDate,
		string(s.CurrentDifficultyCap), s.SessionLength, s.NumberOfNewProblems,
		s.CurrentAllowedTags, activeSessionIDs,
	)
	if err != nil {
		return apperrors.NewStoreError("put", "session_state", err)
	}
	return nil
}
