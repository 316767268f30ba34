package pgstore

import (
	"context"
	"encoding/json"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
)

type actionView struct{ q querier }

func (v actionView) Append(ctx context.Context, action string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewStoreError("append", "user_actions", err)
	}
	if _, err := v.q.Exec(ctx, `INSERT INTO user_actions (action, payload) VALUES ($1, $2)`, action, body); err != nil {
		return apperrors.NewStoreError("append", "user_actions", err)
	}
	return nil
}
