package memstore

import (
	"context"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
)

type stateView struct{ base }

func cloneSessionState(s *models.SessionState) *models.SessionState {
	cp := *s
	cp.CurrentFocusTags = append([]string(nil), s.CurrentFocusTags...)
	cp.CurrentAllowedTags = append([]string(nil), s.CurrentAllowedTags...)
	cp.ActiveSessionID = make(map[models.SessionType]string, len(s.ActiveSessionID))
	for k, v := range s.ActiveSessionID {
		cp.ActiveSessionID[k] = v
	}
	return &cp
}

func (v stateView) Get(_ context.Context) (*models.SessionState, error) {
	var out *models.SessionState
	var err error
	v.withRead(func(d *state) {
		if d.sessionState == nil {
			err = apperrors.ErrNotFound
			return
		}
		out = cloneSessionState(d.sessionState)
	})
	return out, err
}

func (v stateView) Put(_ context.Context, s *models.SessionState) error {
	v.withWrite(func(d *state) {
		d.sessionState = cloneSessionState(s)
	})
	return nil
}
