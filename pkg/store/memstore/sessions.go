package memstore

import (
	"context"
	"sort"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
)

type sessionView struct{ base }

func (v sessionView) Get(_ context.Context, sessionID string) (*models.Session, error) {
	var out *models.Session
	var err error
	v.withRead(func(d *state) {
		s, ok := d.sessions[sessionID]
		if !ok {
			err = apperrors.ErrNotFound
			return
		}
		out = s.Clone()
	})
	return out, err
}

// Put enforces the at-most-one-in_progress-per-type invariant (spec §8):
// writing an in_progress session while a different in_progress session of
// the same type already exists is a bug in the caller, not a recoverable
// condition.
func (v sessionView) Put(_ context.Context, s *models.Session) error {
	var err error
	v.withWrite(func(d *state) {
		if s.Status == models.StatusInProgress {
			for id, existing := range d.sessions {
				if id == s.SessionID {
					continue
				}
				if existing.Status == models.StatusInProgress && existing.SessionType == s.SessionType {
					err = apperrors.ErrInvariantViolation
					return
				}
			}
		}
		d.sessions[s.SessionID] = s.Clone()
	})
	return err
}

func (v sessionView) Delete(_ context.Context, sessionID string) error {
	v.withWrite(func(d *state) {
		delete(d.sessions, sessionID)
	})
	return nil
}

func (v sessionView) InProgressByType(_ context.Context, t models.SessionType) (*models.Session, error) {
	var matches []*models.Session
	v.withRead(func(d *state) {
		for _, s := range d.sessions {
			if s.Status == models.StatusInProgress && s.SessionType == t {
				matches = append(matches, s.Clone())
			}
		}
	})
	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) > 1 {
		return nil, apperrors.ErrInvariantViolation
	}
	return matches[0], nil
}

func (v sessionView) AllInProgress(_ context.Context) ([]*models.Session, error) {
	var out []*models.Session
	v.withRead(func(d *state) {
		for _, s := range d.sessions {
			if s.Status == models.StatusInProgress {
				out = append(out, s.Clone())
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivityTime.After(out[j].LastActivityTime)
	})
	return out, nil
}
