package memstore

import (
	"context"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
)

type attemptView struct{ base }

func (v attemptView) Insert(_ context.Context, a *models.Attempt) error {
	v.withWrite(func(d *state) {
		d.attempts[a.AttemptID] = cloneAttempt(a)
	})
	return nil
}

func (v attemptView) Get(_ context.Context, attemptID string) (*models.Attempt, error) {
	var out *models.Attempt
	var err error
	v.withRead(func(d *state) {
		a, ok := d.attempts[attemptID]
		if !ok {
			err = apperrors.ErrNotFound
			return
		}
		out = cloneAttempt(a)
	})
	return out, err
}

func (v attemptView) ByProblem(_ context.Context, problemID string) ([]*models.Attempt, error) {
	var out []*models.Attempt
	v.withRead(func(d *state) {
		for _, a := range d.attempts {
			if a.ProblemID == problemID {
				out = append(out, cloneAttempt(a))
			}
		}
	})
	sortAttemptsByDate(out)
	return out, nil
}

func (v attemptView) BySession(_ context.Context, sessionID string) ([]*models.Attempt, error) {
	var out []*models.Attempt
	v.withRead(func(d *state) {
		for _, a := range d.attempts {
			if a.SessionID != nil && *a.SessionID == sessionID {
				out = append(out, cloneAttempt(a))
			}
		}
	})
	sortAttemptsByDate(out)
	return out, nil
}

func (v attemptView) All(_ context.Context) ([]*models.Attempt, error) {
	var out []*models.Attempt
	v.withRead(func(d *state) {
		out = make([]*models.Attempt, 0, len(d.attempts))
		for _, a := range d.attempts {
			out = append(out, cloneAttempt(a))
		}
	})
	sortAttemptsByDate(out)
	return out, nil
}

func (v attemptView) MostRecent(_ context.Context, problemID string) (*models.Attempt, error) {
	var out *models.Attempt
	v.withRead(func(d *state) {
		for _, a := range d.attempts {
			if problemID != "" && a.ProblemID != problemID {
				continue
			}
			if out == nil || a.AttemptDate.After(out.AttemptDate) {
				out = a
			}
		}
	})
	if out == nil {
		return nil, apperrors.ErrNotFound
	}
	return cloneAttempt(out), nil
}

func sortAttemptsByDate(a []*models.Attempt) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1].AttemptDate.After(a[j].AttemptDate); j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}
