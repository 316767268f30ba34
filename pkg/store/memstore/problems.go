package memstore

import (
	"context"
	"time"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
)

type problemView struct{ base }

func (v problemView) Get(_ context.Context, problemID string) (*models.Problem, error) {
	var out *models.Problem
	var err error
	v.withRead(func(d *state) {
		p, ok := d.problems[problemID]
		if !ok {
			err = apperrors.ErrNotFound
			return
		}
		out = cloneProblem(p)
	})
	return out, err
}

func (v problemView) GetByLeetCodeID(_ context.Context, leetCodeID int) (*models.Problem, error) {
	var out *models.Problem
	var err error
	v.withRead(func(d *state) {
		id, ok := d.byLeetCode[leetCodeID]
		if !ok {
			err = apperrors.ErrNotFound
			return
		}
		out = cloneProblem(d.problems[id])
	})
	return out, err
}

func (v problemView) ScanAll(_ context.Context) ([]*models.Problem, error) {
	var out []*models.Problem
	v.withRead(func(d *state) {
		out = make([]*models.Problem, 0, len(d.problems))
		for _, p := range d.problems {
			out = append(out, cloneProblem(p))
		}
	})
	return out, nil
}

func (v problemView) ByTag(_ context.Context, tag string) ([]*models.Problem, error) {
	var out []*models.Problem
	v.withRead(func(d *state) {
		for _, p := range d.problems {
			if p.HasTag(tag) {
				out = append(out, cloneProblem(p))
			}
		}
	})
	return out, nil
}

func (v problemView) CountByBoxLevel(_ context.Context) (map[int]int, error) {
	out := make(map[int]int)
	v.withRead(func(d *state) {
		for _, p := range d.problems {
			out[p.BoxLevel]++
		}
	})
	return out, nil
}

func (v problemView) Put(_ context.Context, p *models.Problem) error {
	v.withWrite(func(d *state) {
		cp := cloneProblem(p)
		d.problems[cp.ProblemID] = cp
		d.byLeetCode[cp.LeetCodeID] = cp.ProblemID
	})
	return nil
}

func (v problemView) UpsertLearningState(_ context.Context, problemID string, boxLevel int, nextReview time.Time, lastAttempt time.Time, stats models.AttemptStats) error {
	var err error
	v.withWrite(func(d *state) {
		p, ok := d.problems[problemID]
		if !ok {
			err = apperrors.ErrNotFound
			return
		}
		p.BoxLevel = boxLevel
		p.ReviewSchedule = nextReview
		p.LastAttemptDate = &lastAttempt
		p.AttemptStats = stats
	})
	return err
}
