package memstore

import (
	"context"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
)

type masteryView struct{ base }

func (v masteryView) Get(_ context.Context, tag string) (*models.TagMastery, error) {
	var out *models.TagMastery
	var err error
	v.withRead(func(d *state) {
		m, ok := d.tagMastery[tag]
		if !ok {
			err = apperrors.ErrNotFound
			return
		}
		cp := *m
		out = &cp
	})
	return out, err
}

func (v masteryView) Put(_ context.Context, m *models.TagMastery) error {
	v.withWrite(func(d *state) {
		cp := *m
		d.tagMastery[cp.Tag] = &cp
	})
	return nil
}

func (v masteryView) All(_ context.Context) (map[string]*models.TagMastery, error) {
	out := make(map[string]*models.TagMastery)
	v.withRead(func(d *state) {
		for tag, m := range d.tagMastery {
			cp := *m
			out[tag] = &cp
		}
	})
	return out, nil
}
