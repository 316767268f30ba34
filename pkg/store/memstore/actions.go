package memstore

import "context"

type actionView struct{ base }

func (v actionView) Append(_ context.Context, action string, payload map[string]any) error {
	v.withWrite(func(d *state) {
		d.actions = append(d.actions, actionRecord{Action: action, Payload: payload})
	})
	return nil
}
