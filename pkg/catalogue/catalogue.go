// Package catalogue is the read-side view of all known problems (spec
// §4.C): tags, difficulty, box level, and review schedule. Its only write
// path, UpsertLearningState, is invoked exclusively by the Attempt Engine.
package catalogue

import (
	"context"
	"sort"

	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store"
)

// Catalogue is a thin orchestration layer over the Store Port's
// ProblemStore.
type Catalogue struct {
	store store.Store
}

// New returns a Catalogue backed by the given Store Port.
func New(s store.Store) *Catalogue {
	return &Catalogue{store: s}
}

// Get returns a single problem by its internal id.
func (c *Catalogue) Get(ctx context.Context, problemID string) (*models.Problem, error) {
	return c.store.Problems().Get(ctx, problemID)
}

// ByLeetCodeID returns a single problem by its external LeetCode id.
func (c *Catalogue) ByLeetCodeID(ctx context.Context, leetCodeID int) (*models.Problem, error) {
	return c.store.Problems().GetByLeetCodeID(ctx, leetCodeID)
}

// ScanAll returns every known problem.
func (c *Catalogue) ScanAll(ctx context.Context) ([]*models.Problem, error) {
	return c.store.Problems().ScanAll(ctx)
}

// CountByBoxLevel returns the distribution of problems across Leitner box
// levels, consumed by the getProblemsByBoxLevel message-surface operation.
func (c *Catalogue) CountByBoxLevel(ctx context.Context) (map[int]int, error) {
	return c.store.Problems().CountByBoxLevel(ctx)
}

// AllTags returns the deduplicated, sorted set of tags across every known
// problem, used to seed SessionState.CurrentAllowedTags (the "tier," spec
// §9) at onboarding.
func (c *Catalogue) AllTags(ctx context.Context) ([]string, error) {
	all, err := c.store.Problems().ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, p := range all {
		for _, t := range p.Tags {
			seen[t] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}

// Put ingests or replaces a problem's full record. Used outside the core's
// request/response surface (catalogue seeding), not by any spec §6 message.
func (c *Catalogue) Put(ctx context.Context, p *models.Problem) error {
	return c.store.Problems().Put(ctx, p)
}

// FetchAdditional returns problems the Assembler's "new" pass can add: never
// attempted, difficulty at or below cap, tagged with at least one allowed
// tag, excluding the given LeetCode ids, capped at n (spec §4.G step 3).
func (c *Catalogue) FetchAdditional(ctx context.Context, n int, exclude map[int]struct{}, allowedTags []string, cap models.Difficulty) ([]*models.Problem, error) {
	all, err := c.store.Problems().ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	var out []*models.Problem
	for _, p := range all {
		if len(out) >= n {
			break
		}
		if _, excluded := exclude[p.LeetCodeID]; excluded {
			continue
		}
		if p.AttemptStats.Total > 0 {
			continue
		}
		if !p.Difficulty.LessEq(cap) {
			continue
		}
		if !p.HasAnyTag(allowedTags) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
