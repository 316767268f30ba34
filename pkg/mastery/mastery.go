// Package mastery implements the Tag Mastery Engine (spec §4.E): derives
// per-tag mastery from attempts and problems, and computes deltas between
// two snapshots. Mastery is fully recomputable and persisted only as a
// cache — the math here is pure aside from the store reads that feed it.
package mastery

import (
	"context"
	"math"
	"time"

	"github.com/codeready-toolchain/practice-scheduler/pkg/clock"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store"
)

const (
	masteryMinAttempts   = 10
	masterySuccessRate   = 0.85
	decayHalfLifeDays    = 30.0
	freshnessReopenBelow = 0.5
)

// Engine is the Tag Mastery Engine.
type Engine struct {
	store store.Store
	clock clock.Clock
}

// New returns a Tag Mastery Engine backed by the given Store Port and Clock
// Port.
func New(s store.Store, c clock.Clock) *Engine {
	return &Engine{store: s, clock: c}
}

// Snapshot folds every attempt and problem into a per-tag mastery view
// (spec §4.E definitions), without persisting it.
func (e *Engine) Snapshot(ctx context.Context) (map[string]*models.TagMastery, error) {
	problems, err := e.store.Problems().ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	attempts, err := e.store.Attempts().All(ctx)
	if err != nil {
		return nil, err
	}

	problemsByID := make(map[string]*models.Problem, len(problems))
	for _, p := range problems {
		problemsByID[p.ProblemID] = p
	}

	type agg struct {
		total, successful int
		lastAttempt       time.Time
	}
	byTag := make(map[string]*agg)

	for _, a := range attempts {
		p, ok := problemsByID[a.ProblemID]
		if !ok {
			continue
		}
		for _, tag := range p.Tags {
			ag, ok := byTag[tag]
			if !ok {
				ag = &agg{}
				byTag[tag] = ag
			}
			ag.total++
			if a.Success {
				ag.successful++
			}
			if a.AttemptDate.After(ag.lastAttempt) {
				ag.lastAttempt = a.AttemptDate
			}
		}
	}

	now := e.clock.Now()
	out := make(map[string]*models.TagMastery, len(byTag))
	for tag, ag := range byTag {
		successRate := 0.0
		if ag.total > 0 {
			successRate = float64(ag.successful) / float64(ag.total)
		}
		mastered := ag.total >= masteryMinAttempts && successRate >= masterySuccessRate
		decay := DecayScore(now, ag.lastAttempt)

		out[tag] = &models.TagMastery{
			Tag:                tag,
			TotalAttempts:      ag.total,
			SuccessfulAttempts: ag.successful,
			SuccessRate:        successRate,
			Mastered:           mastered,
			DecayScore:         decay,
			LastRecomputedAt:   now,
		}
	}
	return out, nil
}

// DecayScore is exp(-days_since_last_attempt/30) clamped to [0,1] (spec
// §4.E, the single fixed formula per DESIGN.md's Open Question decision —
// every decay-weighted tie-break in the tree, including the Review
// Scheduler's and the Assembler's fallback pass, shares this one formula).
func DecayScore(now, lastAttempt time.Time) float64 {
	if lastAttempt.IsZero() {
		return 0
	}
	days := now.Sub(lastAttempt).Hours() / 24
	if days < 0 {
		days = 0
	}
	score := math.Exp(-days / decayHalfLifeDays)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// IsReopenedByFreshness reports whether a tag's decay has dropped low enough
// to reopen review eligibility even though it's nominally mastered.
func IsReopenedByFreshness(m *models.TagMastery) bool {
	return m.Mastered && m.DecayScore < freshnessReopenBelow
}

// Recompute computes a fresh Snapshot and persists every entry to the
// tag_mastery cache.
func (e *Engine) Recompute(ctx context.Context) (map[string]*models.TagMastery, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range snap {
		if err := e.store.TagMastery().Put(ctx, m); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// Deltas computes the change in each tag's mastery between two snapshots
// (spec §4.E), dropping no-op entries (zero strength delta, negligible
// decay delta, and unchanged mastery).
func Deltas(pre, post map[string]*models.TagMastery) []models.MasteryDelta {
	var out []models.MasteryDelta
	for tag, p := range post {
		prev, existed := pre[tag]
		if !existed {
			out = append(out, models.MasteryDelta{
				Tag:           tag,
				Type:          models.DeltaNew,
				StrengthDelta: p.TotalAttempts,
				DecayDelta:    p.DecayScore - 1.0,
			})
			continue
		}

		strengthDelta := p.TotalAttempts - prev.TotalAttempts
		decayDelta := p.DecayScore - prev.DecayScore
		masteredChanged := prev.Mastered != p.Mastered

		if strengthDelta == 0 && math.Abs(decayDelta) < 1e-4 && !masteredChanged {
			continue
		}

		out = append(out, models.MasteryDelta{
			Tag:             tag,
			Type:            models.DeltaExisting,
			StrengthDelta:   strengthDelta,
			DecayDelta:      decayDelta,
			MasteredChanged: masteredChanged,
		})
	}
	return out
}
