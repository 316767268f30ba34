// Package scheduler implements the Review Scheduler (spec §4.F): decides
// which problems are due today under tier and tag constraints.
package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/codeready-toolchain/practice-scheduler/pkg/clock"
	"github.com/codeready-toolchain/practice-scheduler/pkg/leitner"
	"github.com/codeready-toolchain/practice-scheduler/pkg/mastery"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store"
)

// LearningState is the subset of SessionState the Scheduler consumes:
// current_allowed_tags (the "tier" gate) and the ordered unmastered tags
// driving the tag-matched pass.
type LearningState struct {
	TierTags       []string
	UnmasteredTags []string
}

// Scheduler is the Review Scheduler.
type Scheduler struct {
	store store.Store
	clock clock.Clock
	log   *slog.Logger
}

// New returns a Review Scheduler backed by the given Store Port and Clock
// Port.
func New(s store.Store, c clock.Clock, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{store: s, clock: c, log: log}
}

// DailyReviewSchedule selects up to budget due problems under the tier gate
// and tag-matched/filler passes of spec §4.F. On any store error it returns
// an empty list rather than a partial one — the Assembler's fallback pass
// compensates.
func (s *Scheduler) DailyReviewSchedule(ctx context.Context, budget int, learning LearningState) []*models.Problem {
	all, err := s.store.Problems().ScanAll(ctx)
	if err != nil {
		s.log.Warn("review scheduler: scan failed, returning empty list", "error", err)
		return nil
	}

	now := s.clock.Now()
	due := make([]*models.Problem, 0, len(all))
	for _, p := range all {
		if !p.AllTagsIn(learning.TierTags) {
			continue
		}
		if isDue(p, now) {
			due = append(due, p)
		}
	}

	sort.SliceStable(due, func(i, j int) bool { return dueLess(due[i], due[j], now) })

	picked := make(map[string]struct{})
	var out []*models.Problem

	// Tag-matched pass: one problem per unmastered tag, in order.
	for _, tag := range learning.UnmasteredTags {
		if len(out) >= budget {
			break
		}
		for _, p := range due {
			if _, already := picked[p.ProblemID]; already {
				continue
			}
			if !p.HasTag(tag) {
				continue
			}
			out = append(out, p)
			picked[p.ProblemID] = struct{}{}
			break
		}
	}

	// Filler pass: remaining due problems, already sorted by tie-break order.
	for _, p := range due {
		if len(out) >= budget {
			break
		}
		if _, already := picked[p.ProblemID]; already {
			continue
		}
		out = append(out, p)
		picked[p.ProblemID] = struct{}{}
	}

	if len(out) > budget {
		out = out[:budget]
	}
	return out
}

// isDue implements spec §4.F step 1: review_schedule has passed, or the
// problem was not recently attempted under the relaxed Leitner window.
func isDue(p *models.Problem, now time.Time) bool {
	if !p.ReviewSchedule.After(now) {
		return true
	}
	var lastAttempt time.Time
	if p.LastAttemptDate != nil {
		lastAttempt = *p.LastAttemptDate
	}
	return !leitner.RecentlyAttempted(now, lastAttempt, p.BoxLevel, true)
}

// dueLess implements the tie-break order: earlier review_schedule wins;
// within equal dates, lower attempt_stats.total wins; finally higher
// decay-weighted score wins.
func dueLess(a, b *models.Problem, now time.Time) bool {
	if !a.ReviewSchedule.Equal(b.ReviewSchedule) {
		return a.ReviewSchedule.Before(b.ReviewSchedule)
	}
	if a.AttemptStats.Total != b.AttemptStats.Total {
		return a.AttemptStats.Total < b.AttemptStats.Total
	}
	return decayWeightedScore(a, now) > decayWeightedScore(b, now)
}

// decayWeightedScore combines recency decay with historical success rate
// into the scheduler's final tie-break (spec §4.F). now comes from the
// Clock Port so ties resolve deterministically under a frozen clock.
func decayWeightedScore(p *models.Problem, now time.Time) float64 {
	var lastAttempt time.Time
	if p.LastAttemptDate != nil {
		lastAttempt = *p.LastAttemptDate
	}
	return mastery.DecayScore(now, lastAttempt) * (1 - p.AttemptStats.SuccessRate())
}
