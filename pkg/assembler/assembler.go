// Package assembler implements the Session Assembler (spec §4.G): it
// produces the problem list for a new session under the review/new ratio,
// difficulty cap, and focus tags, falling back deterministically when the
// catalogue can't fill the requested length.
package assembler

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/codeready-toolchain/practice-scheduler/pkg/clock"
	"github.com/codeready-toolchain/practice-scheduler/pkg/mastery"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/scheduler"
)

// catalogue is the read-side surface the Assembler consumes; satisfied by
// *catalogue.Catalogue and kept to the two methods the Assembler calls.
type catalogue interface {
	ScanAll(ctx context.Context) ([]*models.Problem, error)
	FetchAdditional(ctx context.Context, n int, exclude map[int]struct{}, allowedTags []string, cap models.Difficulty) ([]*models.Problem, error)
}

// reviewScheduler is the narrow surface of *scheduler.Scheduler the
// Assembler drives.
type reviewScheduler interface {
	DailyReviewSchedule(ctx context.Context, budget int, learning scheduler.LearningState) []*models.Problem
}

// Settings is the subset of configuration the Assembler needs (spec §6).
type Settings struct {
	SessionLength       int
	NumberOfNewProblems int
	ReviewRatio         int // percent, overrides the 0.4 constant; 0..80 step 10
	MinReviewRatio      int // percent floor; below this, log a warning only
	DifficultyCap       models.Difficulty
	AllowedTags         []string
}

// Assembled is one problem placed into a session, tagged with why the
// Assembler picked it (spec §4.G step 6).
type Assembled struct {
	Problem *models.Problem
	Reason  models.SelectionReason
}

// Assembler is the Session Assembler.
type Assembler struct {
	catalogue catalogue
	scheduler reviewScheduler
	clock     clock.Clock
	log       *slog.Logger
}

// New returns a Session Assembler over the given Catalogue and Review
// Scheduler.
func New(cat catalogue, sched reviewScheduler, c clock.Clock, log *slog.Logger) *Assembler {
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{catalogue: cat, scheduler: sched, clock: c, log: log}
}

// Assemble builds the ordered problem list for a new session (spec §4.G).
// excludeIDs is the set of LeetCode IDs already "in flight" in another
// active session; learning carries the tier/unmastered-tag state the
// Review Scheduler needs.
func (a *Assembler) Assemble(ctx context.Context, settings Settings, excludeIDs map[int]struct{}, learning scheduler.LearningState) ([]Assembled, error) {
	if excludeIDs == nil {
		excludeIDs = map[int]struct{}{}
	}

	reviewTarget := (settings.SessionLength * settings.ReviewRatio) / 100

	review := a.scheduler.DailyReviewSchedule(ctx, reviewTarget, learning)

	picked := make(map[string]struct{}, settings.SessionLength)
	var out []Assembled
	addAll := func(problems []*models.Problem, reason models.SelectionReason) {
		for _, p := range problems {
			if len(out) >= settings.SessionLength {
				return
			}
			if _, already := picked[p.ProblemID]; already {
				continue
			}
			picked[p.ProblemID] = struct{}{}
			out = append(out, Assembled{Problem: p, Reason: reason})
		}
	}

	addAll(review, models.ReasonReview)

	newNeeded := settings.SessionLength - len(out)
	if newNeeded > 0 {
		newProblems, err := a.catalogue.FetchAdditional(ctx, newNeeded, excludeIDs, settings.AllowedTags, settings.DifficultyCap)
		if err != nil {
			a.log.Warn("assembler: fetchAdditional failed, relying on fallback", "error", err)
		} else {
			addAll(newProblems, models.ReasonExpansion)
		}
	}

	if len(out) < settings.SessionLength {
		fallback, err := a.fallbackCandidates(ctx, excludeIDs, picked)
		if err != nil {
			a.log.Warn("assembler: fallback scan failed", "error", err)
		} else {
			addAll(fallback, models.ReasonFallback)
		}
	}

	if settings.SessionLength > 0 {
		actualReviewCount := 0
		for _, e := range out {
			if e.Reason == models.ReasonReview {
				actualReviewCount++
			}
		}
		actualRatio := (actualReviewCount * 100) / settings.SessionLength
		if actualRatio < settings.MinReviewRatio {
			a.log.Warn("assembler: actual review ratio below floor",
				"actual_ratio", actualRatio, "min_review_ratio", settings.MinReviewRatio)
		}
	}

	if len(out) > settings.SessionLength {
		out = out[:settings.SessionLength]
	}
	return out, nil
}

// fallbackCandidates returns every catalogued problem not excluded and not
// already picked, sorted by (review_schedule asc, attempt_stats.total asc,
// decay_score desc) per spec §4.G step 4, using the same decay formula as
// the Review Scheduler and Tag Mastery Engine (spec §4.E, mastery.DecayScore).
func (a *Assembler) fallbackCandidates(ctx context.Context, excludeIDs map[int]struct{}, picked map[string]struct{}) ([]*models.Problem, error) {
	all, err := a.catalogue.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	var out []*models.Problem
	for _, p := range all {
		if _, excluded := excludeIDs[p.LeetCodeID]; excluded {
			continue
		}
		if _, already := picked[p.ProblemID]; already {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i], out[j]
		if !pi.ReviewSchedule.Equal(pj.ReviewSchedule) {
			return pi.ReviewSchedule.Before(pj.ReviewSchedule)
		}
		if pi.AttemptStats.Total != pj.AttemptStats.Total {
			return pi.AttemptStats.Total < pj.AttemptStats.Total
		}
		return a.decayScore(pi) > a.decayScore(pj)
	})
	return out, nil
}

func (a *Assembler) decayScore(p *models.Problem) float64 {
	var lastAttempt time.Time
	if p.LastAttemptDate != nil {
		lastAttempt = *p.LastAttemptDate
	}
	return mastery.DecayScore(a.clock.Now(), lastAttempt)
}

// ExcludeIDsFromSessions returns the set of LeetCode IDs "in flight" across
// the given in-progress sessions, for the caller (Lifecycle Manager) to pass
// as Assemble's excludeIDs.
func ExcludeIDsFromSessions(sessions []*models.Session) map[int]struct{} {
	out := map[int]struct{}{}
	for _, s := range sessions {
		for _, p := range s.Problems {
			out[p.LeetCodeID] = struct{}{}
		}
	}
	return out
}
