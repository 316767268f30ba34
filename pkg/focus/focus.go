// Package focus implements the Focus Coordinator (spec §4.I): decides the
// active focus tags after each completed session given recent performance.
package focus

import (
	"sort"

	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
)

// Action is the policy decision the Lifecycle Manager applies to
// SessionState.current_focus_tags and performance_level.
type Action string

const (
	ActionKeep   Action = "keep"
	ActionExpand Action = "expand"
	ActionNarrow Action = "narrow"
	ActionRotate Action = "rotate"
)

// Decision is the Focus Coordinator's output.
type Decision struct {
	Action           Action
	NextFocusTags    []string
	PerformanceLevel models.PerformanceLevel
}

const (
	onboardingSessionThreshold = 3
	expandAccuracyThreshold    = 0.8
	narrowAccuracyThreshold    = 0.5
	maxFocusTags               = 5
)

// Decide applies spec §4.I's authoritative policy. tierTags is the user's
// full allowed-tag tier (current_allowed_tags); mastery is the latest Tag
// Mastery snapshot, used to rank unmastered tags by ascending mastery.
// accuracy is the just-completed session's accuracy; state.LastPerformance
// still holds the previous session's accuracy at call time, since the
// caller only overwrites it after Decide returns.
func Decide(state *models.SessionState, tierTags []string, mastery map[string]*models.TagMastery, accuracy float64) Decision {
	if state.NumSessionsCompleted < onboardingSessionThreshold {
		tag := weakestUnmasteredTag(tierTags, mastery)
		var tags []string
		if tag != "" {
			tags = []string{tag}
		}
		return Decision{Action: ActionKeep, NextFocusTags: tags, PerformanceLevel: models.PerformanceOnboarding}
	}

	prevAccuracy := state.LastPerformance.Accuracy

	if accuracy >= expandAccuracyThreshold && accuracy >= prevAccuracy {
		next := expandFocusTags(state.CurrentFocusTags, tierTags, mastery)
		return Decision{Action: ActionExpand, NextFocusTags: next, PerformanceLevel: models.PerformanceStrong}
	}

	if accuracy < narrowAccuracyThreshold {
		return Decision{
			Action:           ActionNarrow,
			NextFocusTags:    []string{weakestFocusTag(state.CurrentFocusTags, mastery)},
			PerformanceLevel: models.PerformanceStruggling,
		}
	}

	return Decision{Action: ActionKeep, NextFocusTags: state.CurrentFocusTags, PerformanceLevel: models.PerformanceSteady}
}

// weakestUnmasteredTag returns the tier tag with the lowest total_attempts
// (treating a tag with no TagMastery record as the weakest of all), or ""
// if tierTags is empty.
func weakestUnmasteredTag(tierTags []string, mastery map[string]*models.TagMastery) string {
	var best string
	bestAttempts := -1
	for _, t := range tierTags {
		m, ok := mastery[t]
		if ok && m.Mastered {
			continue
		}
		attempts := 0
		if ok {
			attempts = m.TotalAttempts
		}
		if bestAttempts == -1 || attempts < bestAttempts {
			best = t
			bestAttempts = attempts
		}
	}
	return best
}

// expandFocusTags adds the next unmastered tier tag not already focused,
// capped at maxFocusTags.
func expandFocusTags(current, tierTags []string, mastery map[string]*models.TagMastery) []string {
	out := append([]string(nil), current...)
	if len(out) >= maxFocusTags {
		return out[:maxFocusTags]
	}

	focused := make(map[string]struct{}, len(out))
	for _, t := range out {
		focused[t] = struct{}{}
	}

	candidates := append([]string(nil), tierTags...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return attemptsFor(candidates[i], mastery) < attemptsFor(candidates[j], mastery)
	})

	for _, t := range candidates {
		if len(out) >= maxFocusTags {
			break
		}
		if _, already := focused[t]; already {
			continue
		}
		if m, ok := mastery[t]; ok && m.Mastered {
			continue
		}
		out = append(out, t)
		focused[t] = struct{}{}
		break // "add the next unmastered tier tag" — one per session
	}
	return out
}

func attemptsFor(tag string, mastery map[string]*models.TagMastery) int {
	if m, ok := mastery[tag]; ok {
		return m.TotalAttempts
	}
	return 0
}

// weakestFocusTag returns the current focus tag with the lowest success
// rate, falling back to the first focus tag if mastery is unavailable.
func weakestFocusTag(current []string, mastery map[string]*models.TagMastery) string {
	if len(current) == 0 {
		return ""
	}
	best := current[0]
	bestRate := successRateFor(best, mastery)
	for _, t := range current[1:] {
		rate := successRateFor(t, mastery)
		if rate < bestRate {
			best = t
			bestRate = rate
		}
	}
	return best
}

func successRateFor(tag string, mastery map[string]*models.TagMastery) float64 {
	if m, ok := mastery[tag]; ok {
		return m.SuccessRate
	}
	return 0
}
