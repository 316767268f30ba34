// Package leitner holds the Leitner spaced-repetition rule (spec §4.D),
// shared by the Attempt Engine (which applies it) and the Review Scheduler
// (which needs it to decide "recently attempted").
package leitner

import "time"

// intervalDays are the review intervals in days, indexed by box level
// (index 0 is unused; box levels are 1-indexed).
var intervalDays = [8]int{-1, 0, 1, 2, 4, 7, 14, 30}

// IntervalDays returns the Leitner interval, in days, for boxLevel, clamping
// out-of-range levels to [1,7].
func IntervalDays(boxLevel int) int {
	if boxLevel < 1 {
		boxLevel = 1
	}
	if boxLevel > 7 {
		boxLevel = 7
	}
	return intervalDays[boxLevel]
}

// NextBoxLevel applies the promotion/demotion rule: success promotes capped
// at 7, failure demotes floored at 1.
func NextBoxLevel(current int, success bool) int {
	if success {
		if current+1 > 7 {
			return 7
		}
		return current + 1
	}
	if current-1 < 1 {
		return 1
	}
	return current - 1
}

// RecentlyAttempted reports whether a problem last attempted at lastAttempt
// (zero value meaning never) is still within its Leitner window as of now.
// relaxed uses half the interval; strict uses the full interval (spec
// §4.D, consumed by the Review Scheduler's "relaxed" due-date partition).
func RecentlyAttempted(now, lastAttempt time.Time, boxLevel int, relaxed bool) bool {
	if lastAttempt.IsZero() {
		return false
	}
	age := now.Sub(lastAttempt)
	window := time.Duration(IntervalDays(boxLevel)) * 24 * time.Hour
	if relaxed {
		window /= 2
	}
	return age < window
}
