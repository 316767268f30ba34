package config

import "github.com/codeready-toolchain/practice-scheduler/pkg/models"

// Settings holds the tunable knobs recognized by the scheduler (spec §6).
type Settings struct {
	// SessionLength is the total number of problems per session (3..10).
	SessionLength int `yaml:"session_length,omitempty"`

	// NumberOfNewProblems caps the "new" portion of a session (0..session_length).
	NumberOfNewProblems int `yaml:"number_of_new_problems,omitempty"`

	// FlexibleSchedule is loaded and validated only; no component reads it,
	// and the Focus Coordinator adapts focus tags on every completion.
	FlexibleSchedule bool `yaml:"flexible_schedule"`

	// ReviewRatio is the review share of a session in percent (0..80, step 10).
	// It is loaded and validated only; the Lifecycle Manager hands the
	// Assembler a fixed 40 and does not read this setting.
	ReviewRatio int `yaml:"review_ratio,omitempty"`

	// DifficultyCap is the upper bound on problem difficulty passed to the Assembler.
	DifficultyCap models.Difficulty `yaml:"difficulty_cap,omitempty"`

	// MinReviewRatio is the review-share floor in percent (0..60). It is loaded
	// and validated only; the Lifecycle Manager hands the Assembler a fixed 30.
	MinReviewRatio int `yaml:"min_review_ratio,omitempty"`
}

// DefaultSettings returns the built-in defaults from spec §6.
func DefaultSettings() *Settings {
	return &Settings{
		SessionLength:       5,
		NumberOfNewProblems: 3,
		FlexibleSchedule:    true,
		ReviewRatio:         40,
		DifficultyCap:       models.DifficultyHard,
		MinReviewRatio:      30,
	}
}
