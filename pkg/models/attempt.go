package models

import "time"

// Attempt is an append-only record of a single solve attempt (spec §3).
// Attempts are immutable once written; ordering by AttemptDate is authoritative.
type Attempt struct {
	AttemptID         string    `json:"attempt_id"`
	ProblemID         string    `json:"problem_id"`
	SessionID         *string   `json:"session_id,omitempty"` // nullable: ad-hoc attempts allowed
	AttemptDate       time.Time `json:"attempt_date"`
	Success           bool      `json:"success"`
	TimeSpent         int       `json:"time_spent"` // seconds
	HintsUsed         int       `json:"hints_used"`
	BoxLevelAtAttempt int       `json:"box_level_at_attempt"`
	Comments          string    `json:"comments,omitempty"`
}

// AddAttemptRequest is the input to the Attempt Engine's AddAttempt operation.
// Exactly one of ProblemID / LeetCodeID must identify the problem.
type AddAttemptRequest struct {
	ProblemID  string
	LeetCodeID int
	SessionID  *string
	Success    bool
	TimeSpent  int
	HintsUsed  int
	Comments   string
}
