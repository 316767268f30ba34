package api

import "github.com/codeready-toolchain/practice-scheduler/pkg/models"

// AttemptResponse wraps the Attempt Engine's result for addAttempt.
type AttemptResponse struct {
	Attempt        *models.Attempt `json:"attempt"`
	CompletionHint bool            `json:"completion_hint"`
}

// SessionResponse wraps a Session for every session-shaped endpoint. A nil
// Session marshals to `{"session": null}`, matching spec §6's "Y | null"
// result shapes for resumeSession/getOrCreateSession/refreshSession.
type SessionResponse struct {
	Session *models.Session `json:"session"`
}

// CheckCompletionResponse is returned by checkAndCompleteSession: Remaining
// is empty both when the session is already completed and when this call
// just completed it (spec §4.H).
type CheckCompletionResponse struct {
	Found     bool                    `json:"found"`
	Remaining []models.SessionProblem `json:"remaining"`
}

// TagMasteryResponse wraps the Tag Mastery Engine's snapshot.
type TagMasteryResponse struct {
	Mastery map[string]*models.TagMastery `json:"mastery"`
}

// ProblemsByBoxLevelResponse wraps the Problem Catalogue's box-level
// distribution.
type ProblemsByBoxLevelResponse struct {
	Counts map[int]int `json:"counts"`
}

// ReviewScheduleResponse wraps the Review Scheduler's due list.
type ReviewScheduleResponse struct {
	Problems []*models.Problem `json:"problems"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Store   any    `json:"store,omitempty"`
}
