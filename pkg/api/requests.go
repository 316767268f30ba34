package api

// AddAttemptRequest is the JSON body for POST /api/v1/attempts.
type AddAttemptRequest struct {
	ProblemID  string  `json:"problem_id"`
	LeetCodeID int     `json:"leetcode_id"`
	SessionID  *string `json:"session_id,omitempty"`
	Success    bool    `json:"success"`
	TimeSpent  int     `json:"time_spent"`
	HintsUsed  int     `json:"hints_used"`
	Comments   string  `json:"comments,omitempty"`
}

// RefreshSessionRequest is the JSON body for POST
// /api/v1/sessions/refresh.
type RefreshSessionRequest struct {
	SessionType string `json:"session_type"`
	ForceNew    bool   `json:"force_new"`
}

// SkipProblemRequest is the JSON body for POST
// /api/v1/sessions/:id/skip.
type SkipProblemRequest struct {
	LeetCodeID          int  `json:"leetcode_id"`
	ReplacementLeetCode *int `json:"replacement_leetcode_id,omitempty"`
}
