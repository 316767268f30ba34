package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/scheduler"
)

// addAttemptHandler handles POST /api/v1/attempts (spec §6 addAttempt).
func (s *Server) addAttemptHandler(c *gin.Context) {
	var req AddAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: ErrorBody{Kind: "TypeMismatch", Message: err.Error()}})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	result, err := s.attempt.AddAttempt(ctx, models.AddAttemptRequest{
		ProblemID:  req.ProblemID,
		LeetCodeID: req.LeetCodeID,
		SessionID:  req.SessionID,
		Success:    req.Success,
		TimeSpent:  req.TimeSpent,
		HintsUsed:  req.HintsUsed,
		Comments:   req.Comments,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, AttemptResponse{Attempt: result.Attempt, CompletionHint: result.CompletionHint})
}

// getSessionHandler handles GET /api/v1/sessions/:id (spec §6 getSession).
func (s *Server) getSessionHandler(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	session, err := s.lifecycle.GetSession(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: session})
}

// resumeSessionHandler handles POST /api/v1/sessions/resume (spec §6
// resumeSession(type?)).
func (s *Server) resumeSessionHandler(c *gin.Context) {
	t, ok := bindSessionType(c, c.Query("session_type"))
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	session, err := s.lifecycle.ResumeSession(ctx, t)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: session})
}

// getOrCreateSessionHandler handles POST /api/v1/sessions (spec §6
// getOrCreateSession(type)).
func (s *Server) getOrCreateSessionHandler(c *gin.Context) {
	var body struct {
		SessionType string `json:"session_type"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: ErrorBody{Kind: "TypeMismatch", Message: err.Error()}})
		return
	}
	t, ok := bindSessionType(c, body.SessionType)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	session, err := s.lifecycle.GetOrCreateSession(ctx, t)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: session})
}

// refreshSessionHandler handles POST /api/v1/sessions/refresh (spec §6
// refreshSession(type, forceNew)).
func (s *Server) refreshSessionHandler(c *gin.Context) {
	var req RefreshSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: ErrorBody{Kind: "TypeMismatch", Message: err.Error()}})
		return
	}
	t, ok := bindSessionType(c, req.SessionType)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	session, err := s.lifecycle.RefreshSession(ctx, t, req.ForceNew)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: session})
}

// checkAndCompleteSessionHandler handles POST /api/v1/sessions/:id/complete
// (spec §6 checkAndCompleteSession).
func (s *Server) checkAndCompleteSessionHandler(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	remaining, found, err := s.lifecycle.CheckAndCompleteSession(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CheckCompletionResponse{Found: found, Remaining: remaining})
}

// skipProblemHandler handles POST /api/v1/sessions/:id/skip (spec §6
// skipProblem(session_id, leetcode_id, replacement?)).
func (s *Server) skipProblemHandler(c *gin.Context) {
	var req SkipProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: ErrorBody{Kind: "TypeMismatch", Message: err.Error()}})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	var replacement *models.Problem
	if req.ReplacementLeetCode != nil {
		p, err := s.catalogue.ByLeetCodeID(ctx, *req.ReplacementLeetCode)
		if err != nil {
			writeError(c, err)
			return
		}
		replacement = p
	}

	session, err := s.lifecycle.SkipProblem(ctx, c.Param("id"), req.LeetCodeID, replacement)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: session})
}

// getTagMasteryHandler handles GET /api/v1/tag-mastery (spec §6
// getTagMastery).
func (s *Server) getTagMasteryHandler(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	snapshot, err := s.mastery.Snapshot(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, TagMasteryResponse{Mastery: snapshot})
}

// getProblemsByBoxLevelHandler handles GET /api/v1/problems/by-box-level
// (spec §6 getProblemsByBoxLevel).
func (s *Server) getProblemsByBoxLevelHandler(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	counts, err := s.catalogue.CountByBoxLevel(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProblemsByBoxLevelResponse{Counts: counts})
}

// getDailyReviewScheduleHandler handles GET /api/v1/review-schedule?n=..
// (spec §6 getDailyReviewSchedule(n)).
func (s *Server) getDailyReviewScheduleHandler(c *gin.Context) {
	budget := 5
	if raw := c.Query("n"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			budget = n
		}
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	var tierTags []string
	if state, err := s.store.SessionState().Get(ctx); err == nil {
		tierTags = state.CurrentAllowedTags
	}

	problems := s.scheduler.DailyReviewSchedule(ctx, budget, scheduler.LearningState{TierTags: tierTags})
	c.JSON(http.StatusOK, ReviewScheduleResponse{Problems: problems})
}

func bindSessionType(c *gin.Context, raw string) (models.SessionType, bool) {
	t := models.SessionType(raw)
	if !t.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: ErrorBody{Kind: "TypeMismatch", Message: "invalid or missing session_type"}})
		return "", false
	}
	return t, true
}
