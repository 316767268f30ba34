package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/practice-scheduler/pkg/assembler"
	"github.com/codeready-toolchain/practice-scheduler/pkg/attempt"
	"github.com/codeready-toolchain/practice-scheduler/pkg/catalogue"
	"github.com/codeready-toolchain/practice-scheduler/pkg/clock"
	"github.com/codeready-toolchain/practice-scheduler/pkg/lifecycle"
	"github.com/codeready-toolchain/practice-scheduler/pkg/mastery"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/scheduler"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store/memstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	fc := clock.NewFrozen(time.Now())
	cat := catalogue.New(s)
	sched := scheduler.New(s, fc, nil)
	asm := assembler.New(cat, sched, fc, nil)
	me := mastery.New(s, fc)
	lm := lifecycle.New(s, fc, asm, me, nil)
	ae := attempt.New(s, fc, nil)
	return NewServer(s, ae, lm, cat, me, sched, nil), s
}

func TestHealthHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetOrCreateSessionHandler(t *testing.T) {
	srv, s := newTestServer(t)
	require.NoError(t, s.Problems().Put(context.Background(), &models.Problem{ProblemID: "p1", LeetCodeID: 1, Tags: []string{"Array"}, Difficulty: models.DifficultyEasy}))

	body, _ := json.Marshal(map[string]string{"session_type": "standard"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Session)
	assert.Equal(t, models.StatusInProgress, resp.Session.Status)
}

func TestGetOrCreateSessionHandler_RejectsInvalidType(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"session_type": "bogus"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSessionHandler_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/does-not-exist", nil)
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Session)
}

func TestAddAttemptHandler(t *testing.T) {
	srv, s := newTestServer(t)
	require.NoError(t, s.Problems().Put(context.Background(), &models.Problem{ProblemID: "p1", LeetCodeID: 1, Tags: []string{"Array"}, Difficulty: models.DifficultyEasy, BoxLevel: 1}))

	body, _ := json.Marshal(AddAttemptRequest{ProblemID: "p1", Success: true, TimeSpent: 120})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/attempts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp AttemptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Attempt.Success)
}
