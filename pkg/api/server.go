// Package api exposes the core's request/response message surface over
// HTTP, translating each message-surface operation into a gin handler
// wired directly around the service layer, one route per operation.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/practice-scheduler/pkg/attempt"
	"github.com/codeready-toolchain/practice-scheduler/pkg/catalogue"
	"github.com/codeready-toolchain/practice-scheduler/pkg/lifecycle"
	"github.com/codeready-toolchain/practice-scheduler/pkg/mastery"
	"github.com/codeready-toolchain/practice-scheduler/pkg/scheduler"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store/pgstore"
	"github.com/codeready-toolchain/practice-scheduler/pkg/version"
)

// requestTimeout is the default deadline applied to every handler before it
// calls into the core (spec §5 Cancellation: 10s for DB-bound paths).
const requestTimeout = 10 * time.Second

// Server is the HTTP surface over the core's components.
type Server struct {
	router    *gin.Engine
	store     store.Store
	attempt   *attempt.Engine
	lifecycle *lifecycle.Manager
	catalogue *catalogue.Catalogue
	mastery   *mastery.Engine
	scheduler *scheduler.Scheduler
	log       *slog.Logger
}

// NewServer wires every core component into a gin router.
func NewServer(
	s store.Store,
	attemptEngine *attempt.Engine,
	lifecycleManager *lifecycle.Manager,
	cat *catalogue.Catalogue,
	masteryEngine *mastery.Engine,
	sched *scheduler.Scheduler,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}
	srv := &Server{
		router:    gin.Default(),
		store:     s,
		attempt:   attemptEngine,
		lifecycle: lifecycleManager,
		catalogue: cat,
		mastery:   masteryEngine,
		scheduler: sched,
		log:       log,
	}
	srv.setupRoutes()
	return srv
}

// Router exposes the underlying gin.Engine, e.g. for http.Server wiring or
// httptest.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	v1 := s.router.Group("/api/v1")
	v1.POST("/attempts", s.addAttemptHandler)

	v1.GET("/sessions/:id", s.getSessionHandler)
	v1.POST("/sessions/resume", s.resumeSessionHandler)
	v1.POST("/sessions", s.getOrCreateSessionHandler)
	v1.POST("/sessions/refresh", s.refreshSessionHandler)
	v1.POST("/sessions/:id/complete", s.checkAndCompleteSessionHandler)
	v1.POST("/sessions/:id/skip", s.skipProblemHandler)

	v1.GET("/tag-mastery", s.getTagMasteryHandler)
	v1.GET("/problems/by-box-level", s.getProblemsByBoxLevelHandler)
	v1.GET("/review-schedule", s.getDailyReviewScheduleHandler)
}

func withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func (s *Server) healthHandler(c *gin.Context) {
	resp := HealthResponse{Status: "healthy", Version: version.Full()}
	if pg, ok := s.store.(*pgstore.Store); ok {
		ctx, cancel := withTimeout(c)
		defer cancel()
		if stat, err := pg.Health(ctx); err == nil {
			resp.Store = stat
		} else {
			resp.Status = "degraded"
		}
	}
	c.JSON(http.StatusOK, resp)
}
