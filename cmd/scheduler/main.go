// Command scheduler runs the adaptive practice scheduler's HTTP API:
// it loads configuration, wires a Store Port (in-memory or Postgres), and
// serves the core's message surface until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/practice-scheduler/pkg/api"
	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/assembler"
	"github.com/codeready-toolchain/practice-scheduler/pkg/attempt"
	"github.com/codeready-toolchain/practice-scheduler/pkg/catalogue"
	"github.com/codeready-toolchain/practice-scheduler/pkg/clock"
	"github.com/codeready-toolchain/practice-scheduler/pkg/config"
	"github.com/codeready-toolchain/practice-scheduler/pkg/lifecycle"
	"github.com/codeready-toolchain/practice-scheduler/pkg/mastery"
	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/scheduler"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store/memstore"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store/pgstore"

	"github.com/gin-gonic/gin"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	ginMode := getEnv("GIN_MODE", "debug")
	gin.SetMode(ginMode)

	log.Printf("Starting adaptive practice scheduler")
	log.Printf("HTTP Port: %s", httpPort)
	log.Printf("Config Directory: %s", *configDir)

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}

	s, closeStore, err := newStore(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer closeStore()
	log.Println("Store initialized")

	cat := catalogue.New(s)
	if err := seedSessionState(ctx, s, cat, cfg); err != nil {
		log.Fatalf("Failed to seed session state: %v", err)
	}

	realClock := clock.NewReal()
	attemptEngine := attempt.New(s, realClock, slog.Default())
	masteryEngine := mastery.New(s, realClock)
	reviewScheduler := scheduler.New(s, realClock, slog.Default())
	asm := assembler.New(cat, reviewScheduler, realClock, slog.Default())
	lifecycleManager := lifecycle.New(s, realClock, asm, masteryEngine, slog.Default())

	srv := api.NewServer(s, attemptEngine, lifecycleManager, cat, masteryEngine, reviewScheduler, slog.Default())

	httpServer := &http.Server{
		Addr:    ":" + httpPort,
		Handler: srv.Router(),
	}

	go func() {
		log.Printf("HTTP server listening on :%s", httpPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during HTTP shutdown: %v", err)
	}
	log.Println("Shutdown complete")
}

// seedSessionState creates the process-wide SessionState singleton from the
// loaded settings if it doesn't already exist (spec §3's "created lazily on
// first completion" lifecycle, bootstrapped here so the Assembler/Scheduler
// have sane defaults before any session ever completes). CurrentAllowedTags
// (the "tier," spec §9) defaults to the set of all tags seen in the Problem
// Catalogue at this onboarding moment.
func seedSessionState(ctx context.Context, s store.Store, cat *catalogue.Catalogue, cfg *config.Config) error {
	_, err := s.SessionState().Get(ctx)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return err
	}

	tags, err := cat.AllTags(ctx)
	if err != nil {
		return err
	}

	state := models.NewSessionState(models.Settings{
		SessionLength:       cfg.Settings.SessionLength,
		NumberOfNewProblems: cfg.Settings.NumberOfNewProblems,
		DifficultyCap:       cfg.Settings.DifficultyCap,
	})
	state.CurrentAllowedTags = tags
	return s.SessionState().Put(ctx, state)
}

// newStore selects the Store Port implementation by STORE_BACKEND
// (default "memory"; "postgres" uses pkg/store/pgstore).
func newStore(ctx context.Context) (store.Store, func(), error) {
	switch getEnv("STORE_BACKEND", "memory") {
	case "postgres":
		dbConfig, err := pgstore.LoadConfigFromEnv()
		if err != nil {
			return nil, nil, err
		}
		pg, err := pgstore.Open(ctx, dbConfig)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	default:
		return memstore.New(), func() {}, nil
	}
}
