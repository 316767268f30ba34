// Package store defines the Store Port (spec §4.A): a narrow, transactional
// contract over the five entity spaces the core persists (problems,
// attempts, sessions, tag_mastery, session_state) plus the append-only
// user_actions log. Any ordered KV or relational store can implement it —
// see pkg/store/memstore for an in-memory implementation and
// pkg/store/pgstore for a PostgreSQL-backed one.
package store

import (
	"context"
	"time"

	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
)

// TxMode selects transaction isolation intent, mirroring spec §4.A's
// {readonly, readwrite} mode parameter to withTransaction.
type TxMode int

const (
	ReadOnly TxMode = iota
	ReadWrite
)

// ProblemStore is the read/write contract over the problems object space.
type ProblemStore interface {
	Get(ctx context.Context, problemID string) (*models.Problem, error)
	GetByLeetCodeID(ctx context.Context, leetCodeID int) (*models.Problem, error)
	ScanAll(ctx context.Context) ([]*models.Problem, error)
	ByTag(ctx context.Context, tag string) ([]*models.Problem, error)
	CountByBoxLevel(ctx context.Context) (map[int]int, error)

	// Put inserts or replaces a problem's full record (catalogue ingestion).
	Put(ctx context.Context, p *models.Problem) error

	// UpsertLearningState is the only write available to the Attempt Engine
	// (spec §4.C): it updates box_level, review_schedule, last_attempt_date
	// and attempt_stats without touching identity fields.
	UpsertLearningState(ctx context.Context, problemID string, boxLevel int, nextReview time.Time, lastAttempt time.Time, stats models.AttemptStats) error
}

// AttemptStore is the append-only contract over the attempts object space.
type AttemptStore interface {
	Insert(ctx context.Context, a *models.Attempt) error
	Get(ctx context.Context, attemptID string) (*models.Attempt, error)
	ByProblem(ctx context.Context, problemID string) ([]*models.Attempt, error)
	BySession(ctx context.Context, sessionID string) ([]*models.Attempt, error)
	All(ctx context.Context) ([]*models.Attempt, error)
	MostRecent(ctx context.Context, problemID string) (*models.Attempt, error) // problemID == "" means most recent overall
}

// SessionStore is the contract over the sessions object space. Sessions are
// exclusively mutated by the Lifecycle Manager.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Put(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, sessionID string) error

	// InProgressByType returns the in_progress session of the given type, or
	// nil if none exists. The store guarantees at most one via the write
	// path (spec §8 invariant); a second one found here is an
	// apperrors.ErrInvariantViolation.
	InProgressByType(ctx context.Context, t models.SessionType) (*models.Session, error)

	// AllInProgress returns every in_progress session across all types,
	// ordered by last_activity_time descending, for resumeSession's
	// type-compatibility search.
	AllInProgress(ctx context.Context) ([]*models.Session, error)
}

// TagMasteryStore is the contract over the tag_mastery cache.
type TagMasteryStore interface {
	Get(ctx context.Context, tag string) (*models.TagMastery, error)
	Put(ctx context.Context, m *models.TagMastery) error
	All(ctx context.Context) (map[string]*models.TagMastery, error)
}

// SessionStateStore is the contract over the session_state singleton.
type SessionStateStore interface {
	// Get returns apperrors.ErrNotFound before the singleton is created.
	Get(ctx context.Context) (*models.SessionState, error)
	Put(ctx context.Context, s *models.SessionState) error
}

// ActionLogStore is the append-only contract over user_actions — outside the
// core's contract beyond existence (spec §6), given a minimal writer so the
// object space isn't simply declared and ignored.
type ActionLogStore interface {
	Append(ctx context.Context, action string, payload map[string]any) error
}

// Tx groups per-entity handles scoped to a single transaction.
type Tx interface {
	Problems() ProblemStore
	Attempts() AttemptStore
	Sessions() SessionStore
	TagMastery() TagMasteryStore
	SessionState() SessionStateStore
	Actions() ActionLogStore
}

// Store is the top-level Store Port: direct (auto-committing) entity access
// plus WithTransaction for multi-entity atomicity.
type Store interface {
	Tx

	// WithTransaction runs fn inside a transaction in the given mode. The
	// transaction always spans every entity space; there is no per-entity
	// scoping. On error return from fn, every write fn made is rolled back.
	WithTransaction(ctx context.Context, mode TxMode, fn func(ctx context.Context, tx Tx) error) error
}
