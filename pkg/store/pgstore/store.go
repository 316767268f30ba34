// Package pgstore is the PostgreSQL-backed Store Port implementation (spec
// §4.A), used in production. It is grounded on pkg/database/client.go's
// connection-pool-plus-embedded-migrations idiom, generalized from an
// ent-backed driver to hand-written pgx/v5 queries: ent's generated client
// code is produced by `go generate ent`, which this exercise never runs, so
// the schema defined under ent/schema is expressed here as plain SQL and
// plain Go structs instead (see DESIGN.md).
package pgstore

import (
	"context"
	"fmt"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the production Store Port implementation, backed by a pgx
// connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting every view
// type work identically whether called directly or inside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Open creates the connection pool, applies embedded migrations, and
// returns a ready Store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Pool exposes the underlying pool for health checks.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Problems() store.ProblemStore          { return problemView{q: s.pool} }
func (s *Store) Attempts() store.AttemptStore          { return attemptView{q: s.pool} }
func (s *Store) Sessions() store.SessionStore          { return sessionView{q: s.pool} }
func (s *Store) TagMastery() store.TagMasteryStore     { return masteryView{q: s.pool} }
func (s *Store) SessionState() store.SessionStateStore { return stateView{q: s.pool} }
func (s *Store) Actions() store.ActionLogStore         { return actionView{q: s.pool} }

// pgTx adapts pgx.Tx to store.Tx, the way pkg/services/session_service.go's
// ent-backed service adapts *ent.Tx.
type pgTx struct{ tx pgx.Tx }

func (t pgTx) Problems() store.ProblemStore          { return problemView{q: t.tx} }
func (t pgTx) Attempts() store.AttemptStore          { return attemptView{q: t.tx} }
func (t pgTx) Sessions() store.SessionStore          { return sessionView{q: t.tx} }
func (t pgTx) TagMastery() store.TagMasteryStore     { return masteryView{q: t.tx} }
func (t pgTx) SessionState() store.SessionStateStore { return stateView{q: t.tx} }
func (t pgTx) Actions() store.ActionLogStore         { return actionView{q: t.tx} }

// WithTransaction runs fn inside a real database transaction, committing on
// nil return and rolling back otherwise — the same defer-tx.Rollback()
// pattern pkg/services/session_service.go uses around *ent.Tx, adapted to
// pgx.Tx's BeginTx/Commit/Rollback API.
func (s *Store) WithTransaction(ctx context.Context, mode store.TxMode, fn func(ctx context.Context, tx store.Tx) error) error {
	opts := pgx.TxOptions{}
	if mode == store.ReadOnly {
		opts.AccessMode = pgx.ReadOnly
	}

	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return apperrors.NewStoreError("withTransaction", "begin", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op once committed

	if err := fn(ctx, pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewStoreError("withTransaction", "commit", err)
	}
	return nil
}
