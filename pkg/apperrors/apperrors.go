// Package apperrors defines the sum type of error kinds the core can raise
// (spec §7) and their propagation policy. Callers use errors.Is/errors.As —
// never string matching.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable surfaces any failed store call.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is recovered locally where meaningful (addAttempt returns
	// an error result; Lifecycle Manager operations return nil).
	ErrNotFound = errors.New("not found")

	// ErrInvariantViolation is fatal and always propagates — e.g. a problem
	// missing leetcode_id on the completion path.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrTypeMismatch is recovered locally: resumeSession returns nil;
	// refreshSession(forceNew=true) with no existing session returns nil.
	ErrTypeMismatch = errors.New("session type mismatch")

	// ErrTimedOut surfaces when an operation exceeds its deadline.
	ErrTimedOut = errors.New("operation timed out")

	// ErrConflictAborted marks a write abandoned because of a conflict.
	// Nothing in this module returns it, and no operation retries on
	// conflict; pkg/api's error mapping still recognizes it.
	ErrConflictAborted = errors.New("conflict aborted after retries")

	// ErrFocusDecisionFailed is swallowed and logged; the completion
	// pipeline proceeds with the prior focus tags.
	ErrFocusDecisionFailed = errors.New("focus decision failed")
)

// StoreError wraps a store-layer failure with the entity/operation context
// that produced it, the way pkg/services/errors.go's ValidationError wraps
// field context.
type StoreError struct {
	Op     string // e.g. "get", "put", "scan", "withTransaction"
	Entity string // e.g. "problems", "sessions"
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s on %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err as a StoreError with the given op/entity context.
func NewStoreError(op, entity string, err error) *StoreError {
	return &StoreError{Op: op, Entity: entity, Err: err}
}
