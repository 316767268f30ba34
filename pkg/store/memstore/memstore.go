// Package memstore is an in-memory Store Port implementation (spec §4.A),
// used for fast deterministic unit tests of the business logic packages and
// as a default runtime mode. It mirrors the map+sync.RWMutex idiom of
// pkg/session/manager.go, generalized across the five entity spaces.
//
// Transactional writes are copy-on-write: WithTransaction clones the live
// state under the read lock, lets fn mutate the clone freely, then swaps it
// in under the write lock only if fn succeeds. Direct (auto-committing)
// calls read and write the live state in place while holding the lock.
package memstore

import (
	"context"
	"sync"

	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store"
)

type actionRecord struct {
	Action  string
	Payload map[string]any
}

// state holds every entity space for one consistent point in time.
type state struct {
	problems     map[string]*models.Problem
	byLeetCode   map[int]string
	attempts     map[string]*models.Attempt
	sessions     map[string]*models.Session
	tagMastery   map[string]*models.TagMastery
	sessionState *models.SessionState
	actions      []actionRecord
}

func newState() *state {
	return &state{
		problems:   make(map[string]*models.Problem),
		byLeetCode: make(map[int]string),
		attempts:   make(map[string]*models.Attempt),
		sessions:   make(map[string]*models.Session),
		tagMastery: make(map[string]*models.TagMastery),
	}
}

// clone produces a deep-enough copy of every entity map so a transaction can
// be rolled back by simply discarding it.
func (s *state) clone() *state {
	cp := newState()
	for k, v := range s.problems {
		cp.problems[k] = cloneProblem(v)
	}
	for k, v := range s.byLeetCode {
		cp.byLeetCode[k] = v
	}
	for k, v := range s.attempts {
		cp.attempts[k] = cloneAttempt(v)
	}
	for k, v := range s.sessions {
		cp.sessions[k] = v.Clone()
	}
	for k, v := range s.tagMastery {
		m := *v
		cp.tagMastery[k] = &m
	}
	if s.sessionState != nil {
		cp.sessionState = cloneSessionState(s.sessionState)
	}
	cp.actions = append([]actionRecord(nil), s.actions...)
	return cp
}

func cloneProblem(p *models.Problem) *models.Problem {
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	if p.LastAttemptDate != nil {
		t := *p.LastAttemptDate
		cp.LastAttemptDate = &t
	}
	return &cp
}

func cloneAttempt(a *models.Attempt) *models.Attempt {
	cp := *a
	if a.SessionID != nil {
		s := *a.SessionID
		cp.SessionID = &s
	}
	return &cp
}

// Store is the in-memory Store Port implementation.
type Store struct {
	mu   sync.RWMutex
	data *state
}

// New returns an empty in-memory Store.
func New() *Store {
	return &Store{data: newState()}
}

// current returns a private copy of the live state, taken under the read
// lock so a concurrent direct write cannot change it mid-copy.
func (s *Store) current() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.clone()
}

func (s *Store) Problems() store.ProblemStore          { return problemView{base{live: s}} }
func (s *Store) Attempts() store.AttemptStore          { return attemptView{base{live: s}} }
func (s *Store) Sessions() store.SessionStore          { return sessionView{base{live: s}} }
func (s *Store) TagMastery() store.TagMasteryStore     { return masteryView{base{live: s}} }
func (s *Store) SessionState() store.SessionStateStore { return stateView{base{live: s}} }
func (s *Store) Actions() store.ActionLogStore         { return actionView{base{live: s}} }

// txHandle implements store.Tx over a private clone of the live state,
// mutated directly with no locking (it is exclusively owned for the
// transaction's lifetime).
type txHandle struct {
	d *state
}

func (t txHandle) Problems() store.ProblemStore          { return problemView{base{snap: t.d}} }
func (t txHandle) Attempts() store.AttemptStore          { return attemptView{base{snap: t.d}} }
func (t txHandle) Sessions() store.SessionStore          { return sessionView{base{snap: t.d}} }
func (t txHandle) TagMastery() store.TagMasteryStore     { return masteryView{base{snap: t.d}} }
func (t txHandle) SessionState() store.SessionStateStore { return stateView{base{snap: t.d}} }
func (t txHandle) Actions() store.ActionLogStore         { return actionView{base{snap: t.d}} }

// WithTransaction clones the live state, runs fn against the clone, and
// atomically swaps it in on success. ReadOnly transactions never swap.
func (s *Store) WithTransaction(_ context.Context, mode store.TxMode, fn func(ctx context.Context, tx store.Tx) error) error {
	clone := s.current()

	if err := fn(context.Background(), txHandle{d: clone}); err != nil {
		return err
	}

	if mode == store.ReadWrite {
		s.mu.Lock()
		s.data = clone
		s.mu.Unlock()
	}
	return nil
}

// base is embedded by every entity view. snap is set inside a transaction
// (the view operates on the transaction's own clone, already exclusively
// owned, so no locking is needed); live is set for direct, auto-committing
// calls, which lock the store for the duration of the read or write.
type base struct {
	live *Store
	snap *state
}

func (b base) withRead(fn func(d *state)) {
	if b.snap != nil {
		fn(b.snap)
		return
	}
	b.live.mu.RLock()
	defer b.live.mu.RUnlock()
	fn(b.live.data)
}

func (b base) withWrite(fn func(d *state)) {
	if b.snap != nil {
		fn(b.snap)
		return
	}
	b.live.mu.Lock()
	defer b.live.mu.Unlock()
	fn(b.live.data)
}
