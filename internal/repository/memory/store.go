// Package memory is a process-local repository.Store. Transactions take the
// store lock, work on a copy of the state and swap it in only when the
// callback succeeds, so a failed WithTx leaves nothing behind.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/rewear-backend/internal/models"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

type state struct {
	users    map[string]models.User
	items    map[string]models.Item
	swaps    map[string]models.SwapRequest
	balances map[string]models.Balance
	txns     []models.Transaction
	audit    []models.AuditLog
	messages []models.Message
}

func newState() *state {
	return &state{
		users:    map[string]models.User{},
		items:    map[string]models.Item{},
		swaps:    map[string]models.SwapRequest{},
		balances: map[string]models.Balance{},
	}
}

func (s *state) clone() *state {
	return &state{
		users:    maps.Clone(s.users),
		items:    maps.Clone(s.items),
		swaps:    maps.Clone(s.swaps),
		balances: maps.Clone(s.balances),
		txns:     slices.Clone(s.txns),
		audit:    slices.Clone(s.audit),
		messages: slices.Clone(s.messages),
	}
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
	// seq orders rows created within the same clock tick.
	seq int64
}

var _ repo.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// access is how a repository reaches the state: directly inside a
// transaction, through the store lock otherwise.
type access interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
	stamp() time.Time
	newID() string
}

type rootAccess struct{ s *Store }

func (a rootAccess) read(fn func(st *state) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.st)
}

func (a rootAccess) write(fn func(st *state) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	next := a.s.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	a.s.st = next
	return nil
}

func (a rootAccess) stamp() time.Time { return a.s.stamp() }
func (a rootAccess) newID() string    { return uuid.NewString() }

type txAccess struct {
	s  *Store
	st *state
}

func (a txAccess) read(fn func(st *state) error) error  { return fn(a.st) }
func (a txAccess) write(fn func(st *state) error) error { return fn(a.st) }
func (a txAccess) stamp() time.Time                     { return a.s.stamp() }
func (a txAccess) newID() string                        { return uuid.NewString() }

// stamp returns a strictly increasing timestamp so ordering by creation time
// is stable. Callers hold s.mu.
func (s *Store) stamp() time.Time {
	s.seq++
	return s.now().UTC().Add(time.Duration(s.seq) * time.Nanosecond)
}

func repositories(a access) repo.Repositories {
	return repo.Repositories{
		Users:        &usersRepo{a},
		Items:        &itemsRepo{a},
		Swaps:        &swapsRepo{a},
		Balances:     &balancesRepo{a},
		Transactions: &transactionsRepo{a},
		AuditLogs:    &auditLogsRepo{a},
		Messages:     &messagesRepo{a},
	}
}

// Repos returns repositories where every call is its own transaction. They
// must not be used from inside a WithTx callback.
func (s *Store) Repos() repo.Repositories { return repositories(rootAccess{s}) }

func (s *Store) WithTx(ctx context.Context, fn repo.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st.clone()
	if err := fn(ctx, repositories(txAccess{s: s, st: next})); err != nil {
		return err
	}
	s.st = next
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
