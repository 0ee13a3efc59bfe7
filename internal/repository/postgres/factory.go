package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
}

var _ repo.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

func NewRepositories(q querier) repo.Repositories {
	return repo.Repositories{
		Users:        &usersRepo{q},
		Items:        &itemsRepo{q},
		Swaps:        &swapsRepo{q},
		Balances:     &balancesRepo{q},
		Transactions: &transactionsRepo{q},
		AuditLogs:    &auditLogsRepo{q},
		Messages:     &messagesRepo{q},
	}
}

func (s *Store) Repos() repo.Repositories { return NewRepositories(s.pool) }

// WithTx runs fn in one serializable transaction. Serialization failures and
// deadlocks come back as repo.ErrConflict.
func (s *Store) WithTx(ctx context.Context, fn repo.TxFunc) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(ctx, NewRepositories(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return mapErr(err)
	}
	return mapErr(tx.Commit(ctx))
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const (
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repo.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Join(repo.ErrDuplicate, err)
		case pgCheckViolation, pgSerializationFailure, pgDeadlockDetected:
			return errors.Join(repo.ErrConflict, err)
		}
	}
	return err
}
