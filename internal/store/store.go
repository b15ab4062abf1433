package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Execer is satisfied by both *pgxpool.Pool and pgx.Tx, so every entity
// method can run either against the pool directly or inside a caller-
// supplied transaction (used by the backup engine's atomic restore).
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgx.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store wraps the connection pool and is the single entry point the
// rest of the system uses to reach Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// WithTx runs fn inside a single transaction, committing on success and
// rolling back on any error or panic. Used by the backup engine's
// restore path (§4.6 step 4), which needs several statements to behave
// as one atomic unit.
func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Ping verifies the store is reachable, used by the /readyz probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}
