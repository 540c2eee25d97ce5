package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx connection behavior the queries need.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries holds all database queries bound to a connection or transaction.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given connection.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance bound to the given transaction.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// Tx is a unit of work: queries plus commit/rollback. Rollback after a
// successful commit is a no-op, so it is safe to defer unconditionally.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DB is the full database surface: queries plus the ability to open a
// transaction. The checkout commit depends on this to make the order, its
// items, and the session-cart reset atomic.
type DB interface {
	Querier
	Begin(ctx context.Context) (Tx, error)
}

// Store implements DB on top of a pgx connection pool.
type Store struct {
	*Queries
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Queries: New(pool), pool: pool}
}

// Begin opens a database transaction.
func (s *Store) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txStore{Queries: s.Queries.WithTx(tx), tx: tx}, nil
}

type txStore struct {
	*Queries
	tx pgx.Tx
}

func (t *txStore) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *txStore) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
