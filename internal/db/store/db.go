// Package store holds the hand written pgx queries behind the repositories.
// Each method maps to exactly one SQL statement.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a single-row query matched nothing.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned on a unique constraint violation.
	ErrDuplicate = errors.New("store: duplicate key")
)

const uniqueViolation = "23505"

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Queries runs statements against a pool or a transaction.
type Queries struct {
	db DBTX
}

// New binds queries to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx rebinds the queries to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// TxRunner opens transactions on a pool.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner wraps pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// InTx runs fn inside a transaction. It commits when fn returns nil and rolls back otherwise.
func (t *TxRunner) InTx(ctx context.Context, fn func(q *Queries) error) error {
	return pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(New(tx))
	})
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
