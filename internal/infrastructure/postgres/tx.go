package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/solargrowth/internal/domain/repository"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, so a repository can
// run on the pool or inside a transaction. Begin on a pgx.Tx opens a
// savepoint.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Transactor commits a user document together with its request record.
type Transactor struct {
	pool *pgxpool.Pool
}

func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{pool: pool}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, users repository.UserRepository, requests repository.RequestRepository) error) error {
	return pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(ctx, &UserRepository{db: tx}, &RequestRepository{db: tx})
	})
}

var (
	_ dbtx                  = (*pgxpool.Pool)(nil)
	_ dbtx                  = (pgx.Tx)(nil)
	_ repository.Transactor = (*Transactor)(nil)
)
