package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// uniqueViolation is the SQLSTATE Postgres reports for a UNIQUE constraint conflict.
const uniqueViolation = "23505"

// Pool owns a pgx connection pool and the database/sql handle layered on top of it.
type Pool struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

// Open parses the database URL, connects a pgx pool and verifies it with a ping.
func Open(ctx context.Context, databaseURL string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{pool: pool, db: stdlib.OpenDBFromPool(pool)}, nil
}

// DB exposes the pool through database/sql for the ORM and the migrator.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Close releases database resources.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	if p.db != nil {
		_ = p.db.Close()
	}
	if p.pool != nil {
		p.pool.Close()
	}
}

// IsUniqueViolation reports whether err carries a Postgres unique-constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
