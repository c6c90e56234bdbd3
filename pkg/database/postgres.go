package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresDB struct {
	Pool *pgxpool.Pool
	// ReadPool serves list and page queries. Same as Pool when no replica is configured.
	ReadPool *pgxpool.Pool
}

// NewPostgresDB creates the primary connection pool and, when readURL differs,
// a second pool for read-mostly queries.
func NewPostgresDB(ctx context.Context, databaseURL, readURL string) (*PostgresDB, error) {
	pool, err := newPool(ctx, databaseURL, 20)
	if err != nil {
		return nil, err
	}

	db := &PostgresDB{Pool: pool, ReadPool: pool}
	if readURL != "" && readURL != databaseURL {
		readPool, err := newPool(ctx, readURL, 10)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("read replica: %w", err)
		}
		db.ReadPool = readPool
	}

	return db, nil
}

func newPool(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = maxConns
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.HealthCheckPeriod = time.Minute
	config.ConnConfig.ConnectTimeout = time.Second * 5
	config.ConnConfig.RuntimeParams["application_name"] = "fest-backend"

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Close closes the database connection pools
func (db *PostgresDB) Close() {
	if db.ReadPool != nil && db.ReadPool != db.Pool {
		db.ReadPool.Close()
	}
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Health checks the database connection
func (db *PostgresDB) Health(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return err
	}
	if db.ReadPool != db.Pool {
		return db.ReadPool.Ping(ctx)
	}
	return nil
}

// WithTx runs fn inside a transaction on the primary pool. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (db *PostgresDB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback after a successful commit returns pgx.ErrTxClosed and is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
