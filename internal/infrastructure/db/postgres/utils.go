package pgdb

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const connectTimeout = 5 * time.Second

//go:embed migration/*.sql
var migrations embed.FS

// OpenDb connects to dsn and brings its schema up to date with the embedded
// migrations.
func OpenDb(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres db: %w", err)
	}

	if err := MigrateDb(pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// MigrateDb applies the embedded migrations not yet recorded in the
// schema_migrations table of the pool's database.
func MigrateDb(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}
	source, err := iofs.New(migrations, "migration")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate up: %w", err)
	}

	return nil
}

func execTx(ctx context.Context, pool *pgxpool.Pool, txBody func(pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, pool, txBody)
}

func parsePool(config ...interface{}) (*pgxpool.Pool, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	pool, ok := config[0].(*pgxpool.Pool)
	if !ok {
		return nil, fmt.Errorf("invalid config, expected pool at 0")
	}
	return pool, nil
}
