package utils

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// registers the "pgx" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DriverPgx is the database/sql driver name registered by pgx stdlib.
const DriverPgx = "pgx"

// PostgresPoolConfig tunes the database/sql pool. Zero values use defaults.
type PostgresPoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

func (c PostgresPoolConfig) withDefaults() PostgresPoolConfig {
	open := intOr(c.MaxOpenConns, 20)
	idle := intOr(c.MaxIdleConns, open)
	return PostgresPoolConfig{
		MaxOpenConns:    open,
		MaxIdleConns:    min(idle, open),
		ConnMaxLifetime: durationOr(c.ConnMaxLifetime, 30*time.Minute),
		ConnMaxIdleTime: durationOr(c.ConnMaxIdleTime, 5*time.Minute),
		PingTimeout:     durationOr(c.PingTimeout, 5*time.Second),
	}
}

// OpenPostgres opens a pooled handle and verifies it with a ping.
// dsn carries credentials and must never be logged.
func OpenPostgres(ctx context.Context, driverName, dsn string, pool PostgresPoolConfig) (*sql.DB, error) {
	pool = pool.withDefaults()

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	if err := HealthCheck(ctx, db, pool.PingTimeout); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// HealthCheck pings the database, giving up after timeout.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping failed: %w", err)
	}
	return nil
}
