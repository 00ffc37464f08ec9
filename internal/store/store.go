// Package store holds the schema migrations and the error vocabulary shared by
// the Postgres repositories.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/samber/oops"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrUnavailable marks any failure talking to the store (connection, timeout,
// unexpected driver error). Callers map it to a service-unavailable outcome.
var ErrUnavailable = errors.New("store unavailable")

// Unavailable wraps a driver error so that errors.Is(err, ErrUnavailable) holds.
func Unavailable(operation string, err error) error {
	return oops.Code("STORE_UNAVAILABLE").
		With("operation", operation).
		Wrap(fmt.Errorf("%w: %w", ErrUnavailable, err))
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally restricted to the named constraint/index.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// Migrate applies all pending embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").Wrap(err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return oops.Code("MIGRATION_UP_FAILED").Wrap(err)
	}
	return nil
}
