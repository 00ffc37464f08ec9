package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"catalog-api/internal/store"
)

const emailUniqueIndex = "users_email_key"

// PostgresRepo stores users in the users table.
// Every call is bounded by timeout so a stalled database fails instead of hanging.
type PostgresRepo struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresRepo(db *sql.DB, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

const userColumns = `id, name, email, password_hash, role, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *PostgresRepo) Create(ctx context.Context, u User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `
INSERT INTO users (` + userColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err := r.db.ExecContext(ctx, q,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		string(u.Role),
		u.IsActive,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if store.IsUniqueViolation(err, emailUniqueIndex) {
			return ErrEmailTaken
		}
		return store.Unavailable("insert user", err)
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, store.Unavailable("list users", err)
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, store.Unavailable("scan user", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable("list users", err)
	}
	return out, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, "get user by id", q, id)
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, "get user by email", q, email)
}

func (r *PostgresRepo) SetActive(ctx context.Context, id string, active bool, at time.Time) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `
UPDATE users SET is_active = $2, updated_at = $3
WHERE id = $1
RETURNING ` + userColumns
	return r.getOne(ctx, "set user active", q, id, active, at)
}

func (r *PostgresRepo) getOne(ctx context.Context, op, q string, args ...any) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, store.Unavailable(op, err)
	}
	return u, nil
}
