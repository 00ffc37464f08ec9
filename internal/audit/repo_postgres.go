package audit

import (
	"context"
	"database/sql"
	"time"

	"catalog-api/internal/store"
)

// PostgresRepo appends to the audit_events table. It only ever INSERTs.
type PostgresRepo struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresRepo(db *sql.DB, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `
INSERT INTO audit_events (id, type, actor_user_id, actor_role, ip_address, target_id, message, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		string(e.Type),
		e.ActorUserID,
		e.ActorRole,
		e.IPAddress,
		e.TargetID,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	if err != nil {
		return store.Unavailable("append audit event", err)
	}
	return nil
}
