package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalog-api/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresRepo_Append(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepo(db, time.Second)

	at := time.Unix(1700000000, 0).UTC()
	e := Event{ID: "e1", Type: EventUserCreated, ActorUserID: "u1", ActorRole: "admin", TargetID: "u2", Metadata: `{"role":"user"}`, CreatedAt: at}

	mock.ExpectExec(`INSERT\s+INTO\s+audit_events`).
		WithArgs("e1", "user_created", "u1", "admin", "", "u2", "", `{"role":"user"}`, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Append(context.Background(), e); err != nil {
		t.Fatalf("append: %v", err)
	}

	mock.ExpectExec(`INSERT\s+INTO\s+audit_events`).WillReturnError(errors.New("connection reset"))
	if err := repo.Append(context.Background(), e); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
