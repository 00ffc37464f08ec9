package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"catalog-api/pkg/logger"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events. It is append-only;
// there is no Update or Delete.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records audit events for guarded mutations.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

// Append validates and stores e, filling ID and CreatedAt when unset.
func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" || e.ActorUserID == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Record appends an event for actor and logs instead of returning on failure.
// A non-empty metadata map is stored as JSON.
func (s *Service) Record(ctx context.Context, actor Actor, typ EventType, targetID, message string, metadata map[string]any) {
	err := s.Append(ctx, Event{
		Type:        typ,
		ActorUserID: actor.UserID,
		ActorRole:   actor.Role,
		IPAddress:   actor.IP,
		TargetID:    targetID,
		Message:     message,
		Metadata:    encodeMetadata(ctx, metadata),
	})
	if err != nil {
		logger.From(ctx).Error("audit append failed", "type", string(typ), "target_id", targetID, "err", err)
	}
}

func encodeMetadata(ctx context.Context, metadata map[string]any) string {
	if len(metadata) == 0 {
		return ""
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		logger.From(ctx).Warn("audit metadata dropped", "err", err)
		return ""
	}
	return string(raw)
}
