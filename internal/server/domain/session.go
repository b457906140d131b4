package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionTTL is how long a session is honored after creation.
const SessionTTL = 12 * time.Hour

type UserSession struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     []byte
	CreatedAt time.Time
}

type UserSessionRepository interface {
	Save(ctx context.Context, sess UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
