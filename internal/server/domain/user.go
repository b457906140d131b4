package domain

import (
	"context"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Login        string
	PasswordHash []byte
	Admin        bool
}

type UserRepository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByLogin(ctx context.Context, login string) (User, error)
	UpdateAdmin(ctx context.Context, id uuid.UUID, admin bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}
