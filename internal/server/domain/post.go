package domain

import (
	"context"

	"github.com/google/uuid"
)

type Post struct {
	ID   uuid.UUID
	Name string
	Body string
}

func (p Post) Validate() error {
	if p.Name == "" {
		return ErrPostNameRequired
	}
	if p.Body == "" {
		return ErrPostBodyRequired
	}
	return nil
}

type PostRepository interface {
	Create(ctx context.Context, p Post) error
	GetByID(ctx context.Context, id uuid.UUID) (Post, error)
	List(ctx context.Context) ([]Post, error)
	Update(ctx context.Context, p Post) error
	Search(ctx context.Context, query string) ([]Post, error)
}
