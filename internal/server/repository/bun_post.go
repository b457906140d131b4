package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/uptrace/bun"

	server "github.com/charadev96/corkboard/internal/server/domain"
	shared "github.com/charadev96/corkboard/internal/shared/domain"
	"github.com/charadev96/corkboard/internal/shared/infra"
)

type BunPostRepository struct {
	db *bun.DB
}

func NewBunPostRepository(ctx context.Context, db *bun.DB) (*BunPostRepository, error) {
	r := &BunPostRepository{
		db: db,
	}
	tx := infra.ExtractTx(ctx, r.db)
	_, err := tx.NewCreateTable().
		Model((*post)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return r, fmt.Errorf("failed to create repository: %w", err)
	}
	return r, nil
}

func (r *BunPostRepository) Create(ctx context.Context, pst server.Post) error {
	tx := infra.ExtractTx(ctx, r.db)
	p := new(post)
	copier.Copy(p, &pst)
	_, err := tx.NewInsert().
		Model(p).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *BunPostRepository) GetByID(ctx context.Context, id uuid.UUID) (server.Post, error) {
	tx := infra.ExtractTx(ctx, r.db)
	p := new(post)
	pst := server.Post{}
	err := tx.NewSelect().
		Model(p).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = shared.ErrNotExist
		}
		return pst, fmt.Errorf("failed to get post: %w", err)
	}
	copier.Copy(&pst, p)
	return pst, nil
}

func (r *BunPostRepository) List(ctx context.Context) ([]server.Post, error) {
	tx := infra.ExtractTx(ctx, r.db)
	var models []post
	err := tx.NewSelect().
		Model(&models).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return toDomainPosts(models), nil
}

func (r *BunPostRepository) Update(ctx context.Context, pst server.Post) error {
	tx := infra.ExtractTx(ctx, r.db)
	p := new(post)
	copier.Copy(p, &pst)
	_, err := tx.NewUpdate().
		Model(p).
		Column("name", "body").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// Search matches a substring in post names and bodies. The full-text index
// of the hosted deployment lives outside this repository.
func (r *BunPostRepository) Search(ctx context.Context, query string) ([]server.Post, error) {
	tx := infra.ExtractTx(ctx, r.db)
	var models []post
	pattern := "%" + query + "%"
	err := tx.NewSelect().
		Model(&models).
		Where("name LIKE ?", pattern).
		WhereOr("body LIKE ?", pattern).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return toDomainPosts(models), nil
}

func toDomainPosts(models []post) []server.Post {
	posts := make([]server.Post, 0, len(models))
	for i := range models {
		pst := server.Post{}
		copier.Copy(&pst, &models[i])
		posts = append(posts, pst)
	}
	return posts
}

type post struct {
	bun.BaseModel `bun:"table:posts"`

	ID   uuid.UUID `bun:",pk"`
	Name string    `bun:",notnull"`
	Body string    `bun:",notnull"`
}
