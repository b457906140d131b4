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

type BunUserRepository struct {
	db *bun.DB
}

func NewBunUserRepository(ctx context.Context, db *bun.DB) (*BunUserRepository, error) {
	r := &BunUserRepository{
		db: db,
	}
	tx := infra.ExtractTx(ctx, r.db)
	_, err := tx.NewCreateTable().
		Model((*user)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return r, fmt.Errorf("failed to create repository: %w", err)
	}
	return r, nil
}

func (r *BunUserRepository) Create(ctx context.Context, usr server.User) error {
	tx := infra.ExtractTx(ctx, r.db)
	u := new(user)
	copier.Copy(u, &usr)
	_, err := tx.NewInsert().
		Model(u).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *BunUserRepository) GetByID(ctx context.Context, id uuid.UUID) (server.User, error) {
	tx := infra.ExtractTx(ctx, r.db)
	u := new(user)
	usr := server.User{}
	err := tx.NewSelect().
		Model(u).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = shared.ErrNotExist
		}
		return usr, fmt.Errorf("failed to get user: %w", err)
	}
	copier.Copy(&usr, u)
	return usr, nil
}

func (r *BunUserRepository) GetByLogin(ctx context.Context, login string) (server.User, error) {
	tx := infra.ExtractTx(ctx, r.db)
	u := new(user)
	usr := server.User{}
	err := tx.NewSelect().
		Model(u).
		Where("login = ?", login).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = shared.ErrNotExist
		}
		return usr, fmt.Errorf("failed to get user: %w", err)
	}
	copier.Copy(&usr, u)
	return usr, nil
}

func (r *BunUserRepository) UpdateAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	tx := infra.ExtractTx(ctx, r.db)
	u := &user{ID: id, Admin: admin}
	_, err := tx.NewUpdate().
		Model(u).
		Column("admin").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user admin flag: %w", err)
	}
	return nil
}

func (r *BunUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := infra.ExtractTx(ctx, r.db)
	u := &user{ID: id}
	_, err := tx.NewDelete().
		Model(u).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

type user struct {
	bun.BaseModel `bun:"table:users"`

	ID           uuid.UUID `bun:",pk"`
	Login        string    `bun:",unique,notnull"`
	PasswordHash []byte    `bun:",notnull"`
	Admin        bool      `bun:",notnull"`
}
