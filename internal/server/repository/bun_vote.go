package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	server "github.com/charadev96/corkboard/internal/server/domain"
	"github.com/charadev96/corkboard/internal/shared/infra"
)

type BunVoteRepository struct {
	db *bun.DB
}

func NewBunVoteRepository(ctx context.Context, db *bun.DB) (*BunVoteRepository, error) {
	r := &BunVoteRepository{
		db: db,
	}
	tx := infra.ExtractTx(ctx, r.db)
	_, err := tx.NewCreateTable().
		Model((*vote)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return r, fmt.Errorf("failed to create repository: %w", err)
	}
	return r, nil
}

// Insert records the vote with a conflict-free insert. The composite
// (user_id, post_id) key makes the store the arbiter of uniqueness; a
// lost race shows up as zero affected rows, never as a second vote.
func (r *BunVoteRepository) Insert(ctx context.Context, vt server.Vote) (bool, error) {
	tx := infra.ExtractTx(ctx, r.db)
	v := &vote{
		UserID: vt.UserID,
		PostID: vt.PostID,
		Value:  vt.Value,
	}
	res, err := tx.NewInsert().
		Model(v).
		Ignore().
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to record vote: %w: %v", server.ErrStorageUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to record vote: %w: %v", server.ErrStorageUnavailable, err)
	}
	return n > 0, nil
}

func (r *BunVoteRepository) Exists(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	tx := infra.ExtractTx(ctx, r.db)
	ok, err := tx.NewSelect().
		Model((*vote)(nil)).
		Where("user_id = ?", userID).
		Where("post_id = ?", postID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w: %v", server.ErrStorageUnavailable, err)
	}
	return ok, nil
}

func (r *BunVoteRepository) Score(ctx context.Context, postID uuid.UUID) (int, error) {
	tx := infra.ExtractTx(ctx, r.db)
	var score int
	err := tx.NewSelect().
		Model((*vote)(nil)).
		ColumnExpr("COALESCE(SUM(value), 0)").
		Where("post_id = ?", postID).
		Scan(ctx, &score)
	if err != nil {
		return 0, fmt.Errorf("failed to compute score: %w: %v", server.ErrStorageUnavailable, err)
	}
	return score, nil
}

type vote struct {
	bun.BaseModel `bun:"table:votes"`

	UserID uuid.UUID `bun:"user_id,pk"`
	PostID uuid.UUID `bun:"post_id,pk"`
	Value  int       `bun:",notnull"`
}
