package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	server "github.com/charadev96/corkboard/internal/server/domain"
	"github.com/charadev96/corkboard/internal/shared/infra"
)

// BunNonceLedger is the durable set of redeemed invitation nonces. It must
// be backed by the shared database, not process memory, so that redemption
// cannot race across replicas.
type BunNonceLedger struct {
	db *bun.DB
}

func NewBunNonceLedger(ctx context.Context, db *bun.DB) (*BunNonceLedger, error) {
	r := &BunNonceLedger{
		db: db,
	}
	tx := infra.ExtractTx(ctx, r.db)
	_, err := tx.NewCreateTable().
		Model((*redeemedNonce)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return r, fmt.Errorf("failed to create repository: %w", err)
	}
	return r, nil
}

func (r *BunNonceLedger) Contains(ctx context.Context, nonce []byte) (bool, error) {
	tx := infra.ExtractTx(ctx, r.db)
	ok, err := tx.NewSelect().
		Model((*redeemedNonce)(nil)).
		Where("nonce = ?", nonce).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check nonce: %w: %v", server.ErrStorageUnavailable, err)
	}
	return ok, nil
}

// Insert is a single add-if-absent against the primary key. Concurrent
// redemptions of one nonce resolve here: exactly one caller sees a new row.
func (r *BunNonceLedger) Insert(ctx context.Context, nonce []byte) (bool, error) {
	tx := infra.ExtractTx(ctx, r.db)
	n := &redeemedNonce{
		Nonce:      nonce,
		RedeemedAt: time.Now(),
	}
	res, err := tx.NewInsert().
		Model(n).
		Ignore().
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to record nonce: %w: %v", server.ErrStorageUnavailable, err)
	}
	added, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to record nonce: %w: %v", server.ErrStorageUnavailable, err)
	}
	return added > 0, nil
}

type redeemedNonce struct {
	bun.BaseModel `bun:"table:redeemed_nonces"`

	Nonce      []byte `bun:",pk"`
	RedeemedAt time.Time
}
