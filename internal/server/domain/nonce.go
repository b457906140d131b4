package domain

import (
	"context"
)

// NonceLedger is the shared, durable set of redeemed invitation nonces.
// Membership is permanent; there is no removal.
type NonceLedger interface {
	Contains(ctx context.Context, nonce []byte) (bool, error)
	// Insert atomically adds nonce to the set and reports whether it was
	// newly added. The atomicity of this call is what prevents a token
	// from being redeemed twice by concurrent callers.
	Insert(ctx context.Context, nonce []byte) (bool, error)
}
