package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	server "github.com/charadev96/corkboard/internal/server/domain"
	"github.com/charadev96/corkboard/internal/server/token"
	shared "github.com/charadev96/corkboard/internal/shared/domain"
)

// inviteNonceSize is 128 bits, the floor for replay-proof nonces.
const inviteNonceSize = 16

// InviteService issues, validates, and redeems invitation tokens. A token
// is a stateless capability: whether it is honored depends only on its
// cryptographic authenticity, the issuer's current admin status, and the
// redemption ledger. Nothing is cached between calls.
type InviteService struct {
	Codec  *token.Codec
	Users  server.UserRepository
	Nonces server.NonceLedger
	Rand   io.Reader
}

// Issue mints a new invitation token on behalf of actor. Issuance leaves
// no footprint in the ledger; an unredeemed token costs nothing.
func (s *InviteService) Issue(ctx context.Context, actor *server.Actor) (string, error) {
	if err := server.Require(server.TierAdminOnly, actor); err != nil {
		return "", err
	}

	rnd := s.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	nonce := make([]byte, inviteNonceSize)
	if _, err := io.ReadFull(rnd, nonce); err != nil {
		return "", fmt.Errorf("failed to generate invite nonce: %w", err)
	}

	tok, err := s.Codec.Encode(server.InvitePayload{
		IssuerID: actor.ID,
		Nonce:    nonce,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode invite: %w", err)
	}
	return tok, nil
}

// Validate reports whether tok would currently be honored. It never
// mutates the ledger, so it is safe for "is this link still good" checks.
func (s *InviteService) Validate(ctx context.Context, tok string) (server.InvitePayload, error) {
	p, err := s.check(ctx, tok)
	if err != nil {
		return p, err
	}
	seen, err := s.Nonces.Contains(ctx, p.Nonce)
	if err != nil {
		return p, err
	}
	if seen {
		return p, server.ErrAlreadyRedeemed
	}
	return p, nil
}

// Redeem consumes tok exactly once. It re-runs the full check rather than
// trusting an earlier Validate, then settles the race on the ledger's
// atomic insert: of any number of concurrent redeemers, one wins.
func (s *InviteService) Redeem(ctx context.Context, tok string) (server.InvitePayload, error) {
	p, err := s.check(ctx, tok)
	if err != nil {
		return p, err
	}
	added, err := s.Nonces.Insert(ctx, p.Nonce)
	if err != nil {
		return p, err
	}
	if !added {
		return p, server.ErrAlreadyRedeemed
	}
	return p, nil
}

// check decodes tok and verifies the issuer exists and is still an admin.
// Demoting an admin invalidates all their outstanding tokens.
func (s *InviteService) check(ctx context.Context, tok string) (server.InvitePayload, error) {
	p, err := s.Codec.Decode(tok)
	if err != nil {
		return p, err
	}
	issuer, err := s.Users.GetByID(ctx, p.IssuerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotExist) {
			return p, server.ErrIssuerNotFound
		}
		return p, err
	}
	if !issuer.Admin {
		return p, server.ErrPermissionDenied
	}
	return p, nil
}
