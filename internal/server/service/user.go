package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	server "github.com/charadev96/corkboard/internal/server/domain"
	shared "github.com/charadev96/corkboard/internal/shared/domain"
)

const sessionTokenSize = 32

// UserService handles registration, password login, and session
// verification. Registration is invitation-gated: the account insert and
// the nonce redemption commit or roll back together.
type UserService struct {
	Users    server.UserRepository
	Sessions server.UserSessionRepository
	Invites  *InviteService
	TXRunner shared.TransactionRunner
	Rand     io.Reader

	BcryptCost int
}

// Register creates an account for the holder of a valid invitation token
// and logs it in. The up-front Validate keeps garbage tokens from costing
// a user insert; the Redeem inside the transaction is what actually
// consumes the invitation, so a lost redemption race rolls the account
// back and surfaces ErrAlreadyRedeemed.
func (s *UserService) Register(ctx context.Context, tok, login, password string) (server.User, server.UserSession, error) {
	usr := server.User{}
	sess := server.UserSession{}

	if login == "" || password == "" {
		return usr, sess, fmt.Errorf("login and password are required")
	}
	if _, err := s.Invites.Validate(ctx, tok); err != nil {
		return usr, sess, err
	}
	if _, err := s.Users.GetByLogin(ctx, login); err == nil {
		return usr, sess, server.ErrLoginTaken
	} else if !errors.Is(err, shared.ErrNotExist) {
		return usr, sess, err
	}

	cost := s.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return usr, sess, fmt.Errorf("failed to hash password: %w", err)
	}

	usr = server.User{
		ID:           uuid.New(),
		Login:        login,
		PasswordHash: hash,
	}
	err = s.TXRunner.Exec(ctx, func(ctx context.Context) error {
		if err := s.Users.Create(ctx, usr); err != nil {
			return err
		}
		if _, err := s.Invites.Redeem(ctx, tok); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return server.User{}, sess, err
	}

	sess, err = s.createSession(ctx, usr.ID)
	if err != nil {
		return usr, sess, err
	}
	return usr, sess, nil
}

// Login authenticates by login and password. Unknown logins and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, login, password string) (server.User, server.UserSession, error) {
	sess := server.UserSession{}
	usr, err := s.Users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, shared.ErrNotExist) {
			return server.User{}, sess, server.ErrPermissionDenied
		}
		return server.User{}, sess, err
	}
	if bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(password)) != nil {
		return server.User{}, sess, server.ErrPermissionDenied
	}

	sess, err = s.createSession(ctx, usr.ID)
	if err != nil {
		return server.User{}, sess, err
	}
	return usr, sess, nil
}

func (s *UserService) Logout(ctx context.Context, sess server.UserSession) error {
	if err := s.VerifySession(ctx, sess); err != nil {
		return err
	}
	return s.Sessions.Delete(ctx, sess.ID)
}

// VerifySession checks the presented session against the stored one. Any
// mismatch or an expired session reads as ErrPermissionDenied.
func (s *UserService) VerifySession(ctx context.Context, sess server.UserSession) error {
	stored, err := s.Sessions.GetByID(ctx, sess.ID)
	if err != nil {
		return err
	}
	if stored.UserID != sess.UserID {
		return server.ErrPermissionDenied
	}
	if subtle.ConstantTimeCompare(stored.Token, sess.Token) == 0 {
		return server.ErrPermissionDenied
	}
	if time.Now().After(stored.CreatedAt.Add(server.SessionTTL)) {
		return server.ErrPermissionDenied
	}
	return nil
}

// CurrentActor resolves the session into the caller's identity. A missing,
// invalid, or expired session means anonymous, not an error; callers
// memoize the result for the rest of the request.
func (s *UserService) CurrentActor(ctx context.Context, sess server.UserSession) (*server.Actor, error) {
	if err := s.VerifySession(ctx, sess); err != nil {
		if errors.Is(err, shared.ErrNotExist) || errors.Is(err, server.ErrPermissionDenied) {
			return nil, nil
		}
		return nil, err
	}
	usr, err := s.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return &server.Actor{ID: usr.ID, Admin: usr.Admin}, nil
}

// CreateUser creates an account directly, bypassing the invitation gate.
// Reserved for the operator surface (bootstrap and admin management).
func (s *UserService) CreateUser(ctx context.Context, login, password string, admin bool) (server.User, error) {
	usr := server.User{}
	if login == "" || password == "" {
		return usr, fmt.Errorf("login and password are required")
	}
	if _, err := s.Users.GetByLogin(ctx, login); err == nil {
		return usr, server.ErrLoginTaken
	} else if !errors.Is(err, shared.ErrNotExist) {
		return usr, err
	}
	cost := s.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return usr, fmt.Errorf("failed to hash password: %w", err)
	}
	usr = server.User{
		ID:           uuid.New(),
		Login:        login,
		PasswordHash: hash,
		Admin:        admin,
	}
	if err := s.Users.Create(ctx, usr); err != nil {
		return server.User{}, err
	}
	return usr, nil
}

// SetAdmin promotes or demotes a user. Demotion takes effect on the next
// invitation check; outstanding tokens from a demoted admin die with it.
func (s *UserService) SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	if _, err := s.Users.GetByID(ctx, id); err != nil {
		return err
	}
	return s.Users.UpdateAdmin(ctx, id, admin)
}

func (s *UserService) createSession(ctx context.Context, userID uuid.UUID) (server.UserSession, error) {
	sess := server.UserSession{}

	rnd := s.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	tok := make([]byte, sessionTokenSize)
	if _, err := io.ReadFull(rnd, tok); err != nil {
		return sess, fmt.Errorf("failed to generate session token: %w", err)
	}

	sess = server.UserSession{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     tok,
		CreatedAt: time.Now(),
	}
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return server.UserSession{}, err
	}
	return sess, nil
}
