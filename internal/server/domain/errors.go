package domain

import "errors"

var (
	ErrPermissionDenied   = errors.New("access denied")
	ErrTokenInvalid       = errors.New("invalid invitation token")
	ErrIssuerNotFound     = errors.New("invitation issuer not found")
	ErrAlreadyRedeemed    = errors.New("invitation already redeemed")
	ErrInvalidVoteValue   = errors.New("vote value must be +1 or -1")
	ErrDuplicateVote      = errors.New("user already voted on this post")
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrPostNameRequired = errors.New("post name is required")
	ErrPostBodyRequired = errors.New("post body is required")
	ErrLoginTaken       = errors.New("login already taken")
)
