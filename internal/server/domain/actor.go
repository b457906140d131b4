package domain

import (
	"github.com/google/uuid"
)

// Actor is the identity of the current caller, resolved once per request
// from session state. A nil *Actor means the caller is anonymous.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

// Tier is the access level an operation demands.
type Tier int

const (
	TierAnonymous Tier = iota
	TierAuthenticatedOnly
	TierAnonymousOnly
	TierAdminOnly
)

// Require checks actor against tier.
func Require(tier Tier, actor *Actor) error {
	switch tier {
	case TierAuthenticatedOnly:
		if actor == nil {
			return ErrPermissionDenied
		}
	case TierAnonymousOnly:
		if actor != nil {
			return ErrPermissionDenied
		}
	case TierAdminOnly:
		if actor == nil || !actor.Admin {
			return ErrPermissionDenied
		}
	}
	return nil
}
