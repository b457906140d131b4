package domain

import (
	"context"

	"github.com/google/uuid"
)

// Vote is a single signed vote. At most one exists per (UserID, PostID);
// votes are never edited or overwritten.
type Vote struct {
	UserID uuid.UUID
	PostID uuid.UUID
	Value  int
}

type VoteRepository interface {
	// Insert atomically records v and reports whether it was newly added.
	// The (user, post) uniqueness lives in the store, not here.
	Insert(ctx context.Context, v Vote) (bool, error)
	Exists(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	// Score sums the vote values for a post.
	Score(ctx context.Context, postID uuid.UUID) (int, error)
}
