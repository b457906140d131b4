package service

import (
	"context"

	"github.com/google/uuid"

	server "github.com/charadev96/corkboard/internal/server/domain"
)

// VoteService records signed votes and aggregates post scores.
type VoteService struct {
	Votes server.VoteRepository
	Posts server.PostRepository
}

// Cast records a +1/-1 vote by actor on a post. The returned score is the
// post's current tally whether or not the vote was accepted, so callers
// can always refresh the displayed count. Duplicate detection rides on the
// store's uniqueness guarantee, not on a prior read.
func (s *VoteService) Cast(ctx context.Context, actor *server.Actor, postID uuid.UUID, value int) (int, error) {
	if err := server.Require(server.TierAuthenticatedOnly, actor); err != nil {
		return s.currentScore(ctx, postID), err
	}
	if value != 1 && value != -1 {
		return s.currentScore(ctx, postID), server.ErrInvalidVoteValue
	}
	if _, err := s.Posts.GetByID(ctx, postID); err != nil {
		return 0, err
	}

	added, err := s.Votes.Insert(ctx, server.Vote{
		UserID: actor.ID,
		PostID: postID,
		Value:  value,
	})
	if err != nil {
		return s.currentScore(ctx, postID), err
	}
	if !added {
		return s.currentScore(ctx, postID), server.ErrDuplicateVote
	}

	return s.Votes.Score(ctx, postID)
}

// AlreadyVoted reports whether a user has voted on a post.
func (s *VoteService) AlreadyVoted(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	return s.Votes.Exists(ctx, userID, postID)
}

// currentScore is the failure-path tally; a score of 0 stands in when the
// store cannot answer either.
func (s *VoteService) currentScore(ctx context.Context, postID uuid.UUID) int {
	score, err := s.Votes.Score(ctx, postID)
	if err != nil {
		return 0
	}
	return score
}
