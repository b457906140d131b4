package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	server "github.com/charadev96/corkboard/internal/server/domain"
)

// PostService manages board posts. Writing is an admin privilege; reading
// is open to everyone.
type PostService struct {
	Posts server.PostRepository
	Votes server.VoteRepository
}

// ScoredPost is a post with its aggregate vote tally.
type ScoredPost struct {
	server.Post
	Score int
}

func (s *PostService) Create(ctx context.Context, actor *server.Actor, name, body string) (server.Post, error) {
	if err := server.Require(server.TierAdminOnly, actor); err != nil {
		return server.Post{}, err
	}
	p := server.Post{
		ID:   uuid.New(),
		Name: name,
		Body: body,
	}
	if err := p.Validate(); err != nil {
		return server.Post{}, err
	}
	if err := s.Posts.Create(ctx, p); err != nil {
		return server.Post{}, err
	}
	return p, nil
}

func (s *PostService) Update(ctx context.Context, actor *server.Actor, id uuid.UUID, name, body string) (server.Post, error) {
	if err := server.Require(server.TierAdminOnly, actor); err != nil {
		return server.Post{}, err
	}
	if _, err := s.Posts.GetByID(ctx, id); err != nil {
		return server.Post{}, err
	}
	p := server.Post{
		ID:   id,
		Name: name,
		Body: body,
	}
	if err := p.Validate(); err != nil {
		return server.Post{}, err
	}
	if err := s.Posts.Update(ctx, p); err != nil {
		return server.Post{}, err
	}
	return p, nil
}

func (s *PostService) Get(ctx context.Context, id uuid.UUID) (ScoredPost, error) {
	p, err := s.Posts.GetByID(ctx, id)
	if err != nil {
		return ScoredPost{}, err
	}
	score, err := s.Votes.Score(ctx, id)
	if err != nil {
		return ScoredPost{}, err
	}
	return ScoredPost{Post: p, Score: score}, nil
}

func (s *PostService) List(ctx context.Context) ([]ScoredPost, error) {
	posts, err := s.Posts.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.withScores(ctx, posts)
}

func (s *PostService) Search(ctx context.Context, query string) ([]ScoredPost, error) {
	posts, err := s.Posts.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.withScores(ctx, posts)
}

func (s *PostService) withScores(ctx context.Context, posts []server.Post) ([]ScoredPost, error) {
	scored := make([]ScoredPost, 0, len(posts))
	for _, p := range posts {
		score, err := s.Votes.Score(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to score post: %w", err)
		}
		scored = append(scored, ScoredPost{Post: p, Score: score})
	}
	return scored, nil
}
