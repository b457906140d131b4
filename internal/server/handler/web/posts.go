package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	server "github.com/charadev96/corkboard/internal/server/domain"
	"github.com/charadev96/corkboard/internal/server/handler/requestctx"
	"github.com/charadev96/corkboard/internal/server/service"
	shared "github.com/charadev96/corkboard/internal/shared/domain"
)

type postReply struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Body  string `json:"body"`
	Score int    `json:"score"`
}

type postForm struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// voteReply mirrors the contract the board's front end expects: the error
// string is empty on success, and the tally is always current.
type voteReply struct {
	Error string `json:"error"`
	Votes int    `json:"votes"`
}

func toPostReply(p service.ScoredPost) postReply {
	return postReply{
		ID:    p.ID.String(),
		Name:  p.Name,
		Body:  p.Body,
		Score: p.Score,
	}
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	replies := make([]postReply, 0, len(posts))
	for _, p := range posts {
		replies = append(replies, toPostReply(p))
	}
	h.writeJSON(w, http.StatusOK, replies)
}

func (h *Handler) searchPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	replies := make([]postReply, 0, len(posts))
	for _, p := range posts {
		replies = append(replies, toPostReply(p))
	}
	h.writeJSON(w, http.StatusOK, replies)
}

func (h *Handler) showPost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, shared.ErrNotExist)
		return
	}
	p, err := h.Posts.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	reply := struct {
		postReply
		AlreadyVoted bool `json:"already_voted"`
	}{postReply: toPostReply(p)}

	if actor := requestctx.Actor(r.Context()); actor != nil {
		voted, err := h.Votes.AlreadyVoted(r.Context(), actor.ID, id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		reply.AlreadyVoted = voted
	}
	h.writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var form postForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.Posts.Create(r.Context(), requestctx.Actor(r.Context()), form.Name, form.Body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toPostReply(service.ScoredPost{Post: p}))
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, shared.ErrNotExist)
		return
	}
	var form postForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.Posts.Update(r.Context(), requestctx.Actor(r.Context()), id, form.Name, form.Body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	score, err := h.Votes.Votes.Score(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPostReply(service.ScoredPost{Post: p, Score: score}))
}

func (h *Handler) like(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, 1)
}

func (h *Handler) dislike(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, -1)
}

func (h *Handler) vote(w http.ResponseWriter, r *http.Request, value int) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, shared.ErrNotExist)
		return
	}

	score, err := h.Votes.Cast(r.Context(), requestctx.Actor(r.Context()), id, value)
	if err != nil {
		if errors.Is(err, shared.ErrNotExist) || errors.Is(err, server.ErrStorageUnavailable) {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, voteReply{Error: userMessage(err), Votes: score})
		return
	}
	h.writeJSON(w, http.StatusOK, voteReply{Votes: score})
}
