// Package web is the public JSON surface of the board. Handlers are thin
// glue: they parse the request, call a service, and map the returned
// error to a status. No policy lives here.
package web

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	server "github.com/charadev96/corkboard/internal/server/domain"
	"github.com/charadev96/corkboard/internal/server/handler/requestctx"
	"github.com/charadev96/corkboard/internal/server/service"
	shared "github.com/charadev96/corkboard/internal/shared/domain"
)

const sessionCookie = "corkboard_session"

type Handler struct {
	Users   *service.UserService
	Invites *service.InviteService
	Posts   *service.PostService
	Votes   *service.VoteService
	BaseURL string
	Logger  *zerolog.Logger
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /posts", h.listPosts)
	mux.HandleFunc("GET /posts/search", h.searchPosts)
	mux.HandleFunc("GET /posts/{id}", h.showPost)
	mux.HandleFunc("POST /posts", h.createPost)
	mux.HandleFunc("POST /posts/{id}", h.updatePost)
	mux.HandleFunc("POST /posts/{id}/like", h.like)
	mux.HandleFunc("POST /posts/{id}/dislike", h.dislike)

	mux.HandleFunc("POST /users", h.register)
	mux.HandleFunc("GET /users/invites", h.invites)

	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /logout", h.logout)

	mux.HandleFunc("GET /{$}", h.listPosts)

	return h.withActor(mux)
}

// withActor resolves the caller's identity once and pins it to the request
// context. Handlers downstream never touch session state again.
func (h *Handler) withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := h.sessionFromRequest(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		actor, err := h.Users.CurrentActor(r.Context(), sess)
		if err != nil {
			h.Logger.Error().Err(err).Msg("failed to resolve actor")
			h.writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(requestctx.WithActor(r.Context(), actor)))
	})
}

func (h *Handler) sessionFromRequest(r *http.Request) (server.UserSession, bool) {
	sess := server.UserSession{}
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return sess, false
	}
	id, rest, ok := strings.Cut(cookie.Value, ".")
	if !ok {
		return sess, false
	}
	sessID, err := uuid.Parse(id)
	if err != nil {
		return sess, false
	}
	userID, tok, ok := strings.Cut(rest, ".")
	if !ok {
		return sess, false
	}
	sess.ID = sessID
	if sess.UserID, err = uuid.Parse(userID); err != nil {
		return server.UserSession{}, false
	}
	if sess.Token, err = hex.DecodeString(tok); err != nil {
		return server.UserSession{}, false
	}
	return sess, true
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sess server.UserSession) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID.String() + "." + sess.UserID.String() + "." + hex.EncodeToString(sess.Token),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, statusFor(err), map[string]string{"error": userMessage(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, server.ErrPermissionDenied):
		return http.StatusUnauthorized
	case errors.Is(err, server.ErrTokenInvalid),
		errors.Is(err, server.ErrAlreadyRedeemed),
		errors.Is(err, server.ErrIssuerNotFound):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, server.ErrInvalidVoteValue),
		errors.Is(err, server.ErrPostNameRequired),
		errors.Is(err, server.ErrPostBodyRequired),
		errors.Is(err, server.ErrLoginTaken):
		return http.StatusUnprocessableEntity
	case errors.Is(err, server.ErrDuplicateVote):
		return http.StatusConflict
	case errors.Is(err, server.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userMessage folds the invitation failure modes into one user-facing
// string; whether a token fragment was ever well formed is not leaked.
// Callers who need the distinction have the error itself.
func userMessage(err error) string {
	switch {
	case errors.Is(err, server.ErrTokenInvalid),
		errors.Is(err, server.ErrAlreadyRedeemed),
		errors.Is(err, server.ErrIssuerNotFound):
		return "invitation link is not valid"
	case errors.Is(err, server.ErrPermissionDenied):
		return "access denied"
	case errors.Is(err, shared.ErrNotExist):
		return "not found"
	case errors.Is(err, server.ErrInvalidVoteValue),
		errors.Is(err, server.ErrDuplicateVote),
		errors.Is(err, server.ErrPostNameRequired),
		errors.Is(err, server.ErrPostBodyRequired),
		errors.Is(err, server.ErrLoginTaken):
		return err.Error()
	case errors.Is(err, server.ErrStorageUnavailable):
		return "temporarily unavailable, please retry"
	default:
		return "internal error"
	}
}
