// Package admin is the loopback operator surface: account bootstrap,
// admin promotion, and invite minting. It is meant to be driven by
// adminctl and never exposed publicly.
package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	server "github.com/charadev96/corkboard/internal/server/domain"
	"github.com/charadev96/corkboard/internal/server/service"
	shared "github.com/charadev96/corkboard/internal/shared/domain"
)

type Handler struct {
	Users   *service.UserService
	Invites *service.InviteService
	Logger  *zerolog.Logger
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", h.createUser)
	mux.HandleFunc("POST /users/{id}/admin", h.setAdmin)
	mux.HandleFunc("GET /users/{id}/invite", h.mintInvite)
	return mux
}

type createUserForm struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var form createUserForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	usr, err := h.Users.CreateUser(r.Context(), form.Login, form.Password, form.Admin)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Logger.Info().
		Str("login", usr.Login).
		Bool("admin", usr.Admin).
		Msg("created user")
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": usr.ID.String(), "login": usr.Login})
}

type setAdminForm struct {
	Admin bool `json:"admin"`
}

func (h *Handler) setAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	var form setAdminForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.Users.SetAdmin(r.Context(), id, form.Admin); err != nil {
		h.writeError(w, err)
		return
	}
	h.Logger.Info().
		Str("user", id.String()).
		Bool("admin", form.Admin).
		Msg("updated admin flag")
	h.writeJSON(w, http.StatusOK, map[string]bool{"admin": form.Admin})
}

// mintInvite issues one invitation on behalf of the given admin. The tier
// check still runs: minting for a non-admin is refused.
func (h *Handler) mintInvite(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	usr, err := h.Users.Users.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	tok, err := h.Invites.Issue(r.Context(), &server.Actor{ID: usr.ID, Admin: usr.Admin})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"invite": tok})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, server.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, shared.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, server.ErrLoginTaken):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, server.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
