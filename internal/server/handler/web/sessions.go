package web

import (
	"encoding/json"
	"net/http"

	server "github.com/charadev96/corkboard/internal/server/domain"
	"github.com/charadev96/corkboard/internal/server/handler/requestctx"
)

type loginForm struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := server.Require(server.TierAnonymousOnly, requestctx.Actor(r.Context())); err != nil {
		h.writeError(w, err)
		return
	}

	var form loginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	usr, sess, err := h.Users.Login(r.Context(), form.Login, form.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.setSessionCookie(w, sess)
	h.writeJSON(w, http.StatusOK, userReply{ID: usr.ID.String(), Login: usr.Login})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := server.Require(server.TierAuthenticatedOnly, requestctx.Actor(r.Context())); err != nil {
		h.writeError(w, err)
		return
	}

	sess, ok := h.sessionFromRequest(r)
	if !ok {
		h.writeError(w, server.ErrPermissionDenied)
		return
	}
	if err := h.Users.Logout(r.Context(), sess); err != nil {
		h.writeError(w, err)
		return
	}

	h.clearSessionCookie(w)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
