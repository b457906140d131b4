package web

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	server "github.com/charadev96/corkboard/internal/server/domain"
	"github.com/charadev96/corkboard/internal/server/handler/requestctx"
)

const inviteBatchSize = 10

type registerForm struct {
	Invite   string `json:"invite"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type userReply struct {
	ID    string `json:"id"`
	Login string `json:"login"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if err := server.Require(server.TierAnonymousOnly, requestctx.Actor(r.Context())); err != nil {
		h.writeError(w, err)
		return
	}

	var form registerForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	usr, sess, err := h.Users.Register(r.Context(), form.Invite, form.Login, form.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.setSessionCookie(w, sess)
	h.writeJSON(w, http.StatusCreated, userReply{ID: usr.ID.String(), Login: usr.Login})
}

// invites mints a batch of registration links for the requesting admin.
func (h *Handler) invites(w http.ResponseWriter, r *http.Request) {
	actor := requestctx.Actor(r.Context())
	if err := server.Require(server.TierAdminOnly, actor); err != nil {
		h.writeError(w, err)
		return
	}

	urls := make([]string, 0, inviteBatchSize)
	for range inviteBatchSize {
		tok, err := h.Invites.Issue(r.Context(), actor)
		if err != nil {
			h.writeError(w, err)
			return
		}
		urls = append(urls, h.BaseURL+"/users/new?invite="+url.QueryEscape(tok))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(strings.Join(urls, "\n")))
}
