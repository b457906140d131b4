package web

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/crypto/bcrypt"

	"github.com/charadev96/corkboard/internal/server/repository"
	"github.com/charadev96/corkboard/internal/server/service"
	"github.com/charadev96/corkboard/internal/server/token"
	"github.com/charadev96/corkboard/internal/shared/infra"
)

type testEnv struct {
	srv   *httptest.Server
	users *service.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		db.Close()
	})

	users, err := repository.NewBunUserRepository(ctx, db)
	if err != nil {
		t.Fatalf("failed to create user repository: %v", err)
	}
	posts, err := repository.NewBunPostRepository(ctx, db)
	if err != nil {
		t.Fatalf("failed to create post repository: %v", err)
	}
	votes, err := repository.NewBunVoteRepository(ctx, db)
	if err != nil {
		t.Fatalf("failed to create vote repository: %v", err)
	}
	sessions, err := repository.NewBunUserSessionRepository(ctx, db)
	if err != nil {
		t.Fatalf("failed to create session repository: %v", err)
	}
	nonces, err := repository.NewBunNonceLedger(ctx, db)
	if err != nil {
		t.Fatalf("failed to create nonce ledger: %v", err)
	}

	codec, err := token.NewCodec(bytes.Repeat([]byte{0x07}, token.KeySize))
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}

	inviteService := &service.InviteService{Codec: codec, Users: users, Nonces: nonces}
	userService := &service.UserService{
		Users:      users,
		Sessions:   sessions,
		Invites:    inviteService,
		TXRunner:   infra.NewBunTransactionRunner(db),
		BcryptCost: bcrypt.MinCost,
	}

	logger := zerolog.Nop()
	h := &Handler{
		Users:   userService,
		Invites: inviteService,
		Posts:   &service.PostService{Posts: posts, Votes: votes},
		Votes:   &service.VoteService{Votes: votes, Posts: posts},
		Logger:  &logger,
	}
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	h.BaseURL = srv.URL

	return &testEnv{srv: srv, users: userService}
}

func (e *testEnv) addUser(t *testing.T, login, password string, admin bool) {
	t.Helper()
	if _, err := e.users.CreateUser(context.Background(), login, password, admin); err != nil {
		t.Fatalf("failed to create user %q: %v", login, err)
	}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) (int, []byte) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	return resp.StatusCode, raw
}

func get(t *testing.T, client *http.Client, url string) (int, []byte) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	return resp.StatusCode, raw
}

func login(t *testing.T, client *http.Client, base, user, password string) {
	t.Helper()
	status, raw := postJSON(t, client, base+"/login", map[string]string{
		"login":    user,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login failed with %d: %s", status, raw)
	}
}

func TestInvitationFlow(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "admin", "correct horse", true)

	adminClient := newClient(t)
	login(t, adminClient, env.srv.URL, "admin", "correct horse")

	status, raw := get(t, adminClient, env.srv.URL+"/users/invites")
	if status != http.StatusOK {
		t.Fatalf("invites failed with %d: %s", status, raw)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 invite URLs, got %d", len(lines))
	}
	inviteURL, err := url.Parse(lines[0])
	if err != nil {
		t.Fatalf("invalid invite URL %q: %v", lines[0], err)
	}
	invite := inviteURL.Query().Get("invite")
	if invite == "" {
		t.Fatalf("invite URL %q carries no token", lines[0])
	}

	// The invitation admits exactly one registration.
	anon := newClient(t)
	status, raw = postJSON(t, anon, env.srv.URL+"/users", map[string]string{
		"invite":   invite,
		"login":    "newcomer",
		"password": "hunter2",
	})
	if status != http.StatusCreated {
		t.Fatalf("register failed with %d: %s", status, raw)
	}

	second := newClient(t)
	status, raw = postJSON(t, second, env.srv.URL+"/users", map[string]string{
		"invite":   invite,
		"login":    "freeloader",
		"password": "hunter2",
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for redeemed invite, got %d: %s", status, raw)
	}
	var reply map[string]string
	if err := json.Unmarshal(raw, &reply); err != nil {
		t.Fatalf("failed to parse error reply: %v", err)
	}
	if reply["error"] != "invitation link is not valid" {
		t.Fatalf("unexpected user message %q", reply["error"])
	}
}

func TestRegistrationRejectsGarbageToken(t *testing.T) {
	env := newTestEnv(t)

	status, raw := postJSON(t, newClient(t), env.srv.URL+"/users", map[string]string{
		"invite":   "garbage",
		"login":    "newcomer",
		"password": "hunter2",
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", status, raw)
	}
	var reply map[string]string
	if err := json.Unmarshal(raw, &reply); err != nil {
		t.Fatalf("failed to parse error reply: %v", err)
	}
	// Malformed and redeemed tokens present identically.
	if reply["error"] != "invitation link is not valid" {
		t.Fatalf("unexpected user message %q", reply["error"])
	}
}

func TestRegistrationIsAnonymousOnly(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "admin", "correct horse", true)

	adminClient := newClient(t)
	login(t, adminClient, env.srv.URL, "admin", "correct horse")

	status, _ := postJSON(t, adminClient, env.srv.URL+"/users", map[string]string{
		"invite":   "irrelevant",
		"login":    "other",
		"password": "hunter2",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for logged-in registration, got %d", status)
	}
}

func TestInvitesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "member", "hunter2", false)

	memberClient := newClient(t)
	login(t, memberClient, env.srv.URL, "member", "hunter2")

	if status, _ := get(t, memberClient, env.srv.URL+"/users/invites"); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-admin invites, got %d", status)
	}
	if status, _ := get(t, newClient(t), env.srv.URL+"/users/invites"); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous invites, got %d", status)
	}
}

func TestVotingFlow(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "admin", "correct horse", true)
	env.addUser(t, "member", "hunter2", false)

	adminClient := newClient(t)
	login(t, adminClient, env.srv.URL, "admin", "correct horse")

	status, raw := postJSON(t, adminClient, env.srv.URL+"/posts", map[string]string{
		"name": "welcome",
		"body": "hello board",
	})
	if status != http.StatusCreated {
		t.Fatalf("create post failed with %d: %s", status, raw)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("failed to parse post reply: %v", err)
	}

	memberClient := newClient(t)
	login(t, memberClient, env.srv.URL, "member", "hunter2")

	var vote struct {
		Error string `json:"error"`
		Votes int    `json:"votes"`
	}

	status, raw = postJSON(t, memberClient, env.srv.URL+"/posts/"+created.ID+"/like", nil)
	if status != http.StatusOK {
		t.Fatalf("like failed with %d: %s", status, raw)
	}
	if err := json.Unmarshal(raw, &vote); err != nil {
		t.Fatalf("failed to parse vote reply: %v", err)
	}
	if vote.Error != "" || vote.Votes != 1 {
		t.Fatalf("expected clean +1, got %+v", vote)
	}

	// A second vote by the same user fails but still reports the tally.
	status, raw = postJSON(t, memberClient, env.srv.URL+"/posts/"+created.ID+"/dislike", nil)
	if status != http.StatusOK {
		t.Fatalf("dislike failed with %d: %s", status, raw)
	}
	if err := json.Unmarshal(raw, &vote); err != nil {
		t.Fatalf("failed to parse vote reply: %v", err)
	}
	if vote.Error == "" {
		t.Fatal("expected duplicate vote error")
	}
	if vote.Votes != 1 {
		t.Fatalf("expected tally to stay at 1, got %d", vote.Votes)
	}

	// Anonymous voters are refused; the tally is still current.
	status, raw = postJSON(t, newClient(t), env.srv.URL+"/posts/"+created.ID+"/like", nil)
	if status != http.StatusOK {
		t.Fatalf("anonymous like failed with %d: %s", status, raw)
	}
	if err := json.Unmarshal(raw, &vote); err != nil {
		t.Fatalf("failed to parse vote reply: %v", err)
	}
	if vote.Error == "" || vote.Votes != 1 {
		t.Fatalf("expected denial with tally 1, got %+v", vote)
	}

	status, raw = get(t, memberClient, env.srv.URL+"/posts/"+created.ID)
	if status != http.StatusOK {
		t.Fatalf("show post failed with %d: %s", status, raw)
	}
	var shown struct {
		Score        int  `json:"score"`
		AlreadyVoted bool `json:"already_voted"`
	}
	if err := json.Unmarshal(raw, &shown); err != nil {
		t.Fatalf("failed to parse post reply: %v", err)
	}
	if shown.Score != 1 || !shown.AlreadyVoted {
		t.Fatalf("expected score 1 and already_voted, got %+v", shown)
	}
}

func TestPostWritesAreAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "member", "hunter2", false)

	memberClient := newClient(t)
	login(t, memberClient, env.srv.URL, "member", "hunter2")

	status, _ := postJSON(t, memberClient, env.srv.URL+"/posts", map[string]string{
		"name": "rogue",
		"body": "post",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for member post creation, got %d", status)
	}
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "member", "hunter2", false)

	client := newClient(t)
	status, _ := postJSON(t, client, env.srv.URL+"/login", map[string]string{
		"login":    "member",
		"password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", status)
	}

	login(t, client, env.srv.URL, "member", "hunter2")

	status, _ = postJSON(t, client, env.srv.URL+"/logout", nil)
	if status != http.StatusOK {
		t.Fatalf("logout failed with %d", status)
	}
	status, _ = postJSON(t, client, env.srv.URL+"/logout", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for logged-out logout, got %d", status)
	}
}
