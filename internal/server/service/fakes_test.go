package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	server "github.com/charadev96/corkboard/internal/server/domain"
	shared "github.com/charadev96/corkboard/internal/shared/domain"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]server.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uuid.UUID]server.User{}}
}

func (f *fakeUsers) Create(ctx context.Context, u server.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Login == u.Login {
			return fmt.Errorf("login not unique")
		}
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (server.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return server.User{}, shared.ErrNotExist
	}
	return u, nil
}

func (f *fakeUsers) GetByLogin(ctx context.Context, login string) (server.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Login == login {
			return u, nil
		}
	}
	return server.User{}, shared.ErrNotExist
}

func (f *fakeUsers) UpdateAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return shared.ErrNotExist
	}
	u.Admin = admin
	f.users[id] = u
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) snapshot() map[uuid.UUID]server.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make(map[uuid.UUID]server.User, len(f.users))
	for id, u := range f.users {
		users[id] = u
	}
	return users
}

func (f *fakeUsers) restore(users map[uuid.UUID]server.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = users
}

type fakeLedger struct {
	mu  sync.Mutex
	set map[string]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{set: map[string]bool{}}
}

func (f *fakeLedger) Contains(ctx context.Context, nonce []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set[string(nonce)], nil
}

func (f *fakeLedger) Insert(ctx context.Context, nonce []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.set[string(nonce)] {
		return false, nil
	}
	f.set[string(nonce)] = true
	return true, nil
}

type voteKey struct {
	userID uuid.UUID
	postID uuid.UUID
}

type fakeVotes struct {
	mu    sync.Mutex
	votes map[voteKey]int
}

func newFakeVotes() *fakeVotes {
	return &fakeVotes{votes: map[voteKey]int{}}
}

func (f *fakeVotes) Insert(ctx context.Context, v server.Vote) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := voteKey{userID: v.UserID, postID: v.PostID}
	if _, ok := f.votes[key]; ok {
		return false, nil
	}
	f.votes[key] = v.Value
	return true, nil
}

func (f *fakeVotes) Exists(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.votes[voteKey{userID: userID, postID: postID}]
	return ok, nil
}

func (f *fakeVotes) Score(ctx context.Context, postID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	score := 0
	for key, value := range f.votes {
		if key.postID == postID {
			score += value
		}
	}
	return score, nil
}

type fakePosts struct {
	mu    sync.Mutex
	posts map[uuid.UUID]server.Post
}

func newFakePosts() *fakePosts {
	return &fakePosts{posts: map[uuid.UUID]server.Post{}}
}

func (f *fakePosts) Create(ctx context.Context, p server.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[p.ID] = p
	return nil
}

func (f *fakePosts) GetByID(ctx context.Context, id uuid.UUID) (server.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return server.Post{}, shared.ErrNotExist
	}
	return p, nil
}

func (f *fakePosts) List(ctx context.Context) ([]server.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	posts := make([]server.Post, 0, len(f.posts))
	for _, p := range f.posts {
		posts = append(posts, p)
	}
	return posts, nil
}

func (f *fakePosts) Update(ctx context.Context, p server.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[p.ID]; !ok {
		return shared.ErrNotExist
	}
	f.posts[p.ID] = p
	return nil
}

func (f *fakePosts) Search(ctx context.Context, query string) ([]server.Post, error) {
	return f.List(ctx)
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]server.UserSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[uuid.UUID]server.UserSession{}}
}

func (f *fakeSessions) Save(ctx context.Context, sess server.UserSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sess.ID] = sess
	return nil
}

func (f *fakeSessions) GetByID(ctx context.Context, id uuid.UUID) (server.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[id]
	if !ok {
		return server.UserSession{}, shared.ErrNotExist
	}
	return sess, nil
}

func (f *fakeSessions) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

// fakeTxRunner restores the user set when fn fails, mimicking a rollback.
type fakeTxRunner struct {
	users *fakeUsers
}

func (r *fakeTxRunner) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := r.users.snapshot()
	if err := fn(ctx); err != nil {
		r.users.restore(snapshot)
		return err
	}
	return nil
}
