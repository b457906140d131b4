// Package requestctx carries the per-request actor through the handler
// chain. The actor is resolved once from session state and treated as
// immutable for the rest of the request.
package requestctx

import (
	"context"

	server "github.com/charadev96/corkboard/internal/server/domain"
)

type contextKey struct{}

var actorContextKey = &contextKey{}

func WithActor(ctx context.Context, actor *server.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// Actor returns the request's actor, or nil for anonymous callers.
func Actor(ctx context.Context) *server.Actor {
	if actor, ok := ctx.Value(actorContextKey).(*server.Actor); ok {
		return actor
	}
	return nil
}
