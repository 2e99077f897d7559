package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/arefin/newshub/internal/model"
)

var errNoToken = errors.New("auth: no bearer token")

// contextKey is unexported so no other package can read or shadow the
// actor stored in a request context.
type contextKey string

const actorKey contextKey = "actor"

// RequireAuth enforces authentication: the request must carry a valid
// bearer token for a user or admin. The resolved actor is stored in the
// request context; missing or invalid tokens end the chain with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := actorFromRequest(r, tokens)
			if err != nil || !actor.IsAuthenticated() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"message":"valid authentication required"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireAdmin enforces an admin session. Authenticated non-admin actors
// get 403; everything else gets 401.
func RequireAdmin(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := actorFromRequest(r, tokens)
			if err != nil || !actor.IsAuthenticated() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"message":"valid authentication required"}`))
				return
			}
			if !actor.IsAdmin() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"success":false,"message":"admin access required"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// OptionalAuth resolves the actor when a valid token is present but never
// blocks the request: anonymous requests pass through with the anonymous
// actor. Used on routes that serve everyone but behave differently for
// authenticated callers.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor, err := actorFromRequest(r, tokens); err == nil && actor.IsAuthenticated() {
				r = r.WithContext(WithActor(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the actor attached to the request, or the
// anonymous actor when none was resolved.
func ActorFromContext(ctx context.Context) model.Actor {
	if actor, ok := ctx.Value(actorKey).(model.Actor); ok {
		return actor
	}
	return model.Anonymous
}

// actorFromRequest reads the Authorization header ("Bearer <token>") and
// validates the token. The clients send the session token this way on
// every API call that needs identity.
func actorFromRequest(r *http.Request, tokens *TokenService) (model.Actor, error) {
	header := r.Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		return model.Anonymous, errNoToken
	}
	return tokens.Validate(tokenStr)
}
