package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/talentbridge/backend/internal/auth"
)

type contextKey string

const ctxActorKey contextKey = "actor"

// BearerAuth authenticates requests by validating the Authorization bearer
// token and sets the resolved actor into request context. Missing or invalid
// credentials are a 401; role checks stay with the handlers (403).
func BearerAuth(authSvc auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				writeAuthError(w, "Missing or malformed Authorization header.")
				return
			}

			actor, err := authSvc.ValidateToken(r.Context(), raw)
			if err != nil {
				writeAuthError(w, "Invalid or expired token.")
				return
			}

			ctx := context.WithValue(r.Context(), ctxActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromCtx returns the authenticated actor or nil.
func ActorFromCtx(ctx context.Context) *auth.Actor {
	a, _ := ctx.Value(ctxActorKey).(*auth.Actor)
	return a
}

// WithActor returns a context carrying the given actor.
func WithActor(ctx context.Context, a *auth.Actor) context.Context {
	return context.WithValue(ctx, ctxActorKey, a)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":"` + msg + `","code":"UNAUTHORIZED"}`))
}
