package httpapi

import (
	"context"
	"net/http"
	"strings"
)

// SessionAuthenticator validates admin session tokens.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) error
}

// NewAdminAuthMiddleware enforces Authorization: Bearer <session token> on admin routes.
//
// On success, it stores the raw token in request context (used by logout).
func NewAdminAuthMiddleware(a SessionAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing Authorization header", nil)
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "malformed Authorization header", nil)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
			if raw == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
				return
			}

			if err := a.Authenticate(r.Context(), raw); err != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired session", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSessionToken(r.Context(), raw)))
		})
	}
}
