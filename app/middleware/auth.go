package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"mingle/app/models"
)

type contextKey string

const authContextKey contextKey = "auth_context"

// AuthTokenHeader carries the token issued at login.
const AuthTokenHeader = "auth-token"

// Authenticator resolves a token to the identity it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.AuthContext, error)
}

// RequireAuth rejects requests without a valid token before they reach the
// wrapped handler. The token is read from the auth-token header, falling
// back to an Authorization Bearer token.
func RequireAuth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "Access denied. No token provided.")
				return
			}

			identity, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "Invalid token.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), identity)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(AuthTokenHeader)); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// WithAuth stores the caller's identity in ctx.
func WithAuth(ctx context.Context, identity models.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, identity)
}

// AuthFromContext returns the identity stored by RequireAuth.
func AuthFromContext(ctx context.Context) (models.AuthContext, bool) {
	identity, ok := ctx.Value(authContextKey).(models.AuthContext)
	return identity, ok
}

// writeError writes a JSON error response in the same shape the controllers use
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message}); err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
