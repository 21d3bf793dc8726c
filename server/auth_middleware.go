package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-dbgate/gate"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySessionToken stores the opaque session token unwrapped from the
// bearer JWT.
const ContextKeySessionToken ContextKey = "session_token"

// SessionTokenFromContext returns the session token placed by RequireBearer.
// An absent token yields the empty string, which the gateway denies with
// "authentication required" like any other invalid session handle.
func SessionTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(ContextKeySessionToken).(string)
	return token
}

// RequireBearer is middleware that unwraps the bearer JWT issued at
// authenticate time and injects the inner session token into the request
// context. A missing or malformed header is reported as the same
// "authentication required" denial the gateway produces, so callers see a
// single taxonomy.
func (s *Server) RequireBearer() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeDenied(w, http.StatusUnauthorized, gate.DeniedAuthenticationRequired)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				writeDenied(w, http.StatusUnauthorized, gate.DeniedAuthenticationRequired)
				return
			}

			sessionToken, err := s.tokens.Parse(parts[1])
			if err != nil {
				writeDenied(w, http.StatusUnauthorized, gate.DeniedAuthenticationRequired)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySessionToken, sessionToken)
			next(w, r.WithContext(ctx))
		}
	}
}
