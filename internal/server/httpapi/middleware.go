package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/medvault/internal/server/auth"
)

type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFromContext returns the verified token claims stored by the
// authentication middleware.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// authenticate verifies the bearer token and stores its claims in the
// request context. Every rejection, whatever its cause, is the same 401:
// the reason is logged and audited server-side, never sent to the client.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := s.auth.VerifyToken(r.Context(), token)
		if err != nil {
			s.logger.Debug(r.Context(), "token rejected", "error", err.Error())
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireCapability gates a route on the caller's role.
func (s *Server) requireCapability(cap auth.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if !claims.Role.Valid() || !claims.Role.Can(cap) {
				writeJSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
