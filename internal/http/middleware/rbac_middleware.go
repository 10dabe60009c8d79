package middleware

import (
	"net/http"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/http/response"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
)

// RequireRole must run after AuthMiddleware. The role is read from the
// session token claims.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				observability.RecordMiddlewareValidationEvent(r.Context(), "role", "forbidden")
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient role", map[string]any{"required": roles})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
