package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/http/response"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/security"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/service"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
)

// AuthMiddleware accepts a bearer session token and rejects the request unless
// the token verifies and its session is still active.
func AuthMiddleware(sessions service.SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				observability.RecordMiddlewareValidationEvent(r.Context(), "auth", "missing_token")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session token", nil)
				return
			}
			claims, err := sessions.Validate(r.Context(), raw)
			if err != nil {
				if errors.Is(err, service.ErrStorage) {
					observability.RecordMiddlewareValidationEvent(r.Context(), "auth", "store_error")
					response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "session store unavailable", nil)
					return
				}
				observability.RecordMiddlewareValidationEvent(r.Context(), "auth", "invalid_token")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired session", nil)
				return
			}
			annotateSession(r.Context(), claims)
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// ClientIP prefers the first X-Forwarded-For hop over the socket address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return r.RemoteAddr
}
