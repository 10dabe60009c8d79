package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/security"
)

const requestAuditKey contextKey = "request_audit"

// requestAudit is filled in by inner middleware so the access log can name the
// authenticated caller.
type requestAudit struct {
	subject string
	role    string
}

func annotateSession(ctx context.Context, claims *security.Claims) {
	if a, ok := ctx.Value(requestAuditKey).(*requestAudit); ok && claims != nil {
		a.subject = claims.Subject
		a.role = claims.Role
	}
}

// RequestLogger emits one structured line per request. Client errors log at
// warn and server errors at error; successful health probes drop to debug.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			audit := &requestAudit{}
			r = r.WithContext(context.WithValue(r.Context(), requestAuditKey, audit))
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := ""
			if rc := chi.RouteContext(r.Context()); rc != nil {
				route = rc.RoutePattern()
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", route),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
				slog.String("client_ip", ClientIP(r)),
				slog.String("user_agent", r.UserAgent()),
			}
			if audit.subject != "" {
				attrs = append(attrs, slog.String("user_id", audit.subject), slog.String("role", audit.role))
			}
			logger.LogAttrs(r.Context(), accessLogLevel(r.URL.Path, status), "http.request", attrs...)
		})
	}
}

func accessLogLevel(path string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case strings.HasPrefix(path, "/health/"):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
