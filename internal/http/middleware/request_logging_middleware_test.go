package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/security"
)

type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func recordAttrs(rec slog.Record) map[string]string {
	out := map[string]string{}
	rec.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.String()
		return true
	})
	return out
}

func TestRequestLoggerLevels(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		want   slog.Level
	}{
		{"success", "/api/users", http.StatusOK, slog.LevelInfo},
		{"client error", "/api/auth/login", http.StatusUnauthorized, slog.LevelWarn},
		{"server error", "/api/auth/register", http.StatusInternalServerError, slog.LevelError},
		{"healthy probe", "/health/live", http.StatusOK, slog.LevelDebug},
		{"failing probe", "/health/ready", http.StatusServiceUnavailable, slog.LevelError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cap := &captureHandler{}
			r := chi.NewRouter()
			r.Use(RequestLogger(slog.New(cap)))
			r.HandleFunc(tc.path, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(tc.status) })

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.RemoteAddr = "198.51.100.10:3456"
			r.ServeHTTP(httptest.NewRecorder(), req)

			if len(cap.records) != 1 {
				t.Fatalf("expected one record, got %d", len(cap.records))
			}
			if cap.records[0].Level != tc.want {
				t.Fatalf("expected level %v, got %v", tc.want, cap.records[0].Level)
			}
			attrs := recordAttrs(cap.records[0])
			if attrs["route"] != tc.path || attrs["client_ip"] != "198.51.100.10:3456" {
				t.Fatalf("unexpected attrs %+v", attrs)
			}
		})
	}
}

func TestRequestLoggerStatusFallbackTo200(t *testing.T) {
	cap := &captureHandler{}
	h := RequestLogger(slog.New(cap))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/none", nil))

	if got := recordAttrs(cap.records[0])["status"]; got != "200" {
		t.Fatalf("expected fallback status 200, got %q", got)
	}
}

func TestRequestLoggerForwardedIP(t *testing.T) {
	cap := &captureHandler{}
	h := RequestLogger(slog.New(cap))(okHandler(http.StatusOK))
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got := recordAttrs(cap.records[0])["client_ip"]; got != "198.51.100.7" {
		t.Fatalf("expected forwarded client ip, got %q", got)
	}
}

func TestRequestLoggerNamesAuthenticatedCaller(t *testing.T) {
	cap := &captureHandler{}
	claims := &security.Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "42"}}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		annotateSession(r.Context(), claims)
		w.WriteHeader(http.StatusOK)
	})
	RequestLogger(slog.New(cap))(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/me", nil))

	attrs := recordAttrs(cap.records[0])
	if attrs["user_id"] != "42" || attrs["role"] != "admin" {
		t.Fatalf("expected caller attrs, got %+v", attrs)
	}
}

func TestAnnotateSessionWithoutLoggerIsNoop(t *testing.T) {
	annotateSession(context.Background(), &security.Claims{Role: "driver"})
}
