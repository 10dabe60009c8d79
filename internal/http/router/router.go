package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/health"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/http/handler"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/http/middleware"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/http/response"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/service"
)

type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	Sessions          service.SessionValidator
	CORSOrigins       []string
	UsersRequireAdmin bool
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
	Logger            *slog.Logger
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(dep.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, "", map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, "", map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, "", map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	requireSession := middleware.AuthMiddleware(dep.Sessions)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", dep.AuthHandler.Register)
			r.Post("/login", dep.AuthHandler.Login)
			r.Post("/send-sms-otp", dep.AuthHandler.SendOTP)
			r.Post("/verify-sms-otp", dep.AuthHandler.VerifyOTP)
			r.Post("/reset-password-phone", dep.AuthHandler.ResetPassword)
			r.With(requireSession).Post("/logout", dep.AuthHandler.Logout)
		})

		r.With(requireSession).Get("/me", dep.UserHandler.Me)

		usersChain := []func(http.Handler) http.Handler{}
		if dep.UsersRequireAdmin {
			usersChain = append(usersChain, requireSession, middleware.RequireRole(domain.RoleAdmin))
		}
		r.With(usersChain...).Get("/users", dep.UserHandler.List)
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
