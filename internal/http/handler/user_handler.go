package handler

import (
	"log/slog"
	"net/http"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/http/middleware"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/http/response"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/service"
)

type UserHandler struct {
	authSvc service.AuthServiceInterface
	logger  *slog.Logger
}

func NewUserHandler(authSvc service.AuthServiceInterface, logger *slog.Logger) *UserHandler {
	return &UserHandler{authSvc: authSvc, logger: logger}
}

type userListResponse struct {
	Success bool                 `json:"success"`
	Users   []domain.UserProfile `json:"users"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	profile, err := h.authSvc.Profile(r.Context(), userID)
	if err != nil {
		if writeServiceError(w, r, err) >= http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "load profile failed", "user_id", userID, "error", err)
		}
		return
	}
	response.JSON(w, r, http.StatusOK, "", profile)
}

// List keeps the flat {"success","users"} shape existing clients read.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.authSvc.ListUsers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list users failed", "error", err)
		writeServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []domain.UserProfile{}
	}
	response.Raw(w, http.StatusOK, userListResponse{Success: true, Users: users})
}
