package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/http/middleware"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/http/response"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthServiceInterface
	logger  *slog.Logger
}

func NewAuthHandler(authSvc service.AuthServiceInterface, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

type loginResponse struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type otpResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	Delivered bool      `json:"delivered"`
	DebugOTP  string    `json:"debug_otp,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusCreated
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "register", statusLabel(status), time.Since(start))
	}()

	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		status = http.StatusBadRequest
		return
	}
	profile, err := h.authSvc.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		status = h.fail(w, r, "register", err)
		return
	}
	response.JSON(w, r, http.StatusCreated, "Registration successful! Please login.", profile)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", statusLabel(status), time.Since(start))
	}()

	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		status = http.StatusBadRequest
		return
	}
	result, err := h.authSvc.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		Meta:     service.ClientMeta{UserAgent: r.UserAgent(), IP: middleware.ClientIP(r)},
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			status = http.StatusUnauthorized
			response.Error(w, r, status, "USER_NOT_FOUND", "User not found.", nil)
			return
		}
		status = h.fail(w, r, "login", err)
		return
	}
	response.JSON(w, r, http.StatusOK, "Login successful!", loginResponse{
		Username:     result.User.Username,
		Email:        result.User.Email,
		Role:         result.User.Role,
		SessionToken: result.SessionToken,
		ExpiresAt:    result.ExpiresAt,
	})
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "send_otp", statusLabel(status), time.Since(start))
	}()

	var req sendOTPRequest
	if !decodeAndValidate(w, r, &req) {
		status = http.StatusBadRequest
		return
	}
	dispatch, err := h.authSvc.SendOTP(r.Context(), req.Phone, req.Purpose)
	if err != nil {
		status = h.fail(w, r, "send_otp", err)
		return
	}
	response.JSON(w, r, http.StatusOK, fmt.Sprintf("OTP sent to %s via SMS!", dispatch.Phone), otpResponse{
		ExpiresAt: dispatch.ExpiresAt,
		Delivered: dispatch.Delivered,
		DebugOTP:  dispatch.DebugCode,
	})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "verify_otp", statusLabel(status), time.Since(start))
	}()

	var req verifyOTPRequest
	if !decodeAndValidate(w, r, &req) {
		status = http.StatusBadRequest
		return
	}
	if err := h.authSvc.VerifyOTP(r.Context(), req.Phone, req.OTP, req.Purpose); err != nil {
		status = h.fail(w, r, "verify_otp", err)
		return
	}
	response.JSON(w, r, http.StatusOK, "OTP verified!", nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "reset_password", statusLabel(status), time.Since(start))
	}()

	var req resetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		status = http.StatusBadRequest
		return
	}
	if err := h.authSvc.ResetPassword(r.Context(), req.Phone, req.Password); err != nil {
		status = h.fail(w, r, "reset_password", err)
		return
	}
	response.JSON(w, r, http.StatusOK, "Password reset successful!", nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "logout", statusLabel(status), time.Since(start))
	}()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		status = http.StatusUnauthorized
		response.Error(w, r, status, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	if err := h.authSvc.Logout(r.Context(), claims.ID); err != nil {
		status = h.fail(w, r, "logout", err)
		return
	}
	response.JSON(w, r, http.StatusOK, "Logged out.", nil)
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) int {
	status := writeServiceError(w, r, err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "auth request failed", "op", op, "error", err)
	}
	return status
}
