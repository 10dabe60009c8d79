package service

import (
	"context"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/security"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, in RegisterInput) (*domain.UserProfile, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	SendOTP(ctx context.Context, phone, purpose string) (*OTPDispatch, error)
	VerifyOTP(ctx context.Context, phone, code, purpose string) error
	ResetPassword(ctx context.Context, phone, newPassword string) error
	ListUsers(ctx context.Context) ([]domain.UserProfile, error)
	Profile(ctx context.Context, userID uint) (*domain.UserProfile, error)
}

type SessionTokens interface {
	Issue(ctx context.Context, user *domain.User, meta ClientMeta) (IssuedSession, error)
	Revoke(ctx context.Context, sessionID string) error
	RevokeUser(ctx context.Context, userID uint) (int64, error)
}

type SessionValidator interface {
	Validate(ctx context.Context, raw string) (*security.Claims, error)
}

var (
	_ AuthServiceInterface = (*AuthService)(nil)
	_ SessionTokens        = (*TokenService)(nil)
	_ SessionValidator     = (*TokenService)(nil)
)
