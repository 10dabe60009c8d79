package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/security"
)

type IssuedSession struct {
	SessionID string
	Token     string
	ExpiresAt time.Time
}

type ClientMeta struct {
	UserAgent string
	IP        string
}

// TokenService signs session tokens and keeps the session store in step with
// them: a token is only honoured while its session record is active.
type TokenService struct {
	jwtMgr *security.JWTManager
	store  SessionStore
	ttl    time.Duration
}

func NewTokenService(jwtMgr *security.JWTManager, store SessionStore, ttl time.Duration) *TokenService {
	return &TokenService{jwtMgr: jwtMgr, store: store, ttl: ttl}
}

func (s *TokenService) Issue(ctx context.Context, user *domain.User, meta ClientMeta) (IssuedSession, error) {
	sessionID := uuid.NewString()
	token, expiresAt, err := s.jwtMgr.SignSessionToken(user.ID, user.Username, user.Role, sessionID, s.ttl)
	if err != nil {
		return IssuedSession{}, err
	}
	if err := s.store.Create(ctx, SessionRecord{
		SessionID: sessionID,
		UserID:    user.ID,
		ExpiresAt: expiresAt.UTC(),
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
	}); err != nil {
		return IssuedSession{}, fmt.Errorf("store session: %w", err)
	}
	return IssuedSession{SessionID: sessionID, Token: token, ExpiresAt: expiresAt}, nil
}

// Validate checks the token signature and claims, then confirms the session
// has not been revoked.
func (s *TokenService) Validate(ctx context.Context, raw string) (*security.Claims, error) {
	claims, err := s.jwtMgr.ParseSessionToken(raw)
	if err != nil {
		observability.RecordSessionValidation(ctx, "invalid_token")
		return nil, ErrSessionInvalid
	}
	rec, err := s.store.Lookup(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotActive) {
			observability.RecordSessionValidation(ctx, "revoked")
			return nil, ErrSessionInvalid
		}
		observability.RecordSessionValidation(ctx, "store_error")
		return nil, storageError(err)
	}
	if uid, err := claims.UserID(); err != nil || uid != rec.UserID {
		observability.RecordSessionValidation(ctx, "subject_mismatch")
		return nil, ErrSessionInvalid
	}
	observability.RecordSessionValidation(ctx, "ok")
	return claims, nil
}

func (s *TokenService) Revoke(ctx context.Context, sessionID string) error {
	return s.store.Revoke(ctx, sessionID)
}

func (s *TokenService) RevokeUser(ctx context.Context, userID uint) (int64, error) {
	return s.store.RevokeUser(ctx, userID)
}
