package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
)

type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	FindActive(ctx context.Context, sessionID string, now time.Time) (*domain.Session, error)
	Revoke(ctx context.Context, sessionID string, now time.Time) error
	RevokeByUserID(ctx context.Context, userID uint, now time.Time) (int64, error)
	CleanupExpired(ctx context.Context, now time.Time) (int64, error)
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &GormSessionRepository{db: db} }

func (r *GormSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "create", "error")
		return storageError("session.create", err)
	}
	observability.RecordRepositoryOperation(ctx, "session", "create", "success")
	return nil
}

func (r *GormSessionRepository) FindActive(ctx context.Context, sessionID string, now time.Time) (*domain.Session, error) {
	var s domain.Session
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, now).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "session", "find_active", "not_found")
			return nil, ErrSessionNotFound
		}
		observability.RecordRepositoryOperation(ctx, "session", "find_active", "error")
		return nil, storageError("session.find_active", err)
	}
	observability.RecordRepositoryOperation(ctx, "session", "find_active", "success")
	return &s, nil
}

func (r *GormSessionRepository) Revoke(ctx context.Context, sessionID string, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("session_id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", now).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "revoke", "error")
		return storageError("session.revoke", err)
	}
	observability.RecordRepositoryOperation(ctx, "session", "revoke", "success")
	return nil
}

func (r *GormSessionRepository) RevokeByUserID(ctx context.Context, userID uint, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "session", "revoke_by_user", "error")
		return 0, storageError("session.revoke_by_user", res.Error)
	}
	observability.RecordRepositoryOperation(ctx, "session", "revoke_by_user", "success")
	return res.RowsAffected, nil
}

func (r *GormSessionRepository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Session{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "session", "cleanup_expired", "error")
		return 0, storageError("session.cleanup_expired", res.Error)
	}
	observability.RecordRepositoryOperation(ctx, "session", "cleanup_expired", "success")
	return res.RowsAffected, nil
}
