package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
)

type OTPRepository interface {
	Create(ctx context.Context, otp *domain.OTPRecord) error
	FindLatestUnverified(ctx context.Context, phone, code, purpose string) (*domain.OTPRecord, error)
	FindLatestVerified(ctx context.Context, phone, purpose string) (*domain.OTPRecord, error)
	MarkVerified(ctx context.Context, id uint, at time.Time) error
	Consume(ctx context.Context, id uint, at time.Time) error
	CleanupExpired(ctx context.Context, before time.Time) (int64, error)
}

type GormOTPRepository struct{ db *gorm.DB }

func NewOTPRepository(db *gorm.DB) OTPRepository { return &GormOTPRepository{db: db} }

func (r *GormOTPRepository) Create(ctx context.Context, otp *domain.OTPRecord) error {
	if err := r.db.WithContext(ctx).Create(otp).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "otp", "create", "error")
		return storageError("otp.create", err)
	}
	observability.RecordRepositoryOperation(ctx, "otp", "create", "success")
	return nil
}

// FindLatestUnverified returns the newest unverified record for phone, code and
// purpose. Expiry is not applied here; callers compare ExpiresAt themselves so
// they can distinguish expired codes from wrong ones.
func (r *GormOTPRepository) FindLatestUnverified(ctx context.Context, phone, code, purpose string) (*domain.OTPRecord, error) {
	q := r.db.WithContext(ctx).
		Where("phone = ? AND code = ? AND purpose = ? AND verified = ?", phone, code, purpose, false)
	return r.latest(ctx, "find_latest_unverified", q)
}

func (r *GormOTPRepository) FindLatestVerified(ctx context.Context, phone, purpose string) (*domain.OTPRecord, error) {
	q := r.db.WithContext(ctx).
		Where("phone = ? AND purpose = ? AND verified = ? AND consumed_at IS NULL", phone, purpose, true)
	return r.latest(ctx, "find_latest_verified", q)
}

func (r *GormOTPRepository) latest(ctx context.Context, op string, q *gorm.DB) (*domain.OTPRecord, error) {
	var otp domain.OTPRecord
	if err := q.Order("created_at desc").Order("id desc").First(&otp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "otp", op, "not_found")
			return nil, ErrOTPNotFound
		}
		observability.RecordRepositoryOperation(ctx, "otp", op, "error")
		return nil, storageError("otp."+op, err)
	}
	observability.RecordRepositoryOperation(ctx, "otp", op, "success")
	return &otp, nil
}

// MarkVerified flips a single unverified record. A record that was verified by
// a concurrent request reports ErrOTPNotFound.
func (r *GormOTPRepository) MarkVerified(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.OTPRecord{}).
		Where("id = ? AND verified = ?", id, false).
		Updates(map[string]any{"verified": true, "verified_at": at})
	return r.conditionalResult(ctx, "mark_verified", res)
}

// Consume marks a verified record as used so it cannot authorize a second reset.
func (r *GormOTPRepository) Consume(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.OTPRecord{}).
		Where("id = ? AND verified = ? AND consumed_at IS NULL", id, true).
		Update("consumed_at", at)
	return r.conditionalResult(ctx, "consume", res)
}

func (r *GormOTPRepository) conditionalResult(ctx context.Context, op string, res *gorm.DB) error {
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "otp", op, "error")
		return storageError("otp."+op, res.Error)
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "otp", op, "not_found")
		return ErrOTPNotFound
	}
	observability.RecordRepositoryOperation(ctx, "otp", op, "success")
	return nil
}

// CleanupExpired hard-deletes codes that expired before the cutoff. Callers pass
// a cutoff older than the reset window so a verified code stays usable.
func (r *GormOTPRepository) CleanupExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", before).Delete(&domain.OTPRecord{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "otp", "cleanup_expired", "error")
		return 0, storageError("otp.cleanup_expired", res.Error)
	}
	observability.RecordRepositoryOperation(ctx, "otp", "cleanup_expired", "success")
	return res.RowsAffected, nil
}
