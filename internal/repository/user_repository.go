package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, phone, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	List(ctx context.Context) ([]domain.UserProfile, error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			observability.RecordRepositoryOperation(ctx, "user", "create", "conflict")
			return ErrConflict
		}
		observability.RecordRepositoryOperation(ctx, "user", "create", "error")
		return storageError("user.create", err)
	}
	observability.RecordRepositoryOperation(ctx, "user", "create", "success")
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "find_by_id", r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "find_by_username", r.db.WithContext(ctx).Where("username = ?", username))
}

func (r *GormUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, "find_by_phone", r.db.WithContext(ctx).Where("phone = ?", phone))
}

func (r *GormUserRepository) findOne(ctx context.Context, op string, q *gorm.DB) (*domain.User, error) {
	var u domain.User
	if err := q.First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", op, "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", op, "error")
		return nil, storageError("user."+op, err)
	}
	observability.RecordRepositoryOperation(ctx, "user", op, "success")
	return &u, nil
}

func (r *GormUserRepository) UpdatePasswordHash(ctx context.Context, phone, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("phone = ?", phone).Update("password_hash", passwordHash)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "user", "update_password_hash", "error")
		return storageError("user.update_password_hash", res.Error)
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "user", "update_password_hash", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(ctx, "user", "update_password_hash", "success")
	return nil
}

func (r *GormUserRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("last_login_at", at)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "user", "update_last_login", "error")
		return storageError("user.update_last_login", res.Error)
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "user", "update_last_login", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(ctx, "user", "update_last_login", "success")
	return nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]domain.UserProfile, error) {
	var users []domain.UserProfile
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Select("id", "username", "email", "phone", "role", "created_at", "last_login_at").
		Order("id asc").
		Find(&users).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "list", "error")
		return nil, storageError("user.list", err)
	}
	observability.RecordRepositoryOperation(ctx, "user", "list", "success")
	return users, nil
}
