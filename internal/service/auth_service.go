package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/config"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/repository"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/security"
)

var tracer = otel.Tracer("github.com/sandeepkv93/vibecraft-auth-service/internal/service")

var fieldValidator = validator.New()

type RegisterInput struct {
	Username string
	Email    string
	Phone    string
	Password string
	Role     string
}

type LoginInput struct {
	Username string
	Password string
	Role     string
	Meta     ClientMeta
}

type LoginResult struct {
	User         domain.UserProfile
	SessionToken string
	ExpiresAt    time.Time
}

// OTPDispatch describes an issued code. DebugCode is only populated when the
// service runs with debug OTP responses enabled.
type OTPDispatch struct {
	Phone     string
	ExpiresAt time.Time
	Delivered bool
	DebugCode string
}

type AuthService struct {
	cfg      *config.Config
	users    repository.UserRepository
	otps     repository.OTPRepository
	sessions SessionTokens
	sms      SMSSender
	clock    Clock
	logger   *slog.Logger
}

func NewAuthService(
	cfg *config.Config,
	users repository.UserRepository,
	otps repository.OTPRepository,
	sessions SessionTokens,
	sms SMSSender,
	clock Clock,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		users:    users,
		otps:     otps,
		sessions: sessions,
		sms:      sms,
		clock:    clock,
		logger:   logger,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (_ *domain.UserProfile, err error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	outcome := "success"
	defer func() {
		finishSpan(span, err)
		observability.RecordAuthRegister(ctx, outcome)
	}()

	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.Phone)
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = domain.RoleDriver
	}

	if username == "" || email == "" || phone == "" {
		outcome = "invalid"
		return nil, validationError("username, email and phone are required")
	}
	if fieldValidator.Var(email, "required,email") != nil {
		outcome = "invalid"
		return nil, validationError("invalid email address")
	}
	if !domain.ValidRole(role) {
		outcome = "invalid"
		return nil, validationError("invalid role")
	}
	if policyErr := security.CheckPasswordPolicy(in.Password); policyErr != nil {
		outcome = "weak_password"
		return nil, ErrWeakPassword
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		outcome = "error"
		return nil, storageError(err)
	}
	user := &domain.User{
		Username:     username,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			outcome = "conflict"
			return nil, ErrDuplicateAccount
		}
		outcome = "error"
		return nil, storageError(err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", role)
	profile := user.Profile()
	return &profile, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (_ *LoginResult, err error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	role := strings.ToLower(strings.TrimSpace(in.Role))
	outcome := "success"
	defer func() {
		finishSpan(span, err)
		observability.RecordAuthLogin(ctx, roleLabel(role), outcome)
	}()

	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" || in.Password == "" {
		outcome = "invalid"
		return nil, validationError("username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			outcome = "user_not_found"
			return nil, ErrUserNotFound
		}
		outcome = "error"
		return nil, storageError(err)
	}

	ok, err := security.VerifyPassword(user.PasswordHash, in.Password)
	if err != nil {
		outcome = "error"
		return nil, storageError(err)
	}
	if !ok {
		outcome = "bad_password"
		return nil, ErrIncorrectPassword
	}
	if user.Role != role {
		outcome = "role_mismatch"
		return nil, roleMismatchError(user.Role)
	}

	issued, err := s.sessions.Issue(ctx, user, in.Meta)
	if err != nil {
		outcome = "error"
		return nil, storageError(err)
	}

	now := s.clock.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.WarnContext(ctx, "record last login failed", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	span.SetAttributes(attribute.Int64("user.id", int64(user.ID)))
	return &LoginResult{User: user.Profile(), SessionToken: issued.Token, ExpiresAt: issued.ExpiresAt}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		observability.RecordAuthLogout(ctx, "error")
		return storageError(err)
	}
	observability.RecordAuthLogout(ctx, "success")
	return nil
}

// SendOTP issues a new code for a registered phone and hands it to the SMS
// sender. A delivery failure is reported through Delivered; the stored code
// stays valid either way.
func (s *AuthService) SendOTP(ctx context.Context, phone, purpose string) (_ *OTPDispatch, err error) {
	ctx, span := tracer.Start(ctx, "auth.send_otp")
	phone = strings.TrimSpace(phone)
	purpose = normalizePurpose(purpose)
	outcome := "success"
	defer func() {
		finishSpan(span, err)
		observability.RecordOTPEvent(ctx, "issue", purpose, outcome)
	}()

	if phone == "" {
		outcome = "invalid"
		return nil, validationError("phone is required")
	}
	if _, err := s.users.FindByPhone(ctx, phone); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			outcome = "phone_not_registered"
			return nil, ErrPhoneNotRegistered
		}
		outcome = "error"
		return nil, storageError(err)
	}

	code, err := security.NewOTPCode()
	if err != nil {
		outcome = "error"
		return nil, storageError(err)
	}
	now := s.clock.Now()
	rec := &domain.OTPRecord{
		Phone:     phone,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.AuthOTPTTL),
	}
	if err := s.otps.Create(ctx, rec); err != nil {
		outcome = "error"
		return nil, storageError(err)
	}

	out := &OTPDispatch{Phone: phone, ExpiresAt: rec.ExpiresAt}
	out.Delivered = s.deliverOTP(ctx, phone, code)
	if !out.Delivered {
		outcome = "undelivered"
	}
	if s.cfg.AuthOTPDebugResponse {
		out.DebugCode = code
	}
	return out, nil
}

func (s *AuthService) deliverOTP(ctx context.Context, phone, code string) bool {
	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SMSSendTimeout)
	defer cancel()
	if err := s.sms.Send(sendCtx, phone, otpMessage(code, s.cfg.AuthOTPTTL)); err != nil {
		s.logger.WarnContext(ctx, "otp sms delivery failed", "phone", phone, "error", err)
		return false
	}
	return true
}

func (s *AuthService) VerifyOTP(ctx context.Context, phone, code, purpose string) (err error) {
	ctx, span := tracer.Start(ctx, "auth.verify_otp")
	phone = strings.TrimSpace(phone)
	code = strings.TrimSpace(code)
	purpose = normalizePurpose(purpose)
	outcome := "success"
	defer func() {
		finishSpan(span, err)
		observability.RecordOTPEvent(ctx, "verify", purpose, outcome)
	}()

	if phone == "" || code == "" {
		outcome = "invalid"
		return ErrInvalidOTP
	}
	rec, err := s.otps.FindLatestUnverified(ctx, phone, code, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			outcome = "invalid"
			return ErrInvalidOTP
		}
		outcome = "error"
		return storageError(err)
	}
	now := s.clock.Now()
	if rec.Expired(now) {
		outcome = "expired"
		return ErrExpiredOTP
	}
	if err := s.otps.MarkVerified(ctx, rec.ID, now); err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			outcome = "invalid"
			return ErrInvalidOTP
		}
		outcome = "error"
		return storageError(err)
	}
	return nil
}

// ResetPassword replaces the password of the account owning phone. It requires
// a verified, unconsumed reset code inside the reset window, consumes that code
// and revokes every session of the account.
func (s *AuthService) ResetPassword(ctx context.Context, phone, newPassword string) (err error) {
	ctx, span := tracer.Start(ctx, "auth.reset_password")
	phone = strings.TrimSpace(phone)
	outcome := "success"
	defer func() {
		finishSpan(span, err)
		observability.RecordPasswordReset(ctx, outcome)
	}()

	if phone == "" {
		outcome = "invalid"
		return validationError("phone is required")
	}
	if policyErr := security.CheckPasswordPolicy(newPassword); policyErr != nil {
		outcome = "weak_password"
		return ErrWeakPassword
	}
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			outcome = "phone_not_registered"
			return ErrPhoneNotRegistered
		}
		outcome = "error"
		return storageError(err)
	}

	rec, err := s.otps.FindLatestVerified(ctx, phone, domain.OTPPurposeReset)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			outcome = "not_verified"
			return ErrVerifyOTPFirst
		}
		outcome = "error"
		return storageError(err)
	}
	now := s.clock.Now()
	if rec.VerifiedAt == nil || now.Sub(*rec.VerifiedAt) > s.cfg.AuthOTPResetWindow {
		outcome = "stale_verification"
		return ErrVerifyOTPFirst
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		outcome = "error"
		return storageError(err)
	}
	if err := s.otps.Consume(ctx, rec.ID, now); err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			outcome = "not_verified"
			return ErrVerifyOTPFirst
		}
		outcome = "error"
		return storageError(err)
	}
	if err := s.users.UpdatePasswordHash(ctx, phone, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			outcome = "phone_not_registered"
			return ErrPhoneNotRegistered
		}
		outcome = "error"
		return storageError(err)
	}

	revoked, err := s.sessions.RevokeUser(ctx, user.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "revoke sessions after password reset failed", "user_id", user.ID, "error", err)
		return nil
	}
	observability.RecordSessionRevokedCount(ctx, "password_reset", revoked)
	s.logger.InfoContext(ctx, "password reset via phone otp", "user_id", user.ID, "sessions_revoked", revoked)
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.UserProfile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		observability.RecordUserListEvent(ctx, "error")
		return nil, storageError(err)
	}
	observability.RecordUserListEvent(ctx, "success")
	return users, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError(err)
	}
	profile := user.Profile()
	return &profile, nil
}

func otpMessage(code string, ttl time.Duration) string {
	minutes := int(ttl.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("VibeCraft OTP: %s\nValid for %d minutes.", code, minutes)
}

func normalizePurpose(purpose string) string {
	purpose = strings.ToLower(strings.TrimSpace(purpose))
	if purpose == "" {
		return domain.OTPPurposeReset
	}
	return purpose
}

func upperRole(role string) string {
	return strings.ToUpper(role)
}

func roleLabel(role string) string {
	if domain.ValidRole(role) {
		return role
	}
	return "unknown"
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
