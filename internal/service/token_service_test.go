package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/security"
)

const testJWTSecret = "abcdefghijklmnopqrstuvwxyz123456"

func newRedisTokenService(t *testing.T) (*TokenService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisSessionStore(client, "tok", SystemClock{})
	return NewTokenService(security.NewJWTManager("iss", "aud", testJWTSecret), store, time.Hour), mr
}

func TestTokenServiceIssueValidateRevoke(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRedisTokenService(t)
	user := &domain.User{ID: 5, Username: "alice", Role: domain.RoleDriver}

	issued, err := svc.Issue(ctx, user, ClientMeta{UserAgent: "test", IP: "127.0.0.1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.Token == "" || issued.SessionID == "" {
		t.Fatalf("unexpected issued session %+v", issued)
	}

	claims, err := svc.Validate(ctx, issued.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Username != "alice" || claims.Role != domain.RoleDriver || claims.ID != issued.SessionID {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if err := svc.Revoke(ctx, issued.SessionID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Validate(ctx, issued.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected revoked token rejected, got %v", err)
	}
}

func TestTokenServiceRevokeUserInvalidatesAllTokens(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRedisTokenService(t)
	user := &domain.User{ID: 5, Username: "alice", Role: domain.RoleDriver}

	a, err := svc.Issue(ctx, user, ClientMeta{})
	if err != nil {
		t.Fatalf("issue a: %v", err)
	}
	b, err := svc.Issue(ctx, user, ClientMeta{})
	if err != nil {
		t.Fatalf("issue b: %v", err)
	}
	n, err := svc.RevokeUser(ctx, user.ID)
	if err != nil || n != 2 {
		t.Fatalf("revoke user n=%d err=%v", n, err)
	}
	for _, tok := range []string{a.Token, b.Token} {
		if _, err := svc.Validate(ctx, tok); !errors.Is(err, ErrSessionInvalid) {
			t.Fatalf("expected token invalid after revoke-all, got %v", err)
		}
	}
}

func TestTokenServiceRejectsGarbageAndStoreFailures(t *testing.T) {
	ctx := context.Background()
	svc, mr := newRedisTokenService(t)

	if _, err := svc.Validate(ctx, "garbage"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}

	issued, err := svc.Issue(ctx, &domain.User{ID: 1, Username: "bob", Role: domain.RoleAdmin}, ClientMeta{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	mr.SetError("READONLY backend down")
	if _, err := svc.Validate(ctx, issued.Token); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage error when store fails, got %v", err)
	}
}
