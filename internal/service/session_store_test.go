package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/repository"
	repogomock "github.com/sandeepkv93/vibecraft-auth-service/internal/repository/gomock"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func TestRedisSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	clock := newFixedClock()
	store := NewRedisSessionStore(client, "test", clock)

	for _, sid := range []string{"s-1", "s-2"} {
		if err := store.Create(ctx, SessionRecord{SessionID: sid, UserID: 7, ExpiresAt: clock.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("create %s: %v", sid, err)
		}
	}
	if err := store.Create(ctx, SessionRecord{SessionID: "s-9", UserID: 9, ExpiresAt: clock.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("create other user: %v", err)
	}

	rec, err := store.Lookup(ctx, "s-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rec.UserID != 7 || rec.ExpiresAt.IsZero() {
		t.Fatalf("unexpected record %+v", rec)
	}

	if err := store.Revoke(ctx, "s-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := store.Lookup(ctx, "s-1"); !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("expected revoked session inactive, got %v", err)
	}
	if err := store.Revoke(ctx, "s-1"); err != nil {
		t.Fatalf("revoking twice should be a no-op: %v", err)
	}

	n, err := store.RevokeUser(ctx, 7)
	if err != nil {
		t.Fatalf("revoke user: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one remaining session revoked, got %d", n)
	}
	if _, err := store.Lookup(ctx, "s-2"); !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("expected s-2 inactive, got %v", err)
	}
	if _, err := store.Lookup(ctx, "s-9"); err != nil {
		t.Fatalf("other user's session must survive: %v", err)
	}
}

func TestRedisSessionStoreExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	clock := newFixedClock()
	store := NewRedisSessionStore(client, "", clock)

	if err := store.Create(ctx, SessionRecord{SessionID: "s-1", UserID: 1, ExpiresAt: clock.Now().Add(time.Minute)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Lookup(ctx, "s-1"); !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("expected expired session, got %v", err)
	}
	if err := store.Create(ctx, SessionRecord{SessionID: "s-2", UserID: 1, ExpiresAt: clock.Now().Add(-time.Second)}); err == nil {
		t.Fatal("expected error for already expired session")
	}
}

func TestDBSessionStoreMapsRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := repogomock.NewMockSessionRepository(ctrl)
	clock := newFixedClock()
	store := NewDBSessionStore(repo, clock)

	repo.EXPECT().FindActive(gomock.Any(), "gone", clock.Now()).Return(nil, repository.ErrSessionNotFound)
	if _, err := store.Lookup(ctx, "gone"); !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("expected ErrSessionNotActive, got %v", err)
	}

	boom := &repository.StorageError{Op: "session.find_active", Err: errors.New("db down")}
	repo.EXPECT().FindActive(gomock.Any(), "s-1", clock.Now()).Return(nil, boom)
	if _, err := store.Lookup(ctx, "s-1"); !errors.Is(err, boom) {
		t.Fatalf("expected storage error passthrough, got %v", err)
	}

	repo.EXPECT().FindActive(gomock.Any(), "s-2", clock.Now()).Return(&domain.Session{SessionID: "s-2", UserID: 3, ExpiresAt: clock.Now().Add(time.Hour)}, nil)
	rec, err := store.Lookup(ctx, "s-2")
	if err != nil || rec.UserID != 3 {
		t.Fatalf("unexpected lookup result %+v err=%v", rec, err)
	}

	repo.EXPECT().RevokeByUserID(gomock.Any(), uint(3), clock.Now()).Return(int64(2), nil)
	if n, err := store.RevokeUser(ctx, 3); err != nil || n != 2 {
		t.Fatalf("unexpected revoke user result n=%d err=%v", n, err)
	}
}
