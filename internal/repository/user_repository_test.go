package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
)

func seedUser(t *testing.T, repo UserRepository, username, email, phone string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Email: email, Phone: phone, PasswordHash: "hash-" + username, Role: domain.RoleDriver}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	if u.ID == 0 {
		t.Fatalf("expected ID populated for %s", username)
	}
	return u
}

func TestUserRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newRepositoryDBForTest(t))
	created := seedUser(t, repo, "alice", "a@x.io", "+15550000001")

	byName, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if byName.ID != created.ID || byName.PasswordHash != "hash-alice" {
		t.Fatalf("unexpected user %+v", byName)
	}

	byPhone, err := repo.FindByPhone(ctx, "+15550000001")
	if err != nil || byPhone.Username != "alice" {
		t.Fatalf("find by phone: %+v err=%v", byPhone, err)
	}

	byID, err := repo.FindByID(ctx, created.ID)
	if err != nil || byID.Email != "a@x.io" {
		t.Fatalf("find by id: %+v err=%v", byID, err)
	}
}

func TestUserRepositoryNotFoundCases(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newRepositoryDBForTest(t))

	cases := map[string]func() error{
		"find by username":  func() error { _, err := repo.FindByUsername(ctx, "ghost"); return err },
		"find by phone":     func() error { _, err := repo.FindByPhone(ctx, "+10000000000"); return err },
		"find by id":        func() error { _, err := repo.FindByID(ctx, 42); return err },
		"update password":   func() error { return repo.UpdatePasswordHash(ctx, "+10000000000", "h") },
		"update last login": func() error { return repo.UpdateLastLogin(ctx, 42, time.Now()) },
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, ErrUserNotFound) {
				t.Fatalf("expected ErrUserNotFound, got %v", err)
			}
		})
	}
}

func TestUserRepositoryUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newRepositoryDBForTest(t))
	seedUser(t, repo, "alice", "a@x.io", "+15550000001")

	cases := []struct {
		name string
		user domain.User
	}{
		{name: "username", user: domain.User{Username: "alice", Email: "b@x.io", Phone: "+15550000002"}},
		{name: "email", user: domain.User{Username: "bob", Email: "a@x.io", Phone: "+15550000002"}},
		{name: "phone", user: domain.User{Username: "bob", Email: "b@x.io", Phone: "+15550000001"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := tc.user
			u.PasswordHash = "h"
			u.Role = domain.RoleDriver
			if err := repo.Create(ctx, &u); !errors.Is(err, ErrConflict) {
				t.Fatalf("expected ErrConflict, got %v", err)
			}
		})
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user after conflicts, got %d", len(users))
	}
}

func TestUserRepositoryUpdatePasswordHashAndLastLogin(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newRepositoryDBForTest(t))
	u := seedUser(t, repo, "alice", "a@x.io", "+15550000001")

	if err := repo.UpdatePasswordHash(ctx, "+15550000001", "new-hash"); err != nil {
		t.Fatalf("update password hash: %v", err)
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := repo.UpdateLastLogin(ctx, u.ID, at); err != nil {
		t.Fatalf("update last login: %v", err)
	}

	loaded, err := repo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if loaded.PasswordHash != "new-hash" {
		t.Fatalf("expected new hash, got %q", loaded.PasswordHash)
	}
	if loaded.LastLoginAt == nil || !loaded.LastLoginAt.Equal(at) {
		t.Fatalf("expected last login %s, got %v", at, loaded.LastLoginAt)
	}
}

func TestUserRepositoryListOmitsPasswordHash(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newRepositoryDBForTest(t))
	seedUser(t, repo, "alice", "a@x.io", "+15550000001")
	seedUser(t, repo, "bob", "b@x.io", "+15550000002")

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Username != "alice" || users[1].Phone != "+15550000002" || users[1].Role != domain.RoleDriver {
		t.Fatalf("unexpected profiles %+v", users)
	}
	if users[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at populated")
	}
}

func TestUserRepositoryWrapsStorageFailures(t *testing.T) {
	ctx := context.Background()
	db := newRepositoryDBForTest(t)
	repo := NewUserRepository(db)
	closeRepositoryDB(t, db)

	_, err := repo.FindByUsername(ctx, "alice")
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if storageErr.Op != "user.find_by_username" || errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unexpected storage error %v (op %q)", err, storageErr.Op)
	}

	_, err = repo.List(ctx)
	if !errors.As(err, &storageErr) || storageErr.Op != "user.list" {
		t.Fatalf("expected user.list StorageError, got %v", err)
	}
}
