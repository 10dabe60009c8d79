package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/repository"
)

var ErrSessionNotActive = errors.New("session not active")

type SessionRecord struct {
	SessionID string
	UserID    uint
	ExpiresAt time.Time
	UserAgent string
	IP        string
}

// SessionStore tracks which issued session tokens are still honoured.
type SessionStore interface {
	Create(ctx context.Context, rec SessionRecord) error
	Lookup(ctx context.Context, sessionID string) (SessionRecord, error)
	Revoke(ctx context.Context, sessionID string) error
	RevokeUser(ctx context.Context, userID uint) (int64, error)
}

type DBSessionStore struct {
	repo  repository.SessionRepository
	clock Clock
}

func NewDBSessionStore(repo repository.SessionRepository, clock Clock) *DBSessionStore {
	return &DBSessionStore{repo: repo, clock: clock}
}

func (s *DBSessionStore) Create(ctx context.Context, rec SessionRecord) error {
	return s.repo.Create(ctx, &domain.Session{
		SessionID: rec.SessionID,
		UserID:    rec.UserID,
		ExpiresAt: rec.ExpiresAt,
		UserAgent: rec.UserAgent,
		IP:        rec.IP,
	})
}

func (s *DBSessionStore) Lookup(ctx context.Context, sessionID string) (SessionRecord, error) {
	sess, err := s.repo.FindActive(ctx, sessionID, s.clock.Now())
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return SessionRecord{}, ErrSessionNotActive
		}
		return SessionRecord{}, err
	}
	return SessionRecord{
		SessionID: sess.SessionID,
		UserID:    sess.UserID,
		ExpiresAt: sess.ExpiresAt,
		UserAgent: sess.UserAgent,
		IP:        sess.IP,
	}, nil
}

func (s *DBSessionStore) Revoke(ctx context.Context, sessionID string) error {
	return s.repo.Revoke(ctx, sessionID, s.clock.Now())
}

func (s *DBSessionStore) RevokeUser(ctx context.Context, userID uint) (int64, error) {
	return s.repo.RevokeByUserID(ctx, userID, s.clock.Now())
}

// RedisSessionStore keeps one key per session plus a per-user index set so a
// password reset can revoke every session of the user at once.
type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
	clock  Clock
}

func NewRedisSessionStore(client redis.UniversalClient, prefix string, clock Clock) *RedisSessionStore {
	if prefix == "" {
		prefix = "vibecraft"
	}
	return &RedisSessionStore{client: client, prefix: prefix, clock: clock}
}

func (s *RedisSessionStore) Create(ctx context.Context, rec SessionRecord) error {
	ttl := rec.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", rec.SessionID)
	}
	sessionKey := s.sessionKey(rec.SessionID)
	indexKey := s.userIndexKey(rec.UserID)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey, strconv.FormatUint(uint64(rec.UserID), 10), ttl)
	pipe.SAdd(ctx, indexKey, sessionKey)
	pipe.Expire(ctx, indexKey, ttl+time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisSessionStore) Lookup(ctx context.Context, sessionID string) (SessionRecord, error) {
	sessionKey := s.sessionKey(sessionID)
	raw, err := s.client.Get(ctx, sessionKey).Result()
	if errors.Is(err, redis.Nil) {
		return SessionRecord{}, ErrSessionNotActive
	}
	if err != nil {
		return SessionRecord{}, err
	}
	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("corrupt session value for %s: %w", sessionID, err)
	}
	rec := SessionRecord{SessionID: sessionID, UserID: uint(userID)}
	if ttl, err := s.client.PTTL(ctx, sessionKey).Result(); err == nil && ttl > 0 {
		rec.ExpiresAt = s.clock.Now().Add(ttl)
	}
	return rec, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	sessionKey := s.sessionKey(sessionID)
	raw, err := s.client.Get(ctx, sessionKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey)
	if userID, parseErr := strconv.ParseUint(raw, 10, 64); parseErr == nil {
		pipe.SRem(ctx, s.userIndexKey(uint(userID)), sessionKey)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSessionStore) RevokeUser(ctx context.Context, userID uint) (int64, error) {
	indexKey := s.userIndexKey(userID)
	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	pipe := s.client.TxPipeline()
	var del *redis.IntCmd
	if len(keys) > 0 {
		del = pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, indexKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	if del == nil {
		return 0, nil
	}
	return del.Val(), nil
}

func (s *RedisSessionStore) sessionKey(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID))
	return fmt.Sprintf("%s:session:%s", s.prefix, hex.EncodeToString(sum[:]))
}

func (s *RedisSessionStore) userIndexKey(userID uint) string {
	return fmt.Sprintf("%s:user_sessions:%d", s.prefix, userID)
}
