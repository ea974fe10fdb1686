package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"popcornhour/internal/apperr"
	"popcornhour/internal/microservices/http-api/models"
)

// RedisSessionStore keeps sessions as hashes that expire with the session.
// A per-user set indexes them for DeleteByUser.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

// RedisOptions parses a redis:// or rediss:// URL (credentials, DB index and
// TLS included). A non-empty password overrides the one in the URL.
func RedisOptions(rawURL, password string) (*redis.Options, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 3 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 3 * time.Second
	}
	return opts, nil
}

// NewRedisSessionStore verifies the connection before returning.
func NewRedisSessionStore(ctx context.Context, rawURL, password string) (*RedisSessionStore, error) {
	opts, err := RedisOptions(rawURL, password)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisSessionStoreWithClient(rdb, "popcornhour"), nil
}

func NewRedisSessionStoreWithClient(client *redis.Client, prefix string) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: prefix}
}

func (s *RedisSessionStore) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}

func (s *RedisSessionStore) userKey(userID string) string {
	return fmt.Sprintf("%s:user_sessions:%s", s.prefix, userID)
}

func (s *RedisSessionStore) Create(ctx context.Context, session *models.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	key := s.sessionKey(session.ID)
	fields := map[string]any{
		"user_id":    session.UserID,
		"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339Nano),
		"created_at": session.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.ExpireAt(ctx, key, session.ExpiresAt)
	pipe.SAdd(ctx, s.userKey(session.UserID), session.ID)
	pipe.ExpireAt(ctx, s.userKey(session.UserID), session.ExpiresAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	vals, err := s.client.HGetAll(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(vals) == 0 {
		return nil, apperr.ErrNotFound
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, vals["expires_at"])
	if err != nil {
		return nil, fmt.Errorf("parse session expiry: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("parse session creation time: %w", err)
	}

	session := &models.Session{
		ID:        id,
		UserID:    vals["user_id"],
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}
	if session.Expired(time.Now()) {
		return nil, apperr.ErrNotFound
	}
	return session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	userID, err := s.client.HGet(ctx, s.sessionKey(id), "user_id").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.sessionKey(id))
	if userID != "" {
		pipe.SRem(ctx, s.userKey(userID), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) DeleteByUser(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.sessionKey(id))
	}
	keys = append(keys, s.userKey(userID))
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
