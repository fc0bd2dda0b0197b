package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"corecms/cmd/security/token"

	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces token keys.
const RedisKeyPrefix = "corecms:login_token:"

// RedisStore implements Store over Redis.
//
// Each token lives under RedisKeyPrefix + token.Digest(id) with a TTL that
// ends at ExpireAt, so Redis drops expired tokens even if nobody presents
// them again.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisClock sets the time source used to derive key TTLs. It should be
// the same clock the Engine uses for ExpireAt (default time.Now).
func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

type redisToken struct {
	UserID   string    `json:"user_id"`
	AccessIP string    `json:"access_ip"`
	ExpireAt time.Time `json:"expire_at"`
}

// NewRedisStore creates a Redis-backed token store. The client is owned by the caller.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: RedisKeyPrefix, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) key(id token.ID) string {
	return s.prefix + token.Digest(id)
}

// Create stores t. It fails if the key already exists or ExpireAt has passed.
func (s *RedisStore) Create(ctx context.Context, t LoginToken) error {
	if t.ID.IsZero() {
		return fmt.Errorf("session.Create: zero token id")
	}

	ttl := t.ExpireAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session.Create: expire_at must be in the future")
	}

	data, err := json.Marshal(redisToken{UserID: t.UserID, AccessIP: t.AccessIP, ExpireAt: t.ExpireAt.UTC()})
	if err != nil {
		return fmt.Errorf("session.Create: marshal: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(t.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("session.Create: %w", err)
	}
	if !ok {
		return fmt.Errorf("session.Create: duplicate token id")
	}
	return nil
}

// Delete removes the token key. Missing keys are not an error.
func (s *RedisStore) Delete(ctx context.Context, id token.ID) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("session.Delete: %w", err)
	}
	return nil
}

// GetByID loads a token by ID.
func (s *RedisStore) GetByID(ctx context.Context, id token.ID) (LoginToken, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return LoginToken{}, ErrTokenNotFound
	}
	if err != nil {
		return LoginToken{}, fmt.Errorf("session.GetByID: %w", err)
	}

	var rt redisToken
	if err := json.Unmarshal(val, &rt); err != nil {
		return LoginToken{}, fmt.Errorf("session.GetByID: unmarshal: %w", err)
	}

	return LoginToken{ID: id, UserID: rt.UserID, AccessIP: rt.AccessIP, ExpireAt: rt.ExpireAt}, nil
}
