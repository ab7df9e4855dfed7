package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"dineqr_backend/internal/models"
)

// ErrCacheMiss is returned when the token has no cached session.
var ErrCacheMiss = errors.New("session cache miss")

// SessionCache is a read-through cache for guest sessions keyed by token.
// The Postgres row stays authoritative; the cache only short-circuits the
// per-request token lookup on the hot guest-ordering path.
type SessionCache interface {
	Get(ctx context.Context, token string) (*models.GuestSession, error)
	Set(ctx context.Context, session *models.GuestSession) error
	Delete(ctx context.Context, token string) error
}

type redisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionCache creates a SessionCache backed by Redis. Entries use
// a short TTL so a stale cached session can never outlive its row expiry
// check, which is always re-evaluated by the service.
func NewRedisSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	return &redisSessionCache{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return "guest-session:" + token
}

func (c *redisSessionCache) Get(ctx context.Context, token string) (*models.GuestSession, error) {
	payload, err := c.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var session models.GuestSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *redisSessionCache) Set(ctx context.Context, session *models.GuestSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKey(session.SessionToken), payload, c.ttl).Err()
}

func (c *redisSessionCache) Delete(ctx context.Context, token string) error {
	return c.client.Del(ctx, sessionKey(token)).Err()
}
