package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"github.com/redis/go-redis/v9"
)

// UserTTL is the default lifetime of a cached user.
const UserTTL = 5 * time.Minute

// UserKey returns the cache key of a user.
func UserKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// UserCache is a cache-aside store for users keyed by ID.
// A nil *UserCache, or one without a client, always misses.
// Cached users carry no password hash because the field is never encoded.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUserCache returns a UserCache backed by client.
func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = UserTTL
	}
	return &UserCache{client: client, ttl: ttl}
}

func (c *UserCache) enabled() bool {
	return c != nil && c.client != nil
}

// Get loads the cached user into dest. It reports false on a miss.
func (c *UserCache) Get(ctx context.Context, id uint, dest *models.User) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "get", UserKey(id))
	defer span.End()

	raw, err := c.client.Get(ctx, UserKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.CacheLookups.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	observability.CacheLookups.WithLabelValues("hit").Inc()
	return true, nil
}

// Set stores user under its ID.
func (c *UserCache) Set(ctx context.Context, user *models.User) error {
	if !c.enabled() {
		return nil
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "set", UserKey(user.ID))
	defer span.End()

	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, UserKey(user.ID), b, c.ttl).Err(); err != nil {
		observability.RecordErrorInContext(ctx, err)
		return err
	}
	return nil
}

// Aside returns the cached user when present; otherwise it calls fetch, which
// must fill dest, and stores the result. Cache failures never fail the call.
func (c *UserCache) Aside(ctx context.Context, id uint, dest *models.User, fetch func() error) error {
	found, err := c.Get(ctx, id, dest)
	if err != nil {
		observability.Logger.WarnContext(ctx, "user cache read failed", slog.Uint64("user_id", uint64(id)), slog.String("error", err.Error()))
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := c.Set(ctx, dest); err != nil {
		observability.Logger.WarnContext(ctx, "user cache write failed", slog.Uint64("user_id", uint64(id)), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate drops the cached user.
func (c *UserCache) Invalidate(ctx context.Context, id uint) {
	if !c.enabled() {
		return
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "del", UserKey(id))
	defer span.End()

	if err := c.client.Del(ctx, UserKey(id)).Err(); err != nil {
		observability.RecordErrorInContext(ctx, err)
		observability.Logger.WarnContext(ctx, "user cache invalidation failed", slog.Uint64("user_id", uint64(id)), slog.String("error", err.Error()))
	}
}
