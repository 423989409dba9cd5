// Package cache keeps assembled tenant pages in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

const (
	pagePrefix = "page:"
	genPrefix  = "pagegen:"
)

// client is the part of *redis.Client the cache uses.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type RedisPageCache struct {
	rdb client
	ttl time.Duration
}

// NewRedisPageCache connects to redisURL (redis://[:password@]host:port/db)
// and checks the connection.
func NewRedisPageCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisPageCache, *redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return newPageCache(rdb, ttl), rdb, nil
}

func newPageCache(rdb client, ttl time.Duration) *RedisPageCache {
	return &RedisPageCache{rdb: rdb, ttl: ttl}
}

// Get returns the page stored under username's current generation. The
// generation is returned on a miss too, for the following Set.
func (c *RedisPageCache) Get(ctx context.Context, username string) (*domain.TenantPage, int64, bool, error) {
	gen, err := c.rdb.Get(ctx, genPrefix+username).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		gen = 0
	case err != nil:
		return nil, 0, false, err
	}

	data, err := c.rdb.Get(ctx, pageKey(username, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	var page domain.TenantPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, 0, false, fmt.Errorf("decode cached page %q: %w", username, err)
	}
	return &page, gen, true, nil
}

func (c *RedisPageCache) Set(ctx context.Context, username string, gen int64, page *domain.TenantPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode page %q: %w", username, err)
	}
	return c.rdb.Set(ctx, pageKey(username, gen), data, c.ttl).Err()
}

// Invalidate advances the generation of each username. Pages stored under
// older generations are left to expire.
func (c *RedisPageCache) Invalidate(ctx context.Context, usernames ...string) error {
	for _, u := range usernames {
		if err := c.rdb.Incr(ctx, genPrefix+u).Err(); err != nil {
			return fmt.Errorf("invalidate %q: %w", u, err)
		}
	}
	return nil
}

func pageKey(username string, gen int64) string {
	return pagePrefix + username + ":" + strconv.FormatInt(gen, 10)
}

var _ ports.PageCache = (*RedisPageCache)(nil)
