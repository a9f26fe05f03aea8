// Package cache provides an optional Redis-backed read cache for link
// lookups. The store remains authoritative: every cache failure is treated
// as a miss, and visit tracking never goes through the cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/linksmith/linksmith/internal/shortener"
)

const keyPrefix = "link:"

// cachedLink is the wire form of a link in Redis. Owner is cached too so a
// cached details read carries the same fields as a store read.
type cachedLink struct {
	ID          uuid.UUID `json:"id"`
	OriginalURL string    `json:"original_url"`
	Slug        string    `json:"slug"`
	Owner       string    `json:"owner,omitempty"`
	VisitCount  int64     `json:"visit_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RedisCache implements shortener.Cache on top of go-redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a RedisCache from a Redis URL. The returned cache hands out
// entries for at most ttl; a stale visit count inside that window is
// accepted, invalidation on slug change and delete is explicit.
func New(ctx context.Context, redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RedisCache{client: client, ttl: ttl, logger: logger}, nil
}

// GetLink returns the cached link for slug, if present and decodable.
func (c *RedisCache) GetLink(ctx context.Context, slug string) (shortener.Link, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+slug).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.DebugContext(ctx, "cache read failed", "slug", slug, "error", err.Error())
		}
		return shortener.Link{}, false
	}

	var entry cachedLink
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.DebugContext(ctx, "cache entry undecodable, dropping", "slug", slug, "error", err.Error())
		c.Invalidate(ctx, slug)
		return shortener.Link{}, false
	}

	return shortener.Link{
		ID:          entry.ID,
		OriginalURL: entry.OriginalURL,
		Slug:        entry.Slug,
		Owner:       entry.Owner,
		VisitCount:  entry.VisitCount,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}, true
}

// SetLink stores the link under its slug with the configured TTL.
func (c *RedisCache) SetLink(ctx context.Context, link shortener.Link) {
	raw, err := json.Marshal(cachedLink{
		ID:          link.ID,
		OriginalURL: link.OriginalURL,
		Slug:        link.Slug,
		Owner:       link.Owner,
		VisitCount:  link.VisitCount,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	})
	if err != nil {
		c.logger.DebugContext(ctx, "cache encode failed", "slug", link.Slug, "error", err.Error())
		return
	}

	if err := c.client.Set(ctx, keyPrefix+link.Slug, raw, c.ttl).Err(); err != nil {
		c.logger.DebugContext(ctx, "cache write failed", "slug", link.Slug, "error", err.Error())
	}
}

// Invalidate drops the cache entries for the given slugs.
func (c *RedisCache) Invalidate(ctx context.Context, slugs ...string) {
	if len(slugs) == 0 {
		return
	}
	keys := make([]string, len(slugs))
	for i, slug := range slugs {
		keys[i] = keyPrefix + slug
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.DebugContext(ctx, "cache invalidation failed", "slugs", slugs, "error", err.Error())
	}
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
