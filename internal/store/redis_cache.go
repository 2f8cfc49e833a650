package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
	"golang.org/x/sync/singleflight"
)

// LinkCache keeps copies of entries in Redis hashes under "cache:link:<code>".
type LinkCache struct {
	client *redis.Client
	prefix string
}

// NewLinkCache creates a link cache on client.
func NewLinkCache(client *redis.Client) *LinkCache {
	return &LinkCache{
		client: client,
		prefix: "cache:link:",
	}
}

// Purge drops cached copies of the given codes.
func (c *LinkCache) Purge(ctx context.Context, codes ...shortener.Code) error {
	if len(codes) == 0 {
		return nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = c.prefix + string(code)
	}

	return c.client.Del(ctx, keys...).Err()
}

func (c *LinkCache) get(ctx context.Context, code shortener.Code) (*shortener.Entry, bool) {
	fields, err := c.client.HGetAll(ctx, c.prefix+string(code)).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}

	return decodeEntry(fields), true
}

func (c *LinkCache) put(ctx context.Context, entry *shortener.Entry, ttl time.Duration) {
	key := c.prefix + string(entry.Code)

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"code":       string(entry.Code),
		"url":        entry.URL,
		"created_at": entry.CreatedAt.UnixMicro(),
		"expires_at": formatExpiry(entry.ExpiresAt),
	})
	pipe.PExpire(ctx, key, ttl)

	_, _ = pipe.Exec(ctx)
}

// CachedRepository wraps a Repository with a Redis read-through cache.
// A cached entry never outlives the entry's own expiry.
type CachedRepository struct {
	store shortener.Repository
	cache *LinkCache
	ttl   time.Duration
	group singleflight.Group
	now   func() time.Time
}

// NewCachedRepository creates a new Redis-cached repository decorator.
func NewCachedRepository(store shortener.Repository, client *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		store: store,
		cache: NewLinkCache(client),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Insert stores the entry in the underlying store and refreshes the cache.
func (c *CachedRepository) Insert(ctx context.Context, entry *shortener.Entry, now time.Time) error {
	if err := c.store.Insert(ctx, entry, now); err != nil {
		return err
	}

	c.cacheEntry(ctx, entry)

	return nil
}

// GetByCode checks the cache first and collapses concurrent misses for the same code.
func (c *CachedRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Entry, error) {
	if entry, ok := c.cache.get(ctx, code); ok {
		return entry, nil
	}

	v, err, _ := c.group.Do(string(code), func() (any, error) {
		entry, err := c.store.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}

		c.cacheEntry(ctx, entry)

		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*shortener.Entry).Clone(), nil //nolint:forcetypeassert // only *Entry is returned above
}

func (c *CachedRepository) EvictExpired(ctx context.Context, code shortener.Code, now time.Time) error {
	if err := c.store.EvictExpired(ctx, code, now); err != nil {
		return err
	}

	return c.Purge(ctx, code)
}

func (c *CachedRepository) Sweep(ctx context.Context, now time.Time) ([]shortener.Code, error) {
	codes, err := c.store.Sweep(ctx, now)
	if err != nil {
		return nil, err
	}

	if err := c.Purge(ctx, codes...); err != nil {
		return codes, err
	}

	return codes, nil
}

func (c *CachedRepository) Stats(ctx context.Context, now time.Time) (shortener.Stats, error) {
	return c.store.Stats(ctx, now)
}

// Purge drops cached copies of the given codes.
func (c *CachedRepository) Purge(ctx context.Context, codes ...shortener.Code) error {
	return c.cache.Purge(ctx, codes...)
}

func (c *CachedRepository) cacheEntry(ctx context.Context, entry *shortener.Entry) {
	ttl := c.ttl

	if entry.ExpiresAt != nil {
		ttl = min(ttl, entry.ExpiresAt.Sub(c.now()))
	}

	if ttl <= 0 {
		return
	}

	c.cache.put(ctx, entry, ttl)
}

// Compile-time check.
var _ shortener.Repository = (*CachedRepository)(nil)
