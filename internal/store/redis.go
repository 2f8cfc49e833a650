package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

// Timestamps are stored as unix microseconds so Lua can compare them exactly.

// insertScript writes the entry unless a live entry holds the key.
// KEYS[1] entry key; ARGV: now, code, url, created_at, expires_at ("" for never).
var insertScript = redis.NewScript(`
local expires = redis.call('HGET', KEYS[1], 'expires_at')
if expires then
  if expires == '' or tonumber(expires) >= tonumber(ARGV[1]) then
    return 0
  end
  redis.call('DEL', KEYS[1])
end
redis.call('HSET', KEYS[1], 'code', ARGV[2], 'url', ARGV[3], 'created_at', ARGV[4], 'expires_at', ARGV[5])
return 1
`)

// evictScript deletes the key only if its entry is expired at ARGV[1].
var evictScript = redis.NewScript(`
local expires = redis.call('HGET', KEYS[1], 'expires_at')
if expires and expires ~= '' and tonumber(expires) < tonumber(ARGV[1]) then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

const scanBatch = 500

// RedisStore is a Redis implementation of shortener.Repository.
// Each entry is a hash under "link:{code}".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "link:",
	}
}

func (r *RedisStore) key(code shortener.Code) string {
	return r.prefix + string(code)
}

func (r *RedisStore) Insert(ctx context.Context, entry *shortener.Entry, now time.Time) error {
	inserted, err := insertScript.Run(ctx, r.client, []string{r.key(entry.Code)},
		now.UnixMicro(),
		string(entry.Code),
		entry.URL,
		entry.CreatedAt.UnixMicro(),
		formatExpiry(entry.ExpiresAt),
	).Int()
	if err != nil {
		return err
	}

	if inserted == 0 {
		return shortener.ErrShortcodeInUse
	}

	return nil
}

func (r *RedisStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Entry, error) {
	fields, err := r.client.HGetAll(ctx, r.key(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, shortener.ErrNotFound
	}

	return decodeEntry(fields), nil
}

func (r *RedisStore) EvictExpired(ctx context.Context, code shortener.Code, now time.Time) error {
	return evictScript.Run(ctx, r.client, []string{r.key(code)}, now.UnixMicro()).Err()
}

func (r *RedisStore) Sweep(ctx context.Context, now time.Time) ([]shortener.Code, error) {
	var removed []shortener.Code

	err := r.scan(ctx, func(keys []string) error {
		for _, key := range keys {
			deleted, err := evictScript.Run(ctx, r.client, []string{key}, now.UnixMicro()).Int()
			if err != nil {
				return err
			}

			if deleted > 0 {
				removed = append(removed, shortener.Code(key[len(r.prefix):]))
			}
		}

		return nil
	})

	return removed, err
}

func (r *RedisStore) Stats(ctx context.Context, now time.Time) (shortener.Stats, error) {
	var stats shortener.Stats

	err := r.scan(ctx, func(keys []string) error {
		pipe := r.client.Pipeline()
		cmds := make([]*redis.StringCmd, len(keys))

		for i, key := range keys {
			cmds[i] = pipe.HGet(ctx, key, "expires_at")
		}

		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		for _, cmd := range cmds {
			expires, err := cmd.Result()
			if err != nil {
				continue
			}

			stats.Total++

			if at := parseExpiry(expires); at == nil || !now.After(*at) {
				stats.Active++
			}
		}

		return nil
	})

	return stats, err
}

func (r *RedisStore) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", scanBatch).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}

		if next == 0 {
			return nil
		}

		cursor = next
	}
}

func formatExpiry(at *time.Time) string {
	if at == nil {
		return ""
	}

	return strconv.FormatInt(at.UnixMicro(), 10)
}

func parseExpiry(s string) *time.Time {
	if s == "" {
		return nil
	}

	micros, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}

	t := time.UnixMicro(micros)

	return &t
}

func decodeEntry(fields map[string]string) *shortener.Entry {
	entry := &shortener.Entry{
		Code:      shortener.Code(fields["code"]),
		URL:       fields["url"],
		ExpiresAt: parseExpiry(fields["expires_at"]),
	}

	if micros, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		entry.CreatedAt = time.UnixMicro(micros)
	}

	return entry
}

// Compile-time check.
var _ shortener.Repository = (*RedisStore)(nil)
