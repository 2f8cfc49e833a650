package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newEntry(code, url string, expiresAt *time.Time) *shortener.Entry {
	return &shortener.Entry{
		Code:      shortener.Code(code),
		URL:       url,
		CreatedAt: epoch,
		ExpiresAt: expiresAt,
	}
}

func at(d time.Duration) *time.Time {
	t := epoch.Add(d)

	return &t
}

func TestMemoryStore_Insert(t *testing.T) {
	t.Run("stores entry", func(t *testing.T) {
		s := store.NewMemoryStore()

		err := s.Insert(context.Background(), newEntry("abcd", "http://example.com", nil), epoch)
		require.NoError(t, err)

		got, err := s.GetByCode(context.Background(), "abcd")
		require.NoError(t, err)
		assert.Equal(t, "http://example.com", got.URL)
		assert.Nil(t, got.ExpiresAt)
	})

	t.Run("rejects code held by live entry", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), newEntry("abcd", "http://one.com", nil), epoch)

		err := s.Insert(context.Background(), newEntry("abcd", "http://two.com", nil), epoch)

		assert.ErrorIs(t, err, shortener.ErrShortcodeInUse)

		got, _ := s.GetByCode(context.Background(), "abcd")
		assert.Equal(t, "http://one.com", got.URL)
	})

	t.Run("replaces expired entry", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), newEntry("abcd", "http://one.com", at(time.Minute)), epoch)

		err := s.Insert(context.Background(), newEntry("abcd", "http://two.com", nil), epoch.Add(2*time.Minute))
		require.NoError(t, err)

		got, _ := s.GetByCode(context.Background(), "abcd")
		assert.Equal(t, "http://two.com", got.URL)
	})

	t.Run("entry expiring exactly now is still live", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), newEntry("abcd", "http://one.com", at(time.Minute)), epoch)

		err := s.Insert(context.Background(), newEntry("abcd", "http://two.com", nil), epoch.Add(time.Minute))

		assert.ErrorIs(t, err, shortener.ErrShortcodeInUse)
	})

	t.Run("returned entries do not alias stored ones", func(t *testing.T) {
		s := store.NewMemoryStore()
		entry := newEntry("abcd", "http://one.com", at(time.Minute))
		_ = s.Insert(context.Background(), entry, epoch)

		entry.URL = "http://mutated.com"
		*entry.ExpiresAt = epoch

		got, _ := s.GetByCode(context.Background(), "abcd")
		assert.Equal(t, "http://one.com", got.URL)
		assert.Equal(t, epoch.Add(time.Minute), *got.ExpiresAt)
	})

	t.Run("concurrent inserts of one code admit exactly one", func(t *testing.T) {
		s := store.NewMemoryStore()

		var (
			wg      sync.WaitGroup
			success atomic.Int32
		)

		for range 50 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				if s.Insert(context.Background(), newEntry("race", "http://example.com", nil), epoch) == nil {
					success.Add(1)
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, int32(1), success.Load())
	})
}

func TestMemoryStore_GetByCode(t *testing.T) {
	t.Run("returns ErrNotFound when code does not exist", func(t *testing.T) {
		s := store.NewMemoryStore()

		got, err := s.GetByCode(context.Background(), "nope")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("returns expired entries", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), newEntry("abcd", "http://example.com", at(-time.Minute)), epoch)

		got, err := s.GetByCode(context.Background(), "abcd")

		require.NoError(t, err)
		assert.True(t, got.Expired(epoch))
	})
}

func TestMemoryStore_EvictExpired(t *testing.T) {
	t.Run("removes expired entry", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), newEntry("abcd", "http://example.com", at(time.Minute)), epoch)

		err := s.EvictExpired(context.Background(), "abcd", epoch.Add(2*time.Minute))
		require.NoError(t, err)

		_, err = s.GetByCode(context.Background(), "abcd")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("keeps live entry", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), newEntry("abcd", "http://example.com", at(time.Minute)), epoch)

		err := s.EvictExpired(context.Background(), "abcd", epoch)
		require.NoError(t, err)

		_, err = s.GetByCode(context.Background(), "abcd")
		assert.NoError(t, err)
	})

	t.Run("missing code is not an error", func(t *testing.T) {
		s := store.NewMemoryStore()

		assert.NoError(t, s.EvictExpired(context.Background(), "nope", epoch))
	})
}

func TestMemoryStore_SweepAndStats(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	_ = s.Insert(ctx, newEntry("forever", "http://a.com", nil), epoch)
	_ = s.Insert(ctx, newEntry("short", "http://b.com", at(time.Minute)), epoch)
	_ = s.Insert(ctx, newEntry("long", "http://c.com", at(time.Hour)), epoch)

	later := epoch.Add(10 * time.Minute)

	stats, err := s.Stats(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, shortener.Stats{Total: 3, Active: 2}, stats)

	removed, err := s.Sweep(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, []shortener.Code{"short"}, removed)

	stats, err = s.Stats(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, shortener.Stats{Total: 2, Active: 2}, stats)
}
