//go:build integration

package store_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     "shortener",
				"POSTGRES_PASSWORD": "shortener",
				"POSTGRES_DB":       "shortener",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("PostgreSQL container not available: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://shortener:shortener@%s:%d/shortener?sslmode=disable", host, port.Int())
}

func TestPostgresStoreIntegration(t *testing.T) {
	ctx := context.Background()
	databaseURL := setupPostgres(t)

	require.NoError(t, store.Migrate(databaseURL))
	require.NoError(t, store.Migrate(databaseURL), "migrations should be idempotent")

	pool, err := pgxpool.New(ctx, databaseURL)
	require.NoError(t, err)
	defer pool.Close()

	s := store.NewPostgresStore(pool)

	t.Run("insert and get by code", func(t *testing.T) {
		err := s.Insert(ctx, newEntry("pgget1", "http://example.com", at(time.Hour)), epoch)
		require.NoError(t, err)

		got, err := s.GetByCode(ctx, "pgget1")
		require.NoError(t, err)
		assert.Equal(t, shortener.Code("pgget1"), got.Code)
		assert.Equal(t, "http://example.com", got.URL)
		assert.True(t, epoch.Equal(got.CreatedAt))
		require.NotNil(t, got.ExpiresAt)
		assert.True(t, epoch.Add(time.Hour).Equal(*got.ExpiresAt))
	})

	t.Run("entry without expiry round trips as nil", func(t *testing.T) {
		require.NoError(t, s.Insert(ctx, newEntry("pgforever1", "http://example.com", nil), epoch))

		got, err := s.GetByCode(ctx, "pgforever1")
		require.NoError(t, err)
		assert.Nil(t, got.ExpiresAt)
	})

	t.Run("live code is rejected and preserved", func(t *testing.T) {
		_ = s.Insert(ctx, newEntry("pglive1", "http://old.com", nil), epoch)

		err := s.Insert(ctx, newEntry("pglive1", "http://new.com", nil), epoch)
		assert.ErrorIs(t, err, shortener.ErrShortcodeInUse)

		got, _ := s.GetByCode(ctx, "pglive1")
		assert.Equal(t, "http://old.com", got.URL)
	})

	t.Run("expired code is reusable", func(t *testing.T) {
		_ = s.Insert(ctx, newEntry("pgreuse1", "http://old.com", at(time.Minute)), epoch)

		err := s.Insert(ctx, newEntry("pgreuse1", "http://new.com", nil), epoch.Add(time.Hour))
		require.NoError(t, err)

		got, _ := s.GetByCode(ctx, "pgreuse1")
		assert.Equal(t, "http://new.com", got.URL)
	})

	t.Run("concurrent inserts of one code admit exactly one", func(t *testing.T) {
		var (
			wg      sync.WaitGroup
			success atomic.Int32
		)

		for range 20 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				if s.Insert(ctx, newEntry("pgrace1", "http://example.com", nil), epoch) == nil {
					success.Add(1)
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, int32(1), success.Load())
	})

	t.Run("evict only removes expired entries", func(t *testing.T) {
		_ = s.Insert(ctx, newEntry("pgevict1", "http://example.com", at(time.Minute)), epoch)

		require.NoError(t, s.EvictExpired(ctx, "pgevict1", epoch))
		_, err := s.GetByCode(ctx, "pgevict1")
		require.NoError(t, err)

		require.NoError(t, s.EvictExpired(ctx, "pgevict1", epoch.Add(time.Hour)))
		_, err = s.GetByCode(ctx, "pgevict1")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("sweep and stats", func(t *testing.T) {
		_, err := pool.Exec(ctx, "TRUNCATE short_links")
		require.NoError(t, err)

		_ = s.Insert(ctx, newEntry("pgkeep1", "http://a.com", nil), epoch)
		_ = s.Insert(ctx, newEntry("pgdrop1", "http://b.com", at(time.Minute)), epoch)

		later := epoch.Add(time.Hour)

		stats, err := s.Stats(ctx, later)
		require.NoError(t, err)
		assert.Equal(t, shortener.Stats{Total: 2, Active: 1}, stats)

		removed, err := s.Sweep(ctx, later)
		require.NoError(t, err)
		assert.Equal(t, []shortener.Code{"pgdrop1"}, removed)
	})

	t.Run("get non-existent returns ErrNotFound", func(t *testing.T) {
		got, err := s.GetByCode(ctx, "pgnonexistent")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}
