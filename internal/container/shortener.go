package container

import (
	"fmt"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
)

// RepositoryPackage selects the link store. Postgres gets a Redis read cache
// when CacheTTL is positive.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Storage {
		case StorageRedis:
			rdb, err := do.Invoke[*Redis](i)
			if err != nil {
				return nil, err
			}

			return store.NewRedisStore(rdb.Client), nil
		case StoragePostgres:
			pg, err := do.Invoke[*Postgres](i)
			if err != nil {
				return nil, err
			}

			var repo shortener.Repository = store.NewPostgresStore(pg.Pool)
			if opts.CacheTTL <= 0 {
				return repo, nil
			}

			rdb, err := do.Invoke[*Redis](i)
			if err != nil {
				return nil, err
			}

			return store.NewCachedRepository(repo, rdb.Client, time.Duration(opts.CacheTTL)*time.Second), nil
		default:
			return store.NewMemoryStore(), nil
		}
	})
}

// RegistryPackage provides the shortcode registry.
func RegistryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Registry, error) {
		opts := do.MustInvoke[*Options](i)
		repo := do.MustInvoke[shortener.Repository](i)

		generate, err := nanoid.CustomASCII(shortener.Alphabet, opts.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("code generator: %w", err)
		}

		registryOpts := []shortener.Option{shortener.WithReservedCodes(handlers.ReservedCodes...)}

		if opts.Events {
			publisher := do.MustInvoke[*events.Publisher](i)
			registryOpts = append(registryOpts, shortener.WithEvictionHook(publisher.LinkExpired))
		}

		return shortener.NewRegistry(repo, generate, registryOpts...), nil
	})
}

// SweeperPackage provides the expired link sweeper.
func SweeperPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Sweeper, error) {
		opts := do.MustInvoke[*Options](i)

		return shortener.NewSweeper(
			do.MustInvoke[*shortener.Registry](i),
			time.Duration(opts.SweepInterval)*time.Second,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}
