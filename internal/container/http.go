package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/ratelimit"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
)

// RateLimitPackage provides the policy limiter unless rate limiting is off.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		opts := do.MustInvoke[*Options](i)

		policy := ratelimit.DefaultPolicy()

		if opts.RateLimitFile != "" {
			loaded, err := ratelimit.LoadPolicy(opts.RateLimitFile)
			if err != nil {
				return nil, err
			}

			policy = loaded
		}

		var counters ratelimit.Store = store.NewRateLimitMemoryStore()

		if opts.RateLimit == StorageRedis {
			rdb, err := do.Invoke[*Redis](i)
			if err != nil {
				return nil, err
			}

			counters = store.NewRateLimitRedisStore(rdb.Client)
		}

		return ratelimit.NewPolicyLimiter(counters, policy), nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		opts := do.MustInvoke[*Options](i)

		router := chi.NewMux()
		router.Use(
			chimw.RequestID,
			chimw.RealIP,
			chimw.Recoverer,
			cors.Handler(cors.Options{
				AllowedOrigins: opts.corsOrigins(),
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				ExposedHeaders: []string{"Location"},
				MaxAge:         300,
			}),
		)

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("Shortlink", "1.0.0"))
		api.UseMiddleware(middleware.RequestLogger(logger))

		if opts.RateLimit != RateLimitOff {
			limiter, err := do.Invoke[*ratelimit.PolicyLimiter](i)
			if err != nil {
				return nil, err
			}

			api.UseMiddleware(middleware.PolicyRateLimiter(api, limiter, ratelimit.NewOperationScopeResolver(), logger))
		}

		var onCreated handlers.CreatedHook
		if opts.Events {
			onCreated = do.MustInvoke[*events.Publisher](i).LinkCreated
		}

		registry := do.MustInvoke[*shortener.Registry](i)

		health.RegisterRoutes(api, health.NewHandler(healthCheckers(i, opts)))
		handlers.RegisterRoutes(api, handlers.NewLinkHandler(registry, opts.PublicBaseURL(), onCreated, logger))

		return api, nil
	})
}

func healthCheckers(i *do.Injector, opts *Options) map[string]health.Checker {
	checkers := map[string]health.Checker{}

	if opts.Storage == StoragePostgres {
		checkers["postgres"] = do.MustInvoke[*Postgres](i)
	}

	usesRedis := opts.Storage == StorageRedis ||
		(opts.Storage == StoragePostgres && opts.CacheTTL > 0) ||
		opts.RateLimit == StorageRedis ||
		opts.Events

	if usesRedis {
		checkers["redis"] = health.NewRedisChecker(do.MustInvoke[*Redis](i).Client)
	}

	return checkers
}
