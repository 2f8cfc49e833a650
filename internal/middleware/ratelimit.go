package middleware

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/ratelimit"
	"go.uber.org/zap"
)

// PolicyRateLimiter rejects requests that exceed the policy with 429.
//
// Operations may carry a ratelimit.EndpointConfig in their metadata to turn
// limiting off, pick a scope, or replace the policy with their own limits.
func PolicyRateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	resolver ratelimit.ScopeResolver,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		var (
			client    = clientIP(ctx)
			route     = routeOf(ctx)
			violation *ratelimit.Violation
			err       error
		)

		cfg, ok := ratelimit.EndpointConfigOf(ctx)

		switch {
		case ok && cfg.Disabled:
			next(ctx)

			return
		case ok && len(cfg.Limits) > 0:
			violation, err = limiter.CheckRoute(ctx.Context(), client, route, cfg.Limits)
		default:
			violation, err = limiter.Check(ctx.Context(), client, resolver.Resolve(ctx))
		}

		if err != nil {
			logger.Error("rate limit check failed", zap.String("route", route), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if violation != nil {
			logger.Warn("rate limit exceeded",
				zap.String("route", route),
				zap.String("method", ctx.Method()),
				zap.String("scope", string(violation.Scope)),
				zap.Int64("count", violation.Count),
				zap.Int64("max", violation.Limit.Max),
				zap.Duration("window", violation.Limit.Window),
				zap.String("client_ip", client),
			)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, violation.Error())

			return
		}

		next(ctx)
	}
}

func routeOf(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ctx.URL().Path
}
