package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	healthy   = "healthy"
	unhealthy = "unhealthy"
)

const defaultTimeout = 2 * time.Second

// Checker reports whether a dependency is reachable. *pgxpool.Pool satisfies it.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler reports the state of every registered dependency.
type Handler struct {
	checkers map[string]Checker
	timeout  time.Duration
}

// NewHandler creates a handler for the named checkers. Nil checkers are skipped.
func NewHandler(checkers map[string]Checker) *Handler {
	filtered := make(map[string]Checker, len(checkers))

	for name, c := range checkers {
		if c != nil {
			filtered[name] = c
		}
	}

	return &Handler{checkers: filtered, timeout: defaultTimeout}
}

type Response struct {
	Body struct {
		Status       string            `doc:"ok, or degraded when a dependency is down" example:"ok" json:"status"`
		Dependencies map[string]string `doc:"Per dependency state"                                   json:"dependencies"`
	}
}

// Check pings all dependencies concurrently and always answers 200.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = StatusOK
	resp.Body.Dependencies = make(map[string]string, len(h.checkers))

	var (
		mu sync.Mutex
		eg errgroup.Group
	)

	for name, checker := range h.checkers {
		eg.Go(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			state := healthy
			if err := checker.Ping(pingCtx); err != nil {
				state = unhealthy
			}

			mu.Lock()
			defer mu.Unlock()

			resp.Body.Dependencies[name] = state
			if state == unhealthy {
				resp.Body.Status = StatusDegraded
			}

			return nil
		})
	}

	_ = eg.Wait()

	return resp, nil
}

// RegisterRoutes registers the health check route.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Service health",
		Tags:        []string{"Health"},
		Metadata:    ratelimit.EndpointConfig{Disabled: true}.Metadata(),
	}, h.Check)
}
