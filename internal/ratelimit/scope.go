package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope groups requests that share a rate limit budget.
type Scope string

const (
	// ScopeGlobal covers every request.
	ScopeGlobal Scope = "global"
	// ScopeRead covers redirects and lookups.
	ScopeRead Scope = "read"
	// ScopeWrite covers link creation.
	ScopeWrite Scope = "write"
)

// MetadataKey is the huma.Operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig overrides rate limiting for a single operation.
type EndpointConfig struct {
	// Scope replaces the method based scope. Ignored when Limits is set.
	Scope Scope
	// Limits replaces the policy entirely for this operation.
	Limits []LimitConfig
	// Disabled turns rate limiting off for this operation.
	Disabled bool
}

// Metadata returns operation metadata carrying cfg.
func (cfg EndpointConfig) Metadata() map[string]any {
	return map[string]any{MetadataKey: cfg}
}

// EndpointConfigOf returns the EndpointConfig attached to the current operation, if any.
func EndpointConfigOf(ctx huma.Context) (EndpointConfig, bool) {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return EndpointConfig{}, false
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)

	return cfg, ok
}

// ScopeResolver decides which scopes a request counts against.
type ScopeResolver interface {
	Resolve(ctx huma.Context) []Scope
}

// MethodScopeResolver treats safe methods as reads and everything else as writes.
type MethodScopeResolver struct{}

// NewMethodScopeResolver creates a new method-based scope resolver.
func NewMethodScopeResolver() *MethodScopeResolver {
	return &MethodScopeResolver{}
}

func (MethodScopeResolver) Resolve(ctx huma.Context) []Scope {
	return []Scope{ScopeGlobal, methodScope(ctx.Method())}
}

func methodScope(method string) Scope {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ScopeRead
	default:
		return ScopeWrite
	}
}

// OperationScopeResolver prefers the scope declared in operation metadata and
// falls back to the request method.
type OperationScopeResolver struct {
	fallback ScopeResolver
}

// NewOperationScopeResolver creates a new operation-aware scope resolver.
func NewOperationScopeResolver() *OperationScopeResolver {
	return &OperationScopeResolver{fallback: NewMethodScopeResolver()}
}

func (r *OperationScopeResolver) Resolve(ctx huma.Context) []Scope {
	if cfg, ok := EndpointConfigOf(ctx); ok && cfg.Scope != "" {
		return []Scope{ScopeGlobal, cfg.Scope}
	}

	return r.fallback.Resolve(ctx)
}
