package ratelimit

import (
	"fmt"
	"time"
)

// LimitConfig allows at most Max requests per sliding Window.
type LimitConfig struct {
	Window time.Duration `yaml:"window"`
	Max    int64         `yaml:"max"`
}

func (c LimitConfig) String() string {
	return fmt.Sprintf("%d/%s", c.Max, c.Window)
}

// Policy maps each scope to the limits enforced on it. Every limit of every
// resolved scope must hold for a request to pass.
type Policy struct {
	Limits map[Scope][]LimitConfig `yaml:"limits"`
}

// PolicyBuilder assembles a Policy.
type PolicyBuilder struct {
	limits map[Scope][]LimitConfig
}

// NewPolicyBuilder creates an empty policy builder.
func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{limits: make(map[Scope][]LimitConfig)}
}

// AddLimit appends a limit to scope. Non-positive values are ignored.
func (b *PolicyBuilder) AddLimit(scope Scope, limit int64, window time.Duration) *PolicyBuilder {
	if limit <= 0 || window <= 0 {
		return b
	}

	b.limits[scope] = append(b.limits[scope], LimitConfig{Window: window, Max: limit})

	return b
}

// Build returns a Policy holding a copy of the limits added so far.
func (b *PolicyBuilder) Build() *Policy {
	limits := make(map[Scope][]LimitConfig, len(b.limits))
	for scope, l := range b.limits {
		limits[scope] = append([]LimitConfig(nil), l...)
	}

	return &Policy{Limits: limits}
}

// DefaultPolicy is used when no policy file is configured.
func DefaultPolicy() *Policy {
	return NewPolicyBuilder().
		AddLimit(ScopeGlobal, 1000, time.Minute).
		AddLimit(ScopeRead, 600, time.Minute).
		AddLimit(ScopeWrite, 30, time.Minute).
		AddLimit(ScopeWrite, 500, 24*time.Hour).
		Build()
}
