package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store counts requests per key over a sliding window.
type Store interface {
	// Record registers a hit and returns the number of hits inside window, itself included.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}

// Violation describes the first limit a request broke.
type Violation struct {
	Scope Scope
	Limit LimitConfig
	Count int64
}

func (v *Violation) Error() string {
	if v.Scope == "" {
		return fmt.Sprintf("rate limit exceeded: %d/%d requests in %s", v.Count, v.Limit.Max, v.Limit.Window)
	}

	return fmt.Sprintf("rate limit exceeded: %s scope, %d/%d requests in %s",
		v.Scope, v.Count, v.Limit.Max, v.Limit.Window)
}

// PolicyLimiter enforces a Policy against a Store.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

// Check records the request for client under every limit of scopes and
// returns the first violation, or nil when the request may proceed.
func (l *PolicyLimiter) Check(ctx context.Context, client string, scopes []Scope) (*Violation, error) {
	for _, scope := range scopes {
		for _, limit := range l.policy.Limits[scope] {
			key := fmt.Sprintf("%s:%s:%d", client, scope, limit.Window.Milliseconds())

			count, err := l.store.Record(ctx, key, limit.Window)
			if err != nil {
				return nil, fmt.Errorf("record %s: %w", scope, err)
			}

			if count > limit.Max {
				return &Violation{Scope: scope, Limit: limit, Count: count}, nil
			}
		}
	}

	return nil, nil //nolint:nilnil // no violation
}

// CheckRoute applies endpoint specific limits instead of the policy. Counters
// are shared by every request matching the route template.
func (l *PolicyLimiter) CheckRoute(
	ctx context.Context,
	client, route string,
	limits []LimitConfig,
) (*Violation, error) {
	for _, limit := range limits {
		key := fmt.Sprintf("%s:route:%s:%d", client, route, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, key, limit.Window)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", route, err)
		}

		if count > limit.Max {
			return &Violation{Limit: limit, Count: count}, nil
		}
	}

	return nil, nil //nolint:nilnil // no violation
}
