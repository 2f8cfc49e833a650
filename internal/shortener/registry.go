package shortener

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// Alphabet is the character set of generated codes.
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	DefaultMaxAttempts = 10
)

// maxValidityMinutes keeps validity*time.Minute within a time.Duration.
const maxValidityMinutes = float64(math.MaxInt64 / int64(time.Minute))

// CodeGenerator generates candidate short codes.
type CodeGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// EvictionHook is called for every code removed because it expired.
type EvictionHook func(ctx context.Context, code Code)

// CreateParams describes a shortening request.
type CreateParams struct {
	URL string
	// Code is an optional caller-chosen shortcode.
	Code string
	// ValidityMinutes is optional; nil means the link never expires.
	ValidityMinutes *float64
}

// Registry issues and resolves shortcodes.
type Registry struct {
	store        Repository
	generateCode CodeGenerator
	now          Clock
	maxAttempts  int
	reserved     map[Code]struct{}
	onEvict      EvictionHook
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces time.Now.
func WithClock(clock Clock) Option {
	return func(r *Registry) {
		r.now = clock
	}
}

// WithMaxAttempts bounds how many generated codes are tried per creation.
func WithMaxAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithReservedCodes marks codes that shadow other routes and can never be issued.
func WithReservedCodes(codes ...string) Option {
	return func(r *Registry) {
		for _, c := range codes {
			r.reserved[Code(c)] = struct{}{}
		}
	}
}

// WithEvictionHook registers a callback for expired entries removed from the store.
func WithEvictionHook(hook EvictionHook) Option {
	return func(r *Registry) {
		r.onEvict = hook
	}
}

// NewRegistry creates a registry backed by store.
func NewRegistry(store Repository, generator CodeGenerator, opts ...Option) *Registry {
	r := &Registry{
		store:        store,
		generateCode: generator,
		now:          time.Now,
		maxAttempts:  DefaultMaxAttempts,
		reserved:     make(map[Code]struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Create issues a shortcode for params.URL.
func (r *Registry) Create(ctx context.Context, params CreateParams) (*Entry, error) {
	target := NormalizeURL(params.URL)
	if !IsValidURL(target) {
		return nil, ErrInvalidURL
	}

	now := r.now()

	expiresAt, err := expiry(now, params.ValidityMinutes)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		URL:       target,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	if params.Code != "" {
		return r.insertCustom(ctx, entry, params.Code, now)
	}

	return r.insertGenerated(ctx, entry, now)
}

func (r *Registry) insertCustom(ctx context.Context, entry *Entry, code string, now time.Time) (*Entry, error) {
	if !IsValidCode(code) {
		return nil, ErrInvalidShortcode
	}

	if _, ok := r.reserved[Code(code)]; ok {
		return nil, ErrShortcodeInUse
	}

	entry.Code = Code(code)

	if err := r.store.Insert(ctx, entry, now); err != nil {
		if errors.Is(err, ErrShortcodeInUse) {
			return nil, ErrShortcodeInUse
		}

		return nil, fmt.Errorf("insert %q: %w", code, err)
	}

	return entry, nil
}

func (r *Registry) insertGenerated(ctx context.Context, entry *Entry, now time.Time) (*Entry, error) {
	for range r.maxAttempts {
		code := Code(r.generateCode())
		if _, ok := r.reserved[code]; ok {
			continue
		}

		entry.Code = code

		err := r.store.Insert(ctx, entry, now)
		if err == nil {
			return entry, nil
		}

		if !errors.Is(err, ErrShortcodeInUse) {
			return nil, fmt.Errorf("insert %q: %w", code, err)
		}
	}

	return nil, ErrCodeSpaceExhausted
}

// Resolve returns the destination URL stored under code.
func (r *Registry) Resolve(ctx context.Context, code string) (string, error) {
	if !codeLengthInBounds(code) {
		return "", ErrInvalidShortcode
	}

	entry, err := r.store.GetByCode(ctx, Code(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("get %q: %w", code, err)
	}

	now := r.now()

	if entry.Expired(now) {
		if err := r.store.EvictExpired(ctx, entry.Code, now); err != nil {
			return "", errors.Join(ErrExpired, fmt.Errorf("evict %q: %w", code, err))
		}

		r.evicted(ctx, entry.Code)

		return "", ErrExpired
	}

	if !IsValidURL(entry.URL) {
		return "", ErrInvalidRedirectTarget
	}

	return entry.URL, nil
}

// Stats counts stored and live entries.
func (r *Registry) Stats(ctx context.Context) (Stats, error) {
	return r.store.Stats(ctx, r.now())
}

// Sweep removes every expired entry and returns how many were removed.
func (r *Registry) Sweep(ctx context.Context) (int, error) {
	codes, err := r.store.Sweep(ctx, r.now())
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}

	for _, code := range codes {
		r.evicted(ctx, code)
	}

	return len(codes), nil
}

func (r *Registry) evicted(ctx context.Context, code Code) {
	if r.onEvict != nil {
		r.onEvict(ctx, code)
	}
}

func expiry(now time.Time, validityMinutes *float64) (*time.Time, error) {
	if validityMinutes == nil {
		return nil, nil //nolint:nilnil // no validity means no expiry
	}

	v := *validityMinutes
	if math.IsNaN(v) || v <= 0 || v > maxValidityMinutes {
		return nil, ErrInvalidValidity
	}

	t := now.Add(time.Duration(v * float64(time.Minute)))

	return &t, nil
}
