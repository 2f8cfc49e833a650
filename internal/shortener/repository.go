package shortener

import (
	"context"
	"time"
)

// Repository defines the storage operations the registry relies on.
type Repository interface {
	// Insert stores entry unless a live entry already holds its code, in which case it
	// returns ErrShortcodeInUse. An expired holder is replaced. Check and write are one
	// atomic step.
	Insert(ctx context.Context, entry *Entry, now time.Time) error

	// GetByCode returns the entry stored under code, expired or not.
	// Returns ErrNotFound if nothing is stored.
	GetByCode(ctx context.Context, code Code) (*Entry, error)

	// EvictExpired deletes the entry under code only if it is expired at now.
	EvictExpired(ctx context.Context, code Code, now time.Time) error

	// Sweep deletes every entry expired at now and returns their codes.
	Sweep(ctx context.Context, now time.Time) ([]Code, error)

	// Stats counts stored and live entries at now.
	Stats(ctx context.Context, now time.Time) (Stats, error)
}
