package shortener

import "time"

// Code represents a short URL code.
type Code string

// Entry is one shortened link. Entries are never mutated after creation.
type Entry struct {
	Code      Code
	URL       string
	CreatedAt time.Time
	ExpiresAt *time.Time // nil means the link never expires
}

// Expired reports whether the entry is past its expiry at now.
func (e *Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// Live reports whether the entry still holds its code at now.
func (e *Entry) Live(now time.Time) bool {
	return !e.Expired(now)
}

// Clone returns a copy that shares no memory with e.
func (e *Entry) Clone() *Entry {
	c := *e

	if e.ExpiresAt != nil {
		t := *e.ExpiresAt
		c.ExpiresAt = &t
	}

	return &c
}

// Stats summarises the registry contents.
type Stats struct {
	Total  int64
	Active int64
}
