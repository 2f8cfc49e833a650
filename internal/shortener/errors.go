package shortener

import "errors"

var (
	ErrInvalidURL            = errors.New("invalid url format")
	ErrInvalidValidity       = errors.New("validity must be a positive number of minutes")
	ErrInvalidShortcode      = errors.New("shortcode must be alphanumeric and 4-32 characters")
	ErrShortcodeInUse        = errors.New("shortcode already in use")
	ErrNotFound              = errors.New("url not found")
	ErrExpired               = errors.New("short link expired")
	ErrInvalidRedirectTarget = errors.New("invalid redirect url")

	// ErrCodeSpaceExhausted is returned when every generated code collided with a live entry.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique shortcode")
)
