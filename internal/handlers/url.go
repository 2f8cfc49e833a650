package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// LinkRegistry is the part of shortener.Registry the HTTP layer needs.
type LinkRegistry interface {
	Create(ctx context.Context, params shortener.CreateParams) (*shortener.Entry, error)
	Resolve(ctx context.Context, code string) (string, error)
	Stats(ctx context.Context) (shortener.Stats, error)
}

// CreatedHook observes every successfully created link.
type CreatedHook func(ctx context.Context, entry *shortener.Entry)

// LinkHandler serves link creation and redirects.
type LinkHandler struct {
	registry  LinkRegistry
	baseURL   string
	onCreated CreatedHook
	logger    *zap.Logger
}

// NewLinkHandler creates a handler. onCreated may be nil.
func NewLinkHandler(registry LinkRegistry, baseURL string, onCreated CreatedHook, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		registry:  registry,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		onCreated: onCreated,
		logger:    logger,
	}
}

// CreateLink issues a short link.
func (h *LinkHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	params, err := createParams(req)
	if err != nil {
		return nil, h.problem("create link", err)
	}

	entry, err := h.registry.Create(ctx, params)
	if err != nil {
		return nil, h.problem("create link", err)
	}

	if h.onCreated != nil {
		h.onCreated(ctx, entry)
	}

	shortURL := h.baseURL + "/" + string(entry.Code)

	resp := &CreateLinkResponse{Location: shortURL}
	resp.Body.ShortURL = shortURL
	resp.Body.Shortcode = string(entry.Code)
	resp.Body.OriginalURL = entry.URL
	resp.Body.ExpiresAt = entry.ExpiresAt

	return resp, nil
}

// createParams converts the loosely typed body. A non-string url is treated
// as empty and a non-numeric validity as NaN, so the registry rejects both in
// its usual order. A non-string shortcode is rejected here.
func createParams(req *CreateLinkRequest) (shortener.CreateParams, error) {
	var params shortener.CreateParams

	if raw, ok := req.Body.URL.(string); ok {
		params.URL = raw
	}

	switch v := req.Body.Validity.(type) {
	case nil:
	case float64:
		params.ValidityMinutes = &v
	default:
		nan := math.NaN()
		params.ValidityMinutes = &nan
	}

	switch c := req.Body.Shortcode.(type) {
	case nil:
	case string:
		params.Code = c
	default:
		return params, shortener.ErrInvalidShortcode
	}

	return params, nil
}

// Redirect sends the client to the destination stored under the code.
func (h *LinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	target, err := h.registry.Resolve(ctx, req.Code)
	if err != nil {
		return nil, h.problem("resolve link", err)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: target,
	}, nil
}

// problem maps registry errors to HTTP problems. Unknown errors are logged
// and hidden behind a generic 500.
func (h *LinkHandler) problem(op string, err error) error {
	switch {
	case errors.Is(err, shortener.ErrExpired):
		if err != shortener.ErrExpired { //nolint:errorlint // joined with an eviction failure
			h.logger.Warn("failed to evict expired link", zap.Error(err))
		}

		return huma.Error410Gone(shortener.ErrExpired.Error())
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound(shortener.ErrNotFound.Error())
	case errors.Is(err, shortener.ErrShortcodeInUse):
		return huma.Error409Conflict(shortener.ErrShortcodeInUse.Error())
	case errors.Is(err, shortener.ErrInvalidURL),
		errors.Is(err, shortener.ErrInvalidValidity),
		errors.Is(err, shortener.ErrInvalidShortcode),
		errors.Is(err, shortener.ErrInvalidRedirectTarget):
		return huma.Error400BadRequest(err.Error())
	default:
		h.logger.Error("failed to "+op, zap.Error(err))

		return huma.Error500InternalServerError("internal server error")
	}
}
