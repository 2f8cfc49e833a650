package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/ratelimit"
)

// ReservedCodes are paths served by other routes; they can never be issued as shortcodes.
var ReservedCodes = []string{"health", "docs"}

// RegisterRoutes registers the link routes with their rate limit scopes.
func RegisterRoutes(api huma.API, h *LinkHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "create-link",
		Method:      http.MethodPost,
		Path:        "/shorten",
		Summary:     "Create short link",
		Description: "Issues a generated or custom shortcode for a URL, optionally expiring after a number of minutes.",
		Tags:        []string{"Links"},
		Errors:      []int{http.StatusBadRequest, http.StatusConflict},
		Metadata:    ratelimit.EndpointConfig{Scope: ratelimit.ScopeWrite}.Metadata(),
	}, h.CreateLink)

	huma.Register(api, huma.Operation{
		OperationID: "link-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Link statistics",
		Tags:        []string{"Links"},
	}, h.Status)

	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/{code}",
		Summary:       "Follow short link",
		Description:   "Redirects to the destination stored under the code.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusFound,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusGone},
		Metadata:      ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead}.Metadata(),
	}, h.Redirect)
}
