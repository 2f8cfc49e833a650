package handlers

import (
	"context"
	"time"
)

// Status reports link counts for operators.
func (h *LinkHandler) Status(ctx context.Context, _ *struct{}) (*StatusResponse, error) {
	stats, err := h.registry.Stats(ctx)
	if err != nil {
		return nil, h.problem("count links", err)
	}

	resp := &StatusResponse{}
	resp.Body.Status = "ok"
	resp.Body.BaseURL = h.baseURL
	resp.Body.Timestamp = time.Now().UTC()
	resp.Body.TotalURLs = stats.Total
	resp.Body.ActiveURLs = stats.Active

	return resp, nil
}
