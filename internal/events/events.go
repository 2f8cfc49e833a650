// Package events defines the link lifecycle events published to the broker.
package events

import (
	"context"
	"time"

	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

const (
	TopicLinkCreated = "link.created"
	TopicLinkExpired = "link.expired"
)

// LinkCreated is published after a shortcode is issued.
type LinkCreated struct {
	Code      string     `json:"code"`
	URL       string     `json:"url"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// LinkExpired is published after an expired entry is removed from the store.
type LinkExpired struct {
	Code      string    `json:"code"`
	RemovedAt time.Time `json:"removedAt"`
}

// Publisher emits link events. Publish failures are logged, never returned.
type Publisher struct {
	created messaging.Publish[LinkCreated]
	expired messaging.Publish[LinkExpired]
	logger  *zap.Logger
}

// NewPublisher creates a link event publisher.
func NewPublisher(
	created messaging.Publish[LinkCreated],
	expired messaging.Publish[LinkExpired],
	logger *zap.Logger,
) *Publisher {
	return &Publisher{
		created: created,
		expired: expired,
		logger:  logger,
	}
}

// LinkCreated publishes a LinkCreated event for entry.
func (p *Publisher) LinkCreated(ctx context.Context, entry *shortener.Entry) {
	event := &LinkCreated{
		Code:      string(entry.Code),
		URL:       entry.URL,
		CreatedAt: entry.CreatedAt,
		ExpiresAt: entry.ExpiresAt,
	}

	if err := p.created(ctx, event); err != nil {
		p.logger.Error("failed to publish link created event", zap.String("code", event.Code), zap.Error(err))
	}
}

// LinkExpired has the shortener.EvictionHook signature.
func (p *Publisher) LinkExpired(ctx context.Context, code shortener.Code) {
	event := &LinkExpired{Code: string(code), RemovedAt: time.Now()}

	if err := p.expired(ctx, event); err != nil {
		p.logger.Error("failed to publish link expired event", zap.String("code", event.Code), zap.Error(err))
	}
}
