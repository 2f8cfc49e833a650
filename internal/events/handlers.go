package events

import (
	"context"
	"fmt"

	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// AuditCreated logs every issued link.
func AuditCreated(logger *zap.Logger) messaging.Handler[LinkCreated] {
	return func(_ context.Context, event *LinkCreated) error {
		fields := []zap.Field{
			zap.String("code", event.Code),
			zap.String("url", event.URL),
			zap.Time("created_at", event.CreatedAt),
		}
		if event.ExpiresAt != nil {
			fields = append(fields, zap.Time("expires_at", *event.ExpiresAt))
		}

		logger.Info("link created", fields...)

		return nil
	}
}

// Purger drops cached copies of entries.
type Purger interface {
	Purge(ctx context.Context, codes ...shortener.Code) error
}

// PurgeExpired drops the cached copy of each expired link.
func PurgeExpired(purger Purger, logger *zap.Logger) messaging.Handler[LinkExpired] {
	return func(ctx context.Context, event *LinkExpired) error {
		if err := purger.Purge(ctx, shortener.Code(event.Code)); err != nil {
			return fmt.Errorf("purge %s: %w", event.Code, err)
		}

		logger.Info("link expired", zap.String("code", event.Code), zap.Time("removed_at", event.RemovedAt))

		return nil
	}
}
