package container

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
)

// EventsPackage publishes link events to Redis streams.
func EventsPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		rdb := do.MustInvoke[*Redis](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     rdb.Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLogger(logger.Named("watermill")))
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (*events.Publisher, error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return events.NewPublisher(
			messaging.NewPublishFunc[events.LinkCreated](group.Publisher(), events.TopicLinkCreated),
			messaging.NewPublishFunc[events.LinkExpired](group.Publisher(), events.TopicLinkExpired),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// ConsumerGroupPackage subscribes the audit log and cache purger to link events.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		rdb := do.MustInvoke[*Redis](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        rdb.Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: opts.ConsumerGroup,
		}, messaging.NewZapLogger(logger.Named("watermill")))
		if err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(
			messaging.NewConsumer(subscriber, events.TopicLinkCreated, events.AuditCreated(logger), logger),
			messaging.NewConsumer(subscriber, events.TopicLinkExpired,
				events.PurgeExpired(store.NewLinkCache(rdb.Client), logger), logger),
		)

		return group, nil
	})
}
