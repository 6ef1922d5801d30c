package kafka

import (
	"context"
	"log/slog"

	"github.com/IBM/sarama"

	appoutbox "staybook/internal/app/outbox"
)

// Invalidator drops cached calendar snapshots. An empty id drops all of them.
type Invalidator interface {
	Invalidate(listingID string)
}

// InvalidationHandler evicts snapshots for every calendar event relayed from
// the outbox, so replicas that did not serve the write stop showing stale
// availability. Events without a listing-id header are global changes.
type InvalidationHandler struct {
	Cache  Invalidator
	Logger *slog.Logger
}

func (h InvalidationHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	listingID := header(msg, appoutbox.HeaderListingID)
	h.Cache.Invalidate(listingID)
	if h.Logger != nil {
		h.Logger.DebugContext(ctx, "calendar snapshot invalidated",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"listing_id", listingID,
			"event_id", header(msg, "ce-id"),
		)
	}
	return nil
}

func header(msg *sarama.ConsumerMessage, key string) string {
	for _, h := range msg.Headers {
		if h != nil && string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}
