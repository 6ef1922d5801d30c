package kafka

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
)

type recordingCache struct {
	calls []string
}

func (c *recordingCache) Invalidate(id string) { c.calls = append(c.calls, id) }

func TestInvalidationHandlerUsesListingHeader(t *testing.T) {
	cache := &recordingCache{}
	h := InvalidationHandler{Cache: cache}
	scoped := &sarama.ConsumerMessage{Headers: []*sarama.RecordHeader{
		{Key: []byte("content-type"), Value: []byte("application/cloudevents+json")},
		{Key: []byte("listing-id"), Value: []byte("l-7")},
	}}
	global := &sarama.ConsumerMessage{}
	if err := h.Handle(context.Background(), scoped); err != nil {
		t.Fatalf("handle: %v", err)
	}
	_ = h.Handle(context.Background(), global)
	if len(cache.calls) != 2 || cache.calls[0] != "l-7" || cache.calls[1] != "" {
		t.Fatalf("unexpected invalidations %q", cache.calls)
	}
}
