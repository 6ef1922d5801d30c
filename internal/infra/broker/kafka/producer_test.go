package kafka

import (
	"context"
	"errors"
	"testing"
)

func TestRecordHeadersAreSorted(t *testing.T) {
	hs := recordHeaders(map[string]string{"listing_id": "l-1", "event": "booking.requested", "aggregate_id": "bk_1"})
	want := []string{"aggregate_id", "event", "listing_id"}
	if len(hs) != len(want) {
		t.Fatalf("headers = %d, want %d", len(hs), len(want))
	}
	for i, k := range want {
		if string(hs[i].Key) != k {
			t.Fatalf("header %d = %s, want %s", i, hs[i].Key, k)
		}
	}
}

func TestClosedProducerRejectsPublish(t *testing.T) {
	p := &Producer{}
	if err := p.Publish(context.Background(), "t", "k", nil, nil); !errors.Is(err, ErrProducerClosed) {
		t.Fatalf("err = %v, want ErrProducerClosed", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close of an unopened producer: %v", err)
	}
}
