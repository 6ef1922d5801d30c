package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	appoutbox "staybook/internal/app/outbox"
)

type fakeQueue struct {
	docs   []*EventDocument
	sent   []string
	failed map[string]time.Time
}

func (q *fakeQueue) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	if len(q.docs) == 0 {
		return nil, nil
	}
	doc := q.docs[0]
	q.docs = q.docs[1:]
	return doc, nil
}

func (q *fakeQueue) MarkSent(ctx context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	if q.failed == nil {
		q.failed = map[string]time.Time{}
	}
	q.failed[id] = next
	return nil
}

type published struct {
	topic, key string
	payload    []byte
	headers    map[string]string
}

type fakeProducer struct {
	out  []published
	fail bool
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.out = append(p.out, published{topic, key, payload, headers})
	return nil
}

func TestWorkerRelaysCloudEvent(t *testing.T) {
	q := &fakeQueue{docs: []*EventDocument{{
		ID:         "ev-1",
		Name:       "booking.requested",
		Payload:    []byte(`{"booking_id":"bk_1"}`),
		Aggregate:  "bk_1",
		ListingID:  "l-1",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
		OccurredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}}}
	p := &fakeProducer{}
	w := &Worker{Store: q, Producer: p, TopicPrefix: "dev.", ID: "w1"}
	if err := w.drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(p.out) != 1 || len(q.sent) != 1 {
		t.Fatalf("expected one publish, got %+v", p.out)
	}
	msg := p.out[0]
	if msg.topic != "dev.booking.events.v1" || msg.key != "l-1" || msg.headers[appoutbox.HeaderListingID] != "l-1" {
		t.Fatalf("unexpected message %+v", msg)
	}
	var env map[string]any
	if err := json.Unmarshal(msg.payload, &env); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if env["type"] != "booking.requested.v1" || env["traceparent"] != "00-abc-def-01" || env["specversion"] != "1.0" {
		t.Fatalf("unexpected envelope %v", env)
	}
}

func TestWorkerBacksOffOnFailure(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	q := &fakeQueue{docs: []*EventDocument{{ID: "ev-1", Name: "x.y", Payload: []byte(`{}`), Attempts: 1}}}
	w := &Worker{
		Store:    q,
		Producer: &fakeProducer{fail: true},
		Backoff:  []time.Duration{time.Second, time.Minute},
		Now:      func() time.Time { return now },
	}
	if err := w.drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if got := q.failed["ev-1"]; !got.Equal(now.Add(time.Minute)) {
		t.Fatalf("next attempt = %v, want +1m", got)
	}
}
