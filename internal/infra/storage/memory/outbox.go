package memory

import (
	"context"
	"sync"

	appoutbox "staybook/internal/app/outbox"
)

// Subscriber receives flushed records in process.
type Subscriber func(ctx context.Context, rec appoutbox.EventRecord)

// Outbox buffers records until Flush hands them to subscribers. It stands in
// for the Mongo outbox plus Kafka relay when everything runs in one process.
type Outbox struct {
	mu          sync.Mutex
	records     []appoutbox.EventRecord
	subscribers []Subscriber
	delivered   int
}

func NewOutbox(subs ...Subscriber) *Outbox {
	return &Outbox{subscribers: subs}
}

func (o *Outbox) Subscribe(sub Subscriber) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subscribers = append(o.subscribers, sub)
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	subs := append([]Subscriber(nil), o.subscribers...)
	o.delivered += len(pending)
	o.mu.Unlock()

	for _, rec := range pending {
		for _, sub := range subs {
			sub(ctx, rec)
		}
	}
	return nil
}

// Delivered counts records handed to subscribers so far.
func (o *Outbox) Delivered() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.delivered
}

var _ appoutbox.Outbox = (*Outbox)(nil)
