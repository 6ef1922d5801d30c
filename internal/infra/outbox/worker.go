package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "staybook/internal/app/outbox"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Queue is the part of Store the worker needs.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

type Worker struct {
	Store       Queue
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.logger().Error("outbox relay failed", "worker", w.ID, "error", err)
			}
		}
	}
}

// drain publishes until nothing is due.
func (w *Worker) drain(ctx context.Context) error {
	for {
		sent, err := w.processOnce(ctx)
		if err != nil || !sent {
			return err
		}
	}
}

func (w *Worker) processOnce(ctx context.Context) (bool, error) {
	doc, err := w.Store.Claim(ctx, w.ID)
	if err != nil || doc == nil {
		return false, err
	}
	topic := TopicFor(w.TopicPrefix, doc.Name)
	payload, headers, err := w.formatPayload(doc)
	if err == nil {
		err = w.Producer.Publish(ctx, topic, partitionKey(doc), payload, headers)
	}
	if err != nil {
		w.logger().Warn("outbox publish failed", "event_id", doc.ID, "event", doc.Name, "attempts", doc.Attempts+1, "error", err)
		if markErr := w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error()); markErr != nil {
			return false, markErr
		}
		return true, nil
	}
	return true, w.Store.MarkSent(ctx, doc.ID)
}

// formatPayload wraps the event in a structured CloudEvents envelope.
func (w *Worker) formatPayload(doc *EventDocument) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(doc.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              doc.ID,
		"type":            doc.Name + ".v1",
		"source":          w.source(),
		"subject":         doc.Aggregate,
		"time":            doc.OccurredAt.UTC(),
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := doc.Headers[appoutbox.HeaderTraceParent]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
		"ce-id":        doc.ID,
	}
	for k, v := range doc.Headers {
		headers[k] = v
	}
	if doc.ListingID != "" {
		headers[appoutbox.HeaderListingID] = doc.ListingID
	}
	return payload, headers, nil
}

// TopicFor maps "booking.requested" to "<prefix>booking.events.v1".
func TopicFor(prefix, name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return prefix + base + ".events.v1"
}

// partitionKey keeps every event of one calendar on one partition.
func partitionKey(doc *EventDocument) string {
	if doc.ListingID != "" {
		return doc.ListingID
	}
	return doc.Aggregate
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return w.now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return w.now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return w.now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://staybook"
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
