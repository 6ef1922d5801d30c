package events

import "time"

// DomainEvent is anything an aggregate records for the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// ListingScoped events touch the calendar of one listing (empty for global ones).
type ListingScoped interface {
	CalendarListingID() string
}

type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	if event == nil {
		return
	}
	r.pending = append(r.pending, event)
}

func (r *EventRecorder) PendingEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

// DrainEvents returns pending events and clears the recorder.
func (r *EventRecorder) DrainEvents() []DomainEvent {
	out := r.PendingEvents()
	r.pending = nil
	return out
}
