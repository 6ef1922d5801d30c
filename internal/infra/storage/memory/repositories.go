package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
)

// ListingRepository keeps listings keyed by id. Stored values are copies so
// callers cannot mutate them without Save.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[listings.ListingID]listings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{items: make(map[listings.ListingID]listings.Listing)}
}

func (r *ListingRepository) ByID(ctx context.Context, id listings.ListingID) (*listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", listings.ErrListingNotFound, id)
	}
	return &l, nil
}

func (r *ListingRepository) Save(ctx context.Context, l *listings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *l
	stored.EventRecorder = eventsCleared()
	stored.Version++
	r.items[l.ID] = stored
	l.Version = stored.Version
	return nil
}

func (r *ListingRepository) List(ctx context.Context) ([]*listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*listings.Listing, 0, len(r.items))
	for _, l := range r.items {
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// BookingRepository keeps bookings with a per-listing index.
type BookingRepository struct {
	mu        sync.RWMutex
	items     map[booking.BookingID]booking.Booking
	byListing map[listings.ListingID][]booking.BookingID
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items:     make(map[booking.BookingID]booking.Booking),
		byListing: make(map[listings.ListingID][]booking.BookingID),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id booking.BookingID) (*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", booking.ErrBookingNotFound, id)
	}
	return &b, nil
}

// Save rejects stale writes the same way the Mongo repository does.
func (r *BookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, exists := r.items[b.ID]
	if exists && current.Version != b.Version {
		return ErrConcurrentUpdate
	}
	if !exists {
		r.byListing[b.ListingID] = append(r.byListing[b.ListingID], b.ID)
	}
	stored := *b
	stored.EventRecorder = eventsCleared()
	stored.Version = b.Version + 1
	r.items[b.ID] = stored
	b.Version = stored.Version
	return nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID listings.ListingID) ([]*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byListing[listingID]
	out := make([]*booking.Booking, 0, len(ids))
	for _, id := range ids {
		b := r.items[id]
		out = append(out, &b)
	}
	return out, nil
}

var (
	_ listings.Repository = (*ListingRepository)(nil)
	_ booking.Repository  = (*BookingRepository)(nil)
)
