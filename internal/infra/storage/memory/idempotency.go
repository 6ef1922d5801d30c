package memory

import (
	"context"
	"sync"
	"time"

	"staybook/internal/app/middleware"
)

// IdempotencyStore keeps command results for replay until they expire.
// Expired records are invisible to Get and are swept on every Save.
type IdempotencyStore struct {
	mu    sync.Mutex
	items map[string]middleware.IdempotencyRecord
	now   func() time.Time
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{items: make(map[string]middleware.IdempotencyRecord), now: time.Now}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	if !ok {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if expired(rec, s.now()) {
		delete(s.items, key)
		return middleware.IdempotencyRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, old := range s.items {
		if expired(old, now) {
			delete(s.items, k)
		}
	}
	s.items[rec.Key] = rec
	return nil
}

// Len counts live records.
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for _, rec := range s.items {
		if !expired(rec, now) {
			n++
		}
	}
	return n
}

func expired(rec middleware.IdempotencyRecord, now time.Time) bool {
	return !rec.ExpiresAt.IsZero() && !now.Before(rec.ExpiresAt)
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
