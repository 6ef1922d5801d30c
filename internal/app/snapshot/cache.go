package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"staybook/internal/app/outbox"
)

const DefaultRefreshInterval = 15 * time.Second

// Cache keeps per-listing snapshots for a refresh interval. Stale entries are
// refetched on read; domain events evict entries eagerly.
type Cache struct {
	source   Source
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]Snapshot
	// generations count invalidations per listing; epoch counts global
	// ones. A fetch only stores its result if neither moved meanwhile.
	generations map[string]uint64
	epoch       uint64
}

type CacheOption func(*Cache)

func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = logger }
}

func NewCache(source Source, interval time.Duration, opts ...CacheOption) *Cache {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	c := &Cache{
		source:      source,
		interval:    interval,
		logger:      slog.Default(),
		now:         time.Now,
		entries:     make(map[string]Snapshot),
		generations: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a fresh-enough snapshot for views. Fetch failures degrade to
// an unconstrained snapshot that is not cached.
func (c *Cache) Get(ctx context.Context, listingID string) Snapshot {
	now := c.now()
	c.mu.Lock()
	snap, ok := c.entries[listingID]
	gen, epoch := c.generations[listingID], c.epoch
	c.mu.Unlock()
	if ok && now.Sub(snap.FetchedAt) < c.interval {
		return snap
	}

	snap, err := Fetch(ctx, c.source, listingID, false, now)
	if err != nil {
		c.logger.WarnContext(ctx, "calendar snapshot degraded", "listing_id", listingID, "err", err)
		return snap
	}
	c.mu.Lock()
	if c.generations[listingID] == gen && c.epoch == epoch {
		c.entries[listingID] = snap
	}
	c.mu.Unlock()
	return snap
}

// Invalidate evicts one listing, or everything for an empty id. Fetches
// already in flight for the evicted listings are not cached.
func (c *Cache) Invalidate(listingID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if listingID == "" {
		clear(c.entries)
		c.epoch++
		return
	}
	delete(c.entries, listingID)
	c.generations[listingID]++
}

// HandleRecord evicts whatever calendar an outbox record touched.
func (c *Cache) HandleRecord(ctx context.Context, rec outbox.EventRecord) {
	c.Invalidate(rec.ListingID)
	c.logger.DebugContext(ctx, "calendar snapshot invalidated", "event", rec.Name, "listing_id", rec.ListingID)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
