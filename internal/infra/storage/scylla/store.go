package scylla

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gocql/gocql"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/calendardate"
)

// globalScopeKey is the partition holding ranges that block every listing.
const globalScopeKey = "__global__"

var errNoSession = errors.New("scylla session not initialized")

// CalendarStore keeps host blocked ranges and price rules in Scylla. Each
// table is partitioned by listing so a calendar read touches one partition
// (plus the global one for blocks). The *_by_id tables resolve deletes.
type CalendarStore struct {
	session *gocql.Session
	logger  *slog.Logger
}

func NewCalendarStore(session *gocql.Session, logger *slog.Logger) *CalendarStore {
	return &CalendarStore{session: session, logger: logger}
}

// BlockedRanges and PriceRules expose the store through the repository
// interfaces, which both name their lookups ByID, Save and Delete.
func (s *CalendarStore) BlockedRanges() availability.BlockedRangeRepository {
	return blockedRanges{s}
}

func (s *CalendarStore) PriceRules() pricing.RuleRepository {
	return priceRules{s}
}

func (s *CalendarStore) Ping(ctx context.Context) error {
	if s.session == nil {
		return errNoSession
	}
	return s.session.Query(`SELECT now() FROM system.local`).WithContext(ctx).Exec()
}

type blockedRanges struct{ s *CalendarStore }

func scopeKey(br availability.BlockedRange) string {
	if br.Scope == availability.ScopeGlobal {
		return globalScopeKey
	}
	return br.ListingID
}

func (r blockedRanges) ForListing(ctx context.Context, listingID string) ([]availability.BlockedRange, error) {
	global, err := r.partition(ctx, globalScopeKey)
	if err != nil {
		return nil, err
	}
	own, err := r.partition(ctx, listingID)
	if err != nil {
		return nil, err
	}
	out := append(global, own...)
	sortRanges(out)
	return out, nil
}

func (r blockedRanges) Global(ctx context.Context) ([]availability.BlockedRange, error) {
	out, err := r.partition(ctx, globalScopeKey)
	if err != nil {
		return nil, err
	}
	sortRanges(out)
	return out, nil
}

func (r blockedRanges) partition(ctx context.Context, key string) ([]availability.BlockedRange, error) {
	if r.s.session == nil {
		return nil, errNoSession
	}
	iter := r.s.session.
		Query(`SELECT id, listing_id, scope, start_date, end_date, reason, created_at FROM blocked_ranges WHERE scope_key = ?`, key).
		WithContext(ctx).
		Iter()
	var (
		out                      []availability.BlockedRange
		id, listingID, scope     string
		startRaw, endRaw, reason string
		createdAt                time.Time
	)
	for iter.Scan(&id, &listingID, &scope, &startRaw, &endRaw, &reason, &createdAt) {
		start, end, err := parseSpan(startRaw, endRaw)
		if err != nil {
			r.s.warn("skipping unreadable blocked range", "id", id, "error", err)
			continue
		}
		out = append(out, availability.BlockedRange{
			ID:        id,
			ListingID: listingID,
			Scope:     availability.Scope(scope),
			Start:     start,
			End:       end,
			Reason:    reason,
			CreatedAt: createdAt.UTC(),
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r blockedRanges) ByID(ctx context.Context, id string) (availability.BlockedRange, error) {
	key, err := r.lookup(ctx, id)
	if err != nil {
		return availability.BlockedRange{}, err
	}
	all, err := r.partition(ctx, key)
	if err != nil {
		return availability.BlockedRange{}, err
	}
	for _, br := range all {
		if br.ID == id {
			return br, nil
		}
	}
	return availability.BlockedRange{}, fmt.Errorf("%w: %s", availability.ErrBlockedRangeNotFound, id)
}

func (r blockedRanges) Save(ctx context.Context, br availability.BlockedRange) error {
	if r.s.session == nil {
		return errNoSession
	}
	key := scopeKey(br)
	batch := r.s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO blocked_ranges (scope_key, id, listing_id, scope, start_date, end_date, reason, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key, br.ID, br.ListingID, string(br.Scope), br.Start.Format(), br.End.Format(), br.Reason, br.CreatedAt.UTC())
	batch.Query(`INSERT INTO blocked_ranges_by_id (id, scope_key) VALUES (?, ?)`, br.ID, key)
	return r.s.session.ExecuteBatch(batch)
}

func (r blockedRanges) Delete(ctx context.Context, id string) error {
	key, err := r.lookup(ctx, id)
	if err != nil {
		return err
	}
	batch := r.s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM blocked_ranges WHERE scope_key = ? AND id = ?`, key, id)
	batch.Query(`DELETE FROM blocked_ranges_by_id WHERE id = ?`, id)
	return r.s.session.ExecuteBatch(batch)
}

func (r blockedRanges) lookup(ctx context.Context, id string) (string, error) {
	if r.s.session == nil {
		return "", errNoSession
	}
	var key string
	err := r.s.session.Query(`SELECT scope_key FROM blocked_ranges_by_id WHERE id = ?`, id).WithContext(ctx).Scan(&key)
	if errors.Is(err, gocql.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", availability.ErrBlockedRangeNotFound, id)
	}
	return key, err
}

type priceRules struct{ s *CalendarStore }

// ForListing reads the partition in seq order, which is creation order.
func (r priceRules) ForListing(ctx context.Context, listingID string) ([]pricing.Rule, error) {
	if r.s.session == nil {
		return nil, errNoSession
	}
	iter := r.s.session.
		Query(`SELECT id, start_date, end_date, nightly_price, created_at FROM price_rules WHERE listing_id = ?`, listingID).
		WithContext(ctx).
		Iter()
	var (
		out              []pricing.Rule
		id               string
		startRaw, endRaw string
		price            int64
		createdAt        time.Time
	)
	for iter.Scan(&id, &startRaw, &endRaw, &price, &createdAt) {
		start, end, err := parseSpan(startRaw, endRaw)
		if err != nil {
			r.s.warn("skipping unreadable price rule", "id", id, "error", err)
			continue
		}
		out = append(out, pricing.Rule{
			ID:           id,
			ListingID:    listingID,
			Start:        start,
			End:          end,
			NightlyPrice: price,
			CreatedAt:    createdAt.UTC(),
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r priceRules) ByID(ctx context.Context, id string) (pricing.Rule, error) {
	listingID, _, err := r.lookup(ctx, id)
	if err != nil {
		return pricing.Rule{}, err
	}
	rules, err := r.ForListing(ctx, listingID)
	if err != nil {
		return pricing.Rule{}, err
	}
	for _, rule := range rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return pricing.Rule{}, fmt.Errorf("%w: %s", pricing.ErrRuleNotFound, id)
}

// Save keeps the original seq of an existing rule so edits do not reorder it.
func (r priceRules) Save(ctx context.Context, rule pricing.Rule) error {
	_, seq, err := r.lookup(ctx, rule.ID)
	switch {
	case errors.Is(err, pricing.ErrRuleNotFound):
		seq = gocql.UUIDFromTime(rule.CreatedAt)
	case err != nil:
		return err
	}
	batch := r.s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO price_rules (listing_id, seq, id, start_date, end_date, nightly_price, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rule.ListingID, seq, rule.ID, rule.Start.Format(), rule.End.Format(), rule.NightlyPrice, rule.CreatedAt.UTC())
	batch.Query(`INSERT INTO price_rules_by_id (id, listing_id, seq) VALUES (?, ?, ?)`, rule.ID, rule.ListingID, seq)
	return r.s.session.ExecuteBatch(batch)
}

func (r priceRules) Delete(ctx context.Context, id string) error {
	listingID, seq, err := r.lookup(ctx, id)
	if err != nil {
		return err
	}
	batch := r.s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM price_rules WHERE listing_id = ? AND seq = ?`, listingID, seq)
	batch.Query(`DELETE FROM price_rules_by_id WHERE id = ?`, id)
	return r.s.session.ExecuteBatch(batch)
}

func (r priceRules) lookup(ctx context.Context, id string) (string, gocql.UUID, error) {
	if r.s.session == nil {
		return "", gocql.UUID{}, errNoSession
	}
	var (
		listingID string
		seq       gocql.UUID
	)
	err := r.s.session.Query(`SELECT listing_id, seq FROM price_rules_by_id WHERE id = ?`, id).WithContext(ctx).Scan(&listingID, &seq)
	if errors.Is(err, gocql.ErrNotFound) {
		return "", gocql.UUID{}, fmt.Errorf("%w: %s", pricing.ErrRuleNotFound, id)
	}
	return listingID, seq, err
}

func parseSpan(startRaw, endRaw string) (calendardate.Date, calendardate.Date, error) {
	start, err := calendardate.Parse(startRaw)
	if err != nil {
		return calendardate.Date{}, calendardate.Date{}, err
	}
	end, err := calendardate.Parse(endRaw)
	if err != nil {
		return calendardate.Date{}, calendardate.Date{}, err
	}
	return start, end, nil
}

func sortRanges(out []availability.BlockedRange) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
}

func (s *CalendarStore) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
