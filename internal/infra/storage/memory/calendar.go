package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/pricing"
)

type BlockedRangeRepository struct {
	mu    sync.RWMutex
	items map[string]availability.BlockedRange
}

func NewBlockedRangeRepository() *BlockedRangeRepository {
	return &BlockedRangeRepository{items: make(map[string]availability.BlockedRange)}
}

func (r *BlockedRangeRepository) ForListing(ctx context.Context, listingID string) ([]availability.BlockedRange, error) {
	return r.filter(func(b availability.BlockedRange) bool {
		return b.Scope == availability.ScopeGlobal || b.ListingID == listingID
	}), nil
}

func (r *BlockedRangeRepository) Global(ctx context.Context) ([]availability.BlockedRange, error) {
	return r.filter(func(b availability.BlockedRange) bool {
		return b.Scope == availability.ScopeGlobal
	}), nil
}

func (r *BlockedRangeRepository) filter(keep func(availability.BlockedRange) bool) []availability.BlockedRange {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]availability.BlockedRange, 0)
	for _, b := range r.items {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *BlockedRangeRepository) ByID(ctx context.Context, id string) (availability.BlockedRange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return availability.BlockedRange{}, fmt.Errorf("%w: %s", availability.ErrBlockedRangeNotFound, id)
	}
	return b, nil
}

func (r *BlockedRangeRepository) Save(ctx context.Context, b availability.BlockedRange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID] = b
	return nil
}

func (r *BlockedRangeRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: %s", availability.ErrBlockedRangeNotFound, id)
	}
	delete(r.items, id)
	return nil
}

// PriceRuleRepository returns rules in creation order, which is the order
// ExpandRules uses to break timestamp ties.
type PriceRuleRepository struct {
	mu    sync.RWMutex
	seq   int64
	items map[string]storedRule
}

type storedRule struct {
	rule pricing.Rule
	seq  int64
}

func NewPriceRuleRepository() *PriceRuleRepository {
	return &PriceRuleRepository{items: make(map[string]storedRule)}
}

func (r *PriceRuleRepository) ForListing(ctx context.Context, listingID string) ([]pricing.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]storedRule, 0)
	for _, s := range r.items {
		if s.rule.ListingID == listingID {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	out := make([]pricing.Rule, len(matched))
	for i, s := range matched {
		out[i] = s.rule
	}
	return out, nil
}

func (r *PriceRuleRepository) ByID(ctx context.Context, id string) (pricing.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok {
		return pricing.Rule{}, fmt.Errorf("%w: %s", pricing.ErrRuleNotFound, id)
	}
	return s.rule, nil
}

func (r *PriceRuleRepository) Save(ctx context.Context, rule pricing.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[rule.ID]
	if !ok {
		r.seq++
		s.seq = r.seq
	}
	s.rule = rule
	r.items[rule.ID] = s
	return nil
}

func (r *PriceRuleRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: %s", pricing.ErrRuleNotFound, id)
	}
	delete(r.items, id)
	return nil
}

var (
	_ availability.BlockedRangeRepository = (*BlockedRangeRepository)(nil)
	_ pricing.RuleRepository              = (*PriceRuleRepository)(nil)
)
