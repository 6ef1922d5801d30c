package pricing

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/shared/calendardate"
)

var (
	ErrRuleRange    = errors.New("pricing: rule end must not precede start")
	ErrRulePrice    = errors.New("pricing: nightly price must be positive")
	ErrRuleListing  = errors.New("pricing: rule requires a listing id")
	ErrRuleNotFound = errors.New("pricing: rule not found")
	ErrRuleTooLong  = errors.New("pricing: rule spans too many days")
)

// MaxRuleDays bounds the inclusive span of a single rule.
const MaxRuleDays = 730

// Rule is a host-defined nightly rate for an inclusive date span.
type Rule struct {
	ID           string            `json:"id"`
	ListingID    string            `json:"listing_id"`
	Start        calendardate.Date `json:"start"`
	End          calendardate.Date `json:"end"`
	NightlyPrice int64             `json:"nightly_price"`
	CreatedAt    time.Time         `json:"created_at"`
}

type RuleRepository interface {
	ForListing(ctx context.Context, listingID string) ([]Rule, error)
	ByID(ctx context.Context, id string) (Rule, error)
	Save(ctx context.Context, rule Rule) error
	Delete(ctx context.Context, id string) error
}

type NewRuleParams struct {
	ID           string
	ListingID    string
	Start        calendardate.Date
	End          calendardate.Date
	NightlyPrice int64
	Now          time.Time
}

func NewRule(p NewRuleParams) (Rule, error) {
	if strings.TrimSpace(p.ListingID) == "" {
		return Rule{}, ErrRuleListing
	}
	if !p.Start.Valid() || !p.End.Valid() || p.End.Before(p.Start) {
		return Rule{}, ErrRuleRange
	}
	if p.Start.DaysUntil(p.End)+1 > MaxRuleDays {
		return Rule{}, ErrRuleTooLong
	}
	if p.NightlyPrice <= 0 {
		return Rule{}, ErrRulePrice
	}
	return Rule{
		ID:           p.ID,
		ListingID:    strings.TrimSpace(p.ListingID),
		Start:        p.Start,
		End:          p.End,
		NightlyPrice: p.NightlyPrice,
		CreatedAt:    p.Now.UTC(),
	}, nil
}

// Overrides maps a night to its nightly price.
type Overrides map[calendardate.Date]int64

// ExpandRules flattens rules into per-night overrides for the inclusive
// window [from, to]. When rules overlap the most recently created one wins;
// equal timestamps go to the later rule in the slice. Malformed rules are
// skipped, and an invalid window yields no overrides.
func ExpandRules(rules []Rule, from, to calendardate.Date) Overrides {
	out := make(Overrides)
	if !from.Valid() || !to.Valid() || to.Before(from) {
		return out
	}
	winner := make(map[calendardate.Date]time.Time)
	for _, r := range rules {
		if !r.Start.Valid() || !r.End.Valid() || r.End.Before(r.Start) || r.NightlyPrice <= 0 {
			continue
		}
		start, end := r.Start, r.End
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		for d := start; !d.After(end); d = d.AddDays(1) {
			if at, seen := winner[d]; seen && r.CreatedAt.Before(at) {
				continue
			}
			winner[d] = r.CreatedAt
			out[d] = r.NightlyPrice
		}
	}
	return out
}
