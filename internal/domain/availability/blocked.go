package availability

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/shared/calendardate"
)

var (
	ErrBlockedRangeInvalid  = errors.New("availability: blocked range end must not precede start")
	ErrBlockedRangeScope    = errors.New("availability: unknown blocked range scope")
	ErrBlockedRangeListing  = errors.New("availability: listing scope requires a listing id")
	ErrBlockedRangeNotFound = errors.New("availability: blocked range not found")
)

type Scope string

const (
	ScopeListing Scope = "listing"
	ScopeGlobal  Scope = "global"
)

// BlockedRange is a host or admin closure, inclusive on both ends.
type BlockedRange struct {
	ID        string            `json:"id"`
	ListingID string            `json:"listing_id,omitempty"`
	Start     calendardate.Date `json:"start"`
	End       calendardate.Date `json:"end"`
	Scope     Scope             `json:"scope"`
	Reason    string            `json:"reason,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type BlockedRangeRepository interface {
	// ForListing returns the listing's own ranges plus every global range.
	ForListing(ctx context.Context, listingID string) ([]BlockedRange, error)
	Global(ctx context.Context) ([]BlockedRange, error)
	ByID(ctx context.Context, id string) (BlockedRange, error)
	Save(ctx context.Context, r BlockedRange) error
	Delete(ctx context.Context, id string) error
}

type NewBlockedRangeParams struct {
	ID        string
	ListingID string
	Start     calendardate.Date
	End       calendardate.Date
	Scope     Scope
	Reason    string
	Now       time.Time
}

func NewBlockedRange(p NewBlockedRangeParams) (BlockedRange, error) {
	scope := p.Scope
	if scope == "" {
		scope = ScopeListing
		if strings.TrimSpace(p.ListingID) == "" {
			scope = ScopeGlobal
		}
	}
	switch scope {
	case ScopeListing:
		if strings.TrimSpace(p.ListingID) == "" {
			return BlockedRange{}, ErrBlockedRangeListing
		}
	case ScopeGlobal:
		p.ListingID = ""
	default:
		return BlockedRange{}, ErrBlockedRangeScope
	}
	if !p.Start.Valid() || !p.End.Valid() || p.End.Before(p.Start) {
		return BlockedRange{}, ErrBlockedRangeInvalid
	}
	return BlockedRange{
		ID:        p.ID,
		ListingID: strings.TrimSpace(p.ListingID),
		Start:     p.Start,
		End:       p.End,
		Scope:     scope,
		Reason:    strings.TrimSpace(p.Reason),
		CreatedAt: p.Now.UTC(),
	}, nil
}

// Covers reports start <= d <= end.
func (b BlockedRange) Covers(d calendardate.Date) bool {
	return d.Valid() && d.Between(b.Start, b.End)
}

// AppliesTo reports whether the range constrains the given listing.
// Listing-scoped ranges without a listing id are treated as already filtered.
func (b BlockedRange) AppliesTo(listingID string) bool {
	switch b.Scope {
	case ScopeGlobal:
		return true
	case ScopeListing, "":
		return b.ListingID == "" || listingID == "" || b.ListingID == listingID
	default:
		return false
	}
}

// IsDayBlocked returns the first range blocking d for the listing.
func IsDayBlocked(d calendardate.Date, blocked []BlockedRange, listingID string) (BlockedRange, bool) {
	for _, b := range blocked {
		if b.AppliesTo(listingID) && b.Covers(d) {
			return b, true
		}
	}
	return BlockedRange{}, false
}
