package listings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

var (
	ErrListingNotFound = errors.New("listings: not found")
	ErrTitleRequired   = errors.New("listings: title is required")
	ErrBaseGuests      = errors.New("listings: base guests must be at least 1")
	ErrNightsRange     = errors.New("listings: min nights must be <= max nights")
	ErrNightlyRate     = errors.New("listings: nightly rate must be non-negative")
	ErrExtraGuestFee   = errors.New("listings: extra guest fee must be non-negative")
	ErrTimezone        = errors.New("listings: unknown timezone")
)

// MaxStayNights caps any stay regardless of listing settings.
const MaxStayNights = 366

type ListingID string
type HostID string

// Listing holds the calendar-facing settings of a rental unit.
type Listing struct {
	ID                    ListingID
	Host                  HostID
	Title                 string
	BaseRate              money.Money
	BaseGuests            int
	MaxExtraGuests        int
	ExtraGuestFeePerNight money.Money
	CheckInTime           string
	CheckOutTime          string
	Timezone              string
	MinNights             int
	MaxNights             int
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Version               int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	List(ctx context.Context) ([]*Listing, error)
}

type CreateParams struct {
	ID                    ListingID
	Host                  HostID
	Title                 string
	BaseRate              int64
	Currency              string
	BaseGuests            int
	MaxExtraGuests        int
	ExtraGuestFeePerNight int64
	CheckInTime           string
	CheckOutTime          string
	Timezone              string
	MinNights             int
	MaxNights             int
	Now                   time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.BaseGuests < 1 {
		return nil, ErrBaseGuests
	}
	if params.BaseRate < 0 {
		return nil, ErrNightlyRate
	}
	if params.ExtraGuestFeePerNight < 0 {
		return nil, ErrExtraGuestFee
	}
	if params.MaxNights > 0 && params.MinNights > params.MaxNights {
		return nil, ErrNightsRange
	}
	if tz := strings.TrimSpace(params.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, ErrTimezone
		}
	}
	currency := params.Currency
	if strings.TrimSpace(currency) == "" {
		currency = money.DefaultCurrency
	}
	rate, err := money.New(params.BaseRate, currency)
	if err != nil {
		return nil, err
	}
	l := &Listing{
		ID:                    params.ID,
		Host:                  params.Host,
		Title:                 strings.TrimSpace(params.Title),
		BaseRate:              rate,
		BaseGuests:            params.BaseGuests,
		MaxExtraGuests:        params.MaxExtraGuests,
		ExtraGuestFeePerNight: money.Money{Amount: params.ExtraGuestFeePerNight, Currency: rate.Currency},
		CheckInTime:           strings.TrimSpace(params.CheckInTime),
		CheckOutTime:          strings.TrimSpace(params.CheckOutTime),
		Timezone:              strings.TrimSpace(params.Timezone),
		MinNights:             params.MinNights,
		MaxNights:             params.MaxNights,
		CreatedAt:             params.Now.UTC(),
		UpdatedAt:             params.Now.UTC(),
	}
	l.Record(ListingCreatedEvent{ListingID: l.ID, HostID: l.Host, At: l.CreatedAt})
	return l, nil
}

// locations caches resolved timezones by name; failed lookups are not cached.
var locations sync.Map

// Location resolves the listing timezone, falling back to def.
func (l *Listing) Location(def *time.Location) *time.Location {
	if l == nil || l.Timezone == "" {
		return def
	}
	if loc, ok := locations.Load(l.Timezone); ok {
		return loc.(*time.Location)
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return def
	}
	locations.Store(l.Timezone, loc)
	return loc
}

// StayLengthAllowed checks min/max nights; zero bounds are ignored.
func (l *Listing) StayLengthAllowed(nights int) bool {
	if l.MinNights > 0 && nights < l.MinNights {
		return false
	}
	return l.WithinMaxStay(nights)
}

// WithinMaxStay checks only the upper bounds, which read paths enforce too.
func (l *Listing) WithinMaxStay(nights int) bool {
	if nights > MaxStayNights {
		return false
	}
	return l.MaxNights <= 0 || nights <= l.MaxNights
}
