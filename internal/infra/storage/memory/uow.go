package memory

import (
	"context"
	"errors"
	"sync"

	"staybook/internal/app/uow"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/events"
)

var (
	ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")
	ErrConcurrentUpdate     = errors.New("memory: concurrent update detected")
	ErrUnitClosed           = errors.New("memory: unit of work already finished")
)

// Factory hands out units over shared in-memory repositories. Write units
// are serialised by a single lock, which is what keeps two requests from
// booking the same night. Writes are applied immediately; rollback only
// releases the lock.
type Factory struct {
	ListingsRepo      listings.Repository
	BookingsRepo      booking.Repository
	BlockedRangesRepo availability.BlockedRangeRepository
	PriceRulesRepo    pricing.RuleRepository

	writeMu *sync.Mutex
}

// NewFactory wires fresh repositories. Blocked ranges and price rules may be
// swapped for another store by setting the fields afterwards.
func NewFactory() *Factory {
	return &Factory{
		ListingsRepo:      NewListingRepository(),
		BookingsRepo:      NewBookingRepository(),
		BlockedRangesRepo: NewBlockedRangeRepository(),
		PriceRulesRepo:    NewPriceRuleRepository(),
		writeMu:           &sync.Mutex{},
	}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.BookingsRepo == nil || f.BlockedRangesRepo == nil || f.PriceRulesRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	u := &Unit{factory: f}
	if !opts.ReadOnly {
		if f.writeMu == nil {
			return nil, ErrFactoryMisconfigured
		}
		f.writeMu.Lock()
		u.locked = true
	}
	return u, nil
}

type Unit struct {
	factory *Factory
	mu      sync.Mutex
	locked  bool
	done    bool
}

func (u *Unit) Listings() listings.Repository { return u.factory.ListingsRepo }
func (u *Unit) Bookings() booking.Repository  { return u.factory.BookingsRepo }
func (u *Unit) BlockedRanges() availability.BlockedRangeRepository {
	return u.factory.BlockedRangesRepo
}
func (u *Unit) PriceRules() pricing.RuleRepository { return u.factory.PriceRulesRepo }

func (u *Unit) Commit(ctx context.Context) error {
	return u.finish()
}

func (u *Unit) Rollback(ctx context.Context) error {
	return u.finish()
}

func (u *Unit) finish() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return ErrUnitClosed
	}
	u.done = true
	if u.locked {
		u.factory.writeMu.Unlock()
	}
	return nil
}

func eventsCleared() events.EventRecorder { return events.EventRecorder{} }

var _ uow.UoWFactory = (*Factory)(nil)
