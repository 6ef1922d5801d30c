package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"staybook/internal/app/uow"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// BlockedRangesRepo and PriceRulesRepo may point at another store.
type Factory struct {
	DB *mongo.Database

	ListingsRepo      listings.Repository
	BookingsRepo      booking.Repository
	BlockedRangesRepo availability.BlockedRangeRepository
	PriceRulesRepo    pricing.RuleRepository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:                db,
		ListingsRepo:      NewListingRepository(db),
		BookingsRepo:      NewBookingRepository(db),
		BlockedRangesRepo: NewBlockedRangeRepository(db),
		PriceRulesRepo:    NewPriceRuleRepository(db),
	}
}

// Begin starts a session. Write units also open a snapshot transaction;
// read-only units read outside one.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	u := &Unit{
		session:       session,
		listings:      f.ListingsRepo,
		bookings:      f.BookingsRepo,
		blockedRanges: f.BlockedRangesRepo,
		priceRules:    f.PriceRulesRepo,
	}
	if opts.ReadOnly {
		return u, nil
	}
	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	u.inTxn = true
	return u, nil
}

type Unit struct {
	session mongo.Session
	inTxn   bool

	listings      listings.Repository
	bookings      booking.Repository
	blockedRanges availability.BlockedRangeRepository
	priceRules    pricing.RuleRepository
}

func (u *Unit) Listings() listings.Repository                      { return u.listings }
func (u *Unit) Bookings() booking.Repository                       { return u.bookings }
func (u *Unit) BlockedRanges() availability.BlockedRangeRepository { return u.blockedRanges }
func (u *Unit) PriceRules() pricing.RuleRepository                 { return u.priceRules }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if !u.inTxn {
		return nil
	}
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if !u.inTxn {
		return nil
	}
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
