package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

type BookingRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{db: db, col: db.Collection(bookingCollection)}
}

func (r *BookingRepository) ByID(ctx context.Context, id booking.BookingID) (*booking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", booking.ErrBookingNotFound, id)
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *BookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	if b.Version == 0 {
		if err := touchCalendar(ctx, r.db, b.ListingID); err != nil {
			return err
		}
	}
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID listings.ListingID) ([]*booking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"listing_id": string(listingID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*booking.Booking, 0, len(docs))
	for _, d := range docs {
		agg, err := d.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, nil
}

type bookingDocument struct {
	ID          string        `bson:"_id"`
	ListingID   string        `bson:"listing_id"`
	GuestID     string        `bson:"guest_id"`
	Range       rangeDocument `bson:"range"`
	Guests      int           `bson:"guests"`
	ExtraGuests int           `bson:"extra_guests"`
	Quote       quoteDocument `bson:"quote"`
	State       string        `bson:"state"`
	CreatedAt   int64         `bson:"created_at"`
	UpdatedAt   int64         `bson:"updated_at"`
	Version     int64         `bson:"version"`
}

type rangeDocument struct {
	CheckIn  string `bson:"check_in"`
	CheckOut string `bson:"check_out"`
}

type quoteDocument struct {
	Nights      int             `bson:"nights"`
	Subtotal    moneyDocument   `bson:"subtotal"`
	ExtraGuests int             `bson:"extra_guests"`
	ExtraFees   moneyDocument   `bson:"extra_fees"`
	Total       moneyDocument   `bson:"total"`
	Breakdown   []nightDocument `bson:"breakdown,omitempty"`
}

type nightDocument struct {
	Date       string `bson:"date"`
	Price      int64  `bson:"price"`
	Overridden bool   `bson:"overridden,omitempty"`
}

func newBookingDocument(b *booking.Booking) bookingDocument {
	q := quoteDocument{
		Nights:      b.Quote.Nights,
		Subtotal:    newMoneyDocument(b.Quote.Subtotal),
		ExtraGuests: b.Quote.ExtraGuests,
		ExtraFees:   newMoneyDocument(b.Quote.ExtraFees),
		Total:       newMoneyDocument(b.Quote.Total),
	}
	for _, n := range b.Quote.Breakdown {
		q.Breakdown = append(q.Breakdown, nightDocument{Date: dateString(n.Date), Price: n.Price, Overridden: n.Overridden})
	}
	return bookingDocument{
		ID:          string(b.ID),
		ListingID:   string(b.ListingID),
		GuestID:     b.GuestID,
		Range:       rangeDocument{CheckIn: dateString(b.Range.CheckIn), CheckOut: dateString(b.Range.CheckOut)},
		Guests:      b.Guests,
		ExtraGuests: b.ExtraGuests,
		Quote:       q,
		State:       string(b.State),
		CreatedAt:   millis(b.CreatedAt),
		UpdatedAt:   millis(b.UpdatedAt),
		Version:     b.Version,
	}
}

func (d bookingDocument) toAggregate() (*booking.Booking, error) {
	checkIn, err := parseStoredDate("range.check_in", d.Range.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := parseStoredDate("range.check_out", d.Range.CheckOut)
	if err != nil {
		return nil, err
	}
	q := pricing.Quote{
		Nights:      d.Quote.Nights,
		Subtotal:    d.Quote.Subtotal.toMoney(),
		ExtraGuests: d.Quote.ExtraGuests,
		ExtraFees:   d.Quote.ExtraFees.toMoney(),
		Total:       d.Quote.Total.toMoney(),
	}
	for _, n := range d.Quote.Breakdown {
		date, err := parseStoredDate("quote.breakdown.date", n.Date)
		if err != nil {
			return nil, err
		}
		q.Breakdown = append(q.Breakdown, pricing.Night{Date: date, Price: n.Price, Overridden: n.Overridden})
	}
	return &booking.Booking{
		ID:          booking.BookingID(d.ID),
		ListingID:   listings.ListingID(d.ListingID),
		GuestID:     d.GuestID,
		Range:       daterange.StayRange{CheckIn: checkIn, CheckOut: checkOut},
		Guests:      d.Guests,
		ExtraGuests: d.ExtraGuests,
		Quote:       q,
		State:       booking.State(d.State),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}, nil
}
