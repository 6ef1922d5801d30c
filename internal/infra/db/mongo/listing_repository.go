package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/domain/listings"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(listingCollection)}
}

func (r *ListingRepository) ByID(ctx context.Context, id listings.ListingID) (*listings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", listings.ErrListingNotFound, id)
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *listings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
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
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) List(ctx context.Context) ([]*listings.Listing, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []listingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*listings.Listing, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

// touchCalendar bumps a per-listing counter inside the current transaction.
// Two transactions booking the same listing both write this document, so
// Mongo aborts one of them with a write conflict instead of letting both
// commit overlapping stays.
func touchCalendar(ctx context.Context, db *mongo.Database, listingID listings.ListingID) error {
	_, err := db.Collection(listingCollection).UpdateOne(ctx,
		bson.M{"_id": string(listingID)},
		bson.M{"$inc": bson.M{"calendar_seq": 1}},
	)
	return err
}

type listingDocument struct {
	ID             string        `bson:"_id"`
	HostID         string        `bson:"host_id"`
	Title          string        `bson:"title"`
	BaseRate       moneyDocument `bson:"base_rate"`
	BaseGuests     int           `bson:"base_guests"`
	MaxExtraGuests int           `bson:"max_extra_guests"`
	ExtraGuestFee  moneyDocument `bson:"extra_guest_fee"`
	CheckInTime    string        `bson:"check_in_time"`
	CheckOutTime   string        `bson:"check_out_time"`
	Timezone       string        `bson:"timezone"`
	MinNights      int           `bson:"min_nights"`
	MaxNights      int           `bson:"max_nights"`
	CreatedAt      int64         `bson:"created_at"`
	UpdatedAt      int64         `bson:"updated_at"`
	Version        int64         `bson:"version"`
}

func newListingDocument(l *listings.Listing) listingDocument {
	return listingDocument{
		ID:             string(l.ID),
		HostID:         string(l.Host),
		Title:          l.Title,
		BaseRate:       newMoneyDocument(l.BaseRate),
		BaseGuests:     l.BaseGuests,
		MaxExtraGuests: l.MaxExtraGuests,
		ExtraGuestFee:  newMoneyDocument(l.ExtraGuestFeePerNight),
		CheckInTime:    l.CheckInTime,
		CheckOutTime:   l.CheckOutTime,
		Timezone:       l.Timezone,
		MinNights:      l.MinNights,
		MaxNights:      l.MaxNights,
		CreatedAt:      millis(l.CreatedAt),
		UpdatedAt:      millis(l.UpdatedAt),
		Version:        l.Version,
	}
}

func (d listingDocument) toAggregate() *listings.Listing {
	return &listings.Listing{
		ID:                    listings.ListingID(d.ID),
		Host:                  listings.HostID(d.HostID),
		Title:                 d.Title,
		BaseRate:              d.BaseRate.toMoney(),
		BaseGuests:            d.BaseGuests,
		MaxExtraGuests:        d.MaxExtraGuests,
		ExtraGuestFeePerNight: d.ExtraGuestFee.toMoney(),
		CheckInTime:           d.CheckInTime,
		CheckOutTime:          d.CheckOutTime,
		Timezone:              d.Timezone,
		MinNights:             d.MinNights,
		MaxNights:             d.MaxNights,
		CreatedAt:             timestampToTime(d.CreatedAt),
		UpdatedAt:             timestampToTime(d.UpdatedAt),
		Version:               d.Version,
	}
}
