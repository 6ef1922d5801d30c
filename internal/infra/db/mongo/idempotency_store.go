package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/middleware"
)

const idempotencyCollection = "app_idempotency"

// IdempotencyStore keeps command results until their expires_at passes. Mongo's
// TTL monitor removes expired documents; Get also hides any it has not
// reached yet.
type IdempotencyStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewIdempotencyStore(ctx context.Context, db *mongo.Database) (*IdempotencyStore, error) {
	col := db.Collection(idempotencyCollection)
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, err
	}
	return &IdempotencyStore{col: col, now: time.Now}, nil
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var doc idempotencyDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return middleware.IdempotencyRecord{}, false, nil
		}
		return middleware.IdempotencyRecord{}, false, err
	}
	if !doc.ExpiresAt.IsZero() && !s.now().Before(doc.ExpiresAt) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	return doc.toRecord(), true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	doc := idempotencyDocument{
		Key:        rec.Key,
		Command:    rec.Command,
		Payload:    rec.Payload,
		OccurredAt: rec.OccurredAt.UTC(),
		ExpiresAt:  rec.ExpiresAt.UTC(),
	}
	_, err := s.col.UpdateByID(ctx, rec.Key, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

type idempotencyDocument struct {
	Key        string    `bson:"_id"`
	Command    string    `bson:"command"`
	Payload    []byte    `bson:"payload"`
	OccurredAt time.Time `bson:"occurred_at"`
	ExpiresAt  time.Time `bson:"expires_at"`
}

func (d idempotencyDocument) toRecord() middleware.IdempotencyRecord {
	return middleware.IdempotencyRecord{
		Key:        d.Key,
		Command:    d.Command,
		Payload:    d.Payload,
		OccurredAt: d.OccurredAt,
		ExpiresAt:  d.ExpiresAt,
	}
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
