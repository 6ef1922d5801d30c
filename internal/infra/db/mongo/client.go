package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Client struct {
	DB *mongo.Database
}

func New(ctx context.Context, uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, readpref.Primary())
}

func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}

// EnsureIndexes creates the lookup indexes the repositories rely on.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	models := map[string][]mongo.IndexModel{
		bookingCollection: {
			{Keys: bsonKeys("listing_id", "range.check_in")},
		},
		blockedRangeCollection: {
			{Keys: bsonKeys("scope", "listing_id")},
		},
		priceRuleCollection: {
			{Keys: bsonKeys("listing_id", "seq")},
		},
	}
	for name, idx := range models {
		if _, err := c.DB.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}
