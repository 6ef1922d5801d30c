package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/pricing"
)

type BlockedRangeRepository struct {
	col *mongo.Collection
}

func NewBlockedRangeRepository(db *mongo.Database) *BlockedRangeRepository {
	return &BlockedRangeRepository{col: db.Collection(blockedRangeCollection)}
}

func (r *BlockedRangeRepository) ForListing(ctx context.Context, listingID string) ([]availability.BlockedRange, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"scope": string(availability.ScopeGlobal)},
		bson.M{"listing_id": listingID},
	}}
	return r.find(ctx, filter)
}

func (r *BlockedRangeRepository) Global(ctx context.Context) ([]availability.BlockedRange, error) {
	return r.find(ctx, bson.M{"scope": string(availability.ScopeGlobal)})
}

func (r *BlockedRangeRepository) find(ctx context.Context, filter bson.M) ([]availability.BlockedRange, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []blockedRangeDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]availability.BlockedRange, 0, len(docs))
	for _, d := range docs {
		br, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, br)
	}
	return out, nil
}

func (r *BlockedRangeRepository) ByID(ctx context.Context, id string) (availability.BlockedRange, error) {
	var doc blockedRangeDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return availability.BlockedRange{}, fmt.Errorf("%w: %s", availability.ErrBlockedRangeNotFound, id)
		}
		return availability.BlockedRange{}, err
	}
	return doc.toDomain()
}

func (r *BlockedRangeRepository) Save(ctx context.Context, br availability.BlockedRange) error {
	doc := blockedRangeDocument{
		ID:        br.ID,
		ListingID: br.ListingID,
		Start:     dateString(br.Start),
		End:       dateString(br.End),
		Scope:     string(br.Scope),
		Reason:    br.Reason,
		CreatedAt: millis(br.CreatedAt),
	}
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *BlockedRangeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", availability.ErrBlockedRangeNotFound, id)
	}
	return nil
}

type blockedRangeDocument struct {
	ID        string `bson:"_id"`
	ListingID string `bson:"listing_id,omitempty"`
	Start     string `bson:"start"`
	End       string `bson:"end"`
	Scope     string `bson:"scope"`
	Reason    string `bson:"reason,omitempty"`
	CreatedAt int64  `bson:"created_at"`
}

func (d blockedRangeDocument) toDomain() (availability.BlockedRange, error) {
	start, err := parseStoredDate("start", d.Start)
	if err != nil {
		return availability.BlockedRange{}, err
	}
	end, err := parseStoredDate("end", d.End)
	if err != nil {
		return availability.BlockedRange{}, err
	}
	return availability.BlockedRange{
		ID:        d.ID,
		ListingID: d.ListingID,
		Start:     start,
		End:       end,
		Scope:     availability.Scope(d.Scope),
		Reason:    d.Reason,
		CreatedAt: timestampToTime(d.CreatedAt),
	}, nil
}

// PriceRuleRepository stamps each new rule with a sequence number so reads
// come back in creation order even when CreatedAt values collide.
type PriceRuleRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewPriceRuleRepository(db *mongo.Database) *PriceRuleRepository {
	return &PriceRuleRepository{col: db.Collection(priceRuleCollection), counters: db.Collection(counterCollection)}
}

func (r *PriceRuleRepository) ForListing(ctx context.Context, listingID string) ([]pricing.Rule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"listing_id": listingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []priceRuleDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]pricing.Rule, 0, len(docs))
	for _, d := range docs {
		rule, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

func (r *PriceRuleRepository) ByID(ctx context.Context, id string) (pricing.Rule, error) {
	var doc priceRuleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return pricing.Rule{}, fmt.Errorf("%w: %s", pricing.ErrRuleNotFound, id)
		}
		return pricing.Rule{}, err
	}
	return doc.toDomain()
}

func (r *PriceRuleRepository) Save(ctx context.Context, rule pricing.Rule) error {
	set := bson.M{
		"listing_id":    rule.ListingID,
		"start":         dateString(rule.Start),
		"end":           dateString(rule.End),
		"nightly_price": rule.NightlyPrice,
		"created_at":    millis(rule.CreatedAt),
	}
	seq, err := r.nextSeq(ctx)
	if err != nil {
		return err
	}
	update := bson.M{"$set": set, "$setOnInsert": bson.M{"seq": seq}}
	_, err = r.col.UpdateByID(ctx, rule.ID, update, options.Update().SetUpsert(true))
	return err
}

func (r *PriceRuleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", pricing.ErrRuleNotFound, id)
	}
	return nil
}

func (r *PriceRuleRepository) nextSeq(ctx context.Context) (int64, error) {
	var out struct {
		Value int64 `bson:"value"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx, bson.M{"_id": priceRuleCollection}, bson.M{"$inc": bson.M{"value": 1}}, opts).Decode(&out)
	return out.Value, err
}

type priceRuleDocument struct {
	ID           string `bson:"_id"`
	ListingID    string `bson:"listing_id"`
	Start        string `bson:"start"`
	End          string `bson:"end"`
	NightlyPrice int64  `bson:"nightly_price"`
	CreatedAt    int64  `bson:"created_at"`
	Seq          int64  `bson:"seq"`
}

func (d priceRuleDocument) toDomain() (pricing.Rule, error) {
	start, err := parseStoredDate("start", d.Start)
	if err != nil {
		return pricing.Rule{}, err
	}
	end, err := parseStoredDate("end", d.End)
	if err != nil {
		return pricing.Rule{}, err
	}
	return pricing.Rule{
		ID:           d.ID,
		ListingID:    d.ListingID,
		Start:        start,
		End:          end,
		NightlyPrice: d.NightlyPrice,
		CreatedAt:    timestampToTime(d.CreatedAt),
	}, nil
}

var (
	_ availability.BlockedRangeRepository = (*BlockedRangeRepository)(nil)
	_ pricing.RuleRepository              = (*PriceRuleRepository)(nil)
)
