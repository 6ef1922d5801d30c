package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/money"
)

const (
	listingCollection      = "agg_listing"
	bookingCollection      = "agg_booking"
	blockedRangeCollection = "cal_blocked_range"
	priceRuleCollection    = "cal_price_rule"
	counterCollection      = "app_counters"
)

func bsonKeys(fields ...string) bson.D {
	keys := make(bson.D, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	return keys
}

// Civil dates are stored as YYYY-MM-DD strings so they sort lexically and
// never pick up a timezone on the way through the driver.
func dateString(d calendardate.Date) string {
	if !d.Valid() {
		return ""
	}
	return d.Format()
}

func parseStoredDate(field, raw string) (calendardate.Date, error) {
	if raw == "" {
		return calendardate.Date{}, nil
	}
	d, err := calendardate.Parse(raw)
	if err != nil {
		return calendardate.Date{}, fmt.Errorf("mongo: decode %s: %w", field, err)
	}
	return d, nil
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func timestampToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
