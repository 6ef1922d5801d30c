package mongo

import (
	"testing"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func TestBookingDocumentKeepsCivilDates(t *testing.T) {
	day := calendardate.MustParse
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	b := &booking.Booking{
		ID:        "bk_1",
		ListingID: "l-1",
		GuestID:   "g-1",
		Range:     daterange.StayRange{CheckIn: day("2025-01-10"), CheckOut: day("2025-01-12")},
		Guests:    3,
		Quote: pricing.Quote{
			Nights: 2,
			Total:  money.Must(5000, "PHP"),
			Breakdown: []pricing.Night{
				{Date: day("2025-01-10"), Price: 2000},
				{Date: day("2025-01-11"), Price: 3000, Overridden: true},
			},
		},
		State:     booking.StatePending,
		CreatedAt: created,
		UpdatedAt: created,
		Version:   4,
	}
	doc := newBookingDocument(b)
	if doc.Range.CheckIn != "2025-01-10" || doc.Range.CheckOut != "2025-01-12" {
		t.Fatalf("dates should be stored as plain strings, got %+v", doc.Range)
	}
	got, err := doc.toAggregate()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Range != b.Range || got.Quote.Total != b.Quote.Total || !got.CreatedAt.Equal(created) {
		t.Fatalf("decoded booking differs: %+v", got)
	}
	if len(got.Quote.Breakdown) != 2 || !got.Quote.Breakdown[1].Overridden {
		t.Fatalf("breakdown lost: %+v", got.Quote.Breakdown)
	}
}

func TestCorruptStoredDateFails(t *testing.T) {
	doc := blockedRangeDocument{ID: "x", Start: "2025-13-40", End: "2025-01-01", Scope: "global"}
	if _, err := doc.toDomain(); err == nil {
		t.Fatalf("expected decode error")
	}
	d, err := parseStoredDate("start", "")
	if err != nil || d.Valid() {
		t.Fatalf("empty date is the zero date, got %v %v", d, err)
	}
}
