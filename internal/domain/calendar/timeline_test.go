package calendar

import (
	"testing"

	"staybook/internal/domain/availability"
)

func TestBuildTimelineClipsBars(t *testing.T) {
	in := TimelineInput{
		From: day("2025-03-01"),
		Days: 7,
		Listings: []TimelineListing{
			{ID: "l-1", Title: "Loft", Bookings: []TimelineBooking{
				{ID: "b-early", CheckIn: day("2025-02-26"), CheckOut: day("2025-03-03"), Status: "confirmed"},
				{ID: "b-late", CheckIn: day("2025-03-06"), CheckOut: day("2025-03-10")},
				{ID: "b-out", CheckIn: day("2025-03-20"), CheckOut: day("2025-03-22")},
			}},
			{ID: "l-2", Title: "Cabin"},
		},
		Blocked: []availability.BlockedRange{
			{ID: "hol", Scope: availability.ScopeGlobal, Start: day("2025-03-04"), End: day("2025-03-04"), Reason: "holiday"},
			{ID: "own", ListingID: "l-2", Scope: availability.ScopeListing, Start: day("2025-03-01"), End: day("2025-03-02")},
		},
	}
	rows := BuildTimeline(in)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	loft := rows[0].Bars
	if len(loft) != 3 {
		t.Fatalf("loft bars = %+v", loft)
	}
	early := loft[0]
	if early.ID != "b-early" || !early.ClippedLeft || early.Offset != 0 || early.Span != 2 || early.End != day("2025-03-02") {
		t.Fatalf("unexpected early bar %+v", early)
	}
	if loft[1].ID != "hol" || loft[1].Kind != BarBlocked || loft[1].Offset != 3 || loft[1].Span != 1 {
		t.Fatalf("unexpected holiday bar %+v", loft[1])
	}
	late := loft[2]
	if late.ID != "b-late" || !late.ClippedRight || late.Offset != 5 || late.Span != 2 {
		t.Fatalf("unexpected late bar %+v", late)
	}

	cabin := rows[1].Bars
	if len(cabin) != 2 || cabin[0].ID != "own" || cabin[0].Span != 2 || cabin[1].ID != "hol" {
		t.Fatalf("unexpected cabin bars %+v", cabin)
	}
}

func TestBuildTimelineEmptyWindow(t *testing.T) {
	if BuildTimeline(TimelineInput{From: day("2025-03-01")}) != nil {
		t.Fatalf("zero-day window should be empty")
	}
}
