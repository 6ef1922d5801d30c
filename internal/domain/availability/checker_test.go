package availability

import (
	"errors"
	"testing"
	"time"

	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/daterange"
)

var day = calendardate.MustParse

func stay(t *testing.T, in, out string) daterange.StayRange {
	t.Helper()
	return daterange.StayRange{CheckIn: day(in), CheckOut: day(out)}
}

func TestCheckoutBoundaryTurnover(t *testing.T) {
	existing := []ExistingBooking{{ID: "b-1", CheckIn: day("2025-01-10"), CheckOut: day("2025-01-13")}}
	base := Request{
		Range:      stay(t, "2025-01-13", "2025-01-15"),
		Existing:   existing,
		MinAllowed: day("2025-01-01"),
	}

	base.Host = HostTimes{CheckIn: "14:00", CheckOut: "12:00"}
	if d := IsBookable(base); !d.OK {
		t.Fatalf("check-in at 14:00 after 12:00 checkout should be bookable, got %+v", d)
	}

	base.Host = HostTimes{CheckIn: "10:00", CheckOut: "12:00"}
	d := IsBookable(base)
	if d.OK || d.Reason != ReasonBooked {
		t.Fatalf("check-in at 10:00 before 12:00 checkout must be rejected, got %+v", d)
	}
	if d.BookingID != "b-1" || d.Date != day("2025-01-13") {
		t.Fatalf("decision should point at the conflicting booking day, got %+v", d)
	}
	if !errors.Is(d.Err(), ErrBooked) {
		t.Fatalf("Err() = %v, want ErrBooked", d.Err())
	}
}

func TestTurnoverFailsClosedOnBadTimes(t *testing.T) {
	cases := []HostTimes{
		{CheckIn: "", CheckOut: "12:00"},
		{CheckIn: "2pm", CheckOut: "12:00"},
		{CheckIn: "14:00", CheckOut: "25:00"},
		{CheckIn: "14:00:00", CheckOut: "12"},
	}
	for _, host := range cases {
		if host.AllowsSameDayTurnover() {
			t.Fatalf("%+v should not allow turnover", host)
		}
	}
	if !(HostTimes{CheckIn: "14:00:00", CheckOut: "12:00"}).AllowsSameDayTurnover() {
		t.Fatalf("seconds precision should parse")
	}
	if !(HostTimes{CheckIn: "12:00", CheckOut: "12:00"}).AllowsSameDayTurnover() {
		t.Fatalf("equal times allow turnover")
	}
}

func TestTurnoverAntiSymmetry(t *testing.T) {
	existing := []ExistingBooking{{ID: "b", CheckIn: day("2025-03-01"), CheckOut: day("2025-03-05")}}
	for inHour := 0; inHour < 24; inHour++ {
		for _, out := range []string{"09:00", "11:30", "12:00", "15:00"} {
			host := HostTimes{CheckIn: clock(inHour), CheckOut: out}
			d := IsBookable(Request{
				Range:      stay(t, "2025-03-05", "2025-03-06"),
				Existing:   existing,
				MinAllowed: day("2025-02-01"),
				Host:       host,
			})
			outSecs, _ := parseClock(out)
			want := inHour*3600 >= outSecs
			if d.OK != want {
				t.Fatalf("host %+v: ok = %v, want %v", host, d.OK, want)
			}
		}
	}
}

func clock(h int) string {
	return time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("15:04")
}

func TestLeadTimeRejectsToday(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	policy := LeadTime{CutoffHour: 18, Location: time.UTC}
	minDate := policy.MinAllowedDate(now)
	if minDate != day("2025-01-11") {
		t.Fatalf("min allowed = %s, want 2025-01-11", minDate)
	}
	d := IsBookable(Request{Range: stay(t, "2025-01-10", "2025-01-12"), MinAllowed: minDate})
	if d.OK || d.Reason != ReasonTooSoon || !errors.Is(d.Err(), ErrTooSoon) {
		t.Fatalf("expected too soon, got %+v", d)
	}
	if d.MinAllowed != minDate {
		t.Fatalf("decision should carry min allowed date")
	}
}

func TestLeadTimeCutoffHour(t *testing.T) {
	manila := time.FixedZone("Asia/Manila", 8*60*60)
	policy := LeadTime{CutoffHour: 18, Location: manila}
	// 10:30 UTC is 18:30 in Manila.
	now := time.Date(2025, 1, 10, 10, 30, 0, 0, time.UTC)
	if got := policy.MinAllowedDate(now); got != day("2025-01-12") {
		t.Fatalf("after cutoff min allowed = %s, want 2025-01-12", got)
	}
	now = time.Date(2025, 1, 10, 9, 59, 0, 0, time.UTC)
	if got := policy.MinAllowedDate(now); got != day("2025-01-11") {
		t.Fatalf("before cutoff min allowed = %s, want 2025-01-11", got)
	}
	if (LeadTime{CutoffHour: -1}).DaysAhead(time.Date(2025, 1, 1, 17, 0, 0, 0, time.UTC)) != 1 {
		t.Fatalf("out of range cutoff should fall back to 18:00")
	}
	if (LeadTime{CutoffHour: 24}).DaysAhead(time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)) != 2 {
		t.Fatalf("out of range cutoff should fall back to 18:00")
	}
}

func TestLeadTimeMidnightCutoff(t *testing.T) {
	policy := LeadTime{CutoffHour: 0, Location: time.UTC}
	for _, hour := range []int{0, 9, 23} {
		now := time.Date(2025, 1, 10, hour, 0, 0, 0, time.UTC)
		if got := policy.DaysAhead(now); got != 2 {
			t.Fatalf("%02d:00 days ahead = %d, want 2", hour, got)
		}
		if got := policy.MinAllowedDate(now); got != day("2025-01-12") {
			t.Fatalf("%02d:00 min allowed = %s, want 2025-01-12", hour, got)
		}
	}
}

func TestInvalidRanges(t *testing.T) {
	minDate := day("2025-01-01")
	cases := []daterange.StayRange{
		{},
		{CheckIn: day("2025-01-10")},
		{CheckIn: day("2025-01-10"), CheckOut: day("2025-01-10")},
		{CheckIn: day("2025-01-12"), CheckOut: day("2025-01-10")},
	}
	for _, r := range cases {
		d := IsBookable(Request{Range: r, MinAllowed: minDate})
		if d.OK || d.Reason != ReasonInvalidRange {
			t.Fatalf("range %s: expected invalid_range, got %+v", r, d)
		}
	}
}

func TestBlockedDates(t *testing.T) {
	blocked := []BlockedRange{
		{ID: "other", ListingID: "l-2", Scope: ScopeListing, Start: day("2025-02-01"), End: day("2025-02-28")},
		{ID: "maint", ListingID: "l-1", Scope: ScopeListing, Start: day("2025-02-10"), End: day("2025-02-10")},
		{ID: "holiday", Scope: ScopeGlobal, Start: day("2025-02-20"), End: day("2025-02-21")},
	}
	req := Request{ListingID: "l-1", Blocked: blocked, MinAllowed: day("2025-01-01")}

	req.Range = stay(t, "2025-02-05", "2025-02-10")
	if d := IsBookable(req); !d.OK {
		t.Fatalf("checkout on a blocked day is allowed, got %+v", d)
	}

	req.Range = stay(t, "2025-02-09", "2025-02-11")
	d := IsBookable(req)
	if d.OK || d.Reason != ReasonBlocked || d.BlockedRangeID != "maint" {
		t.Fatalf("expected listing block, got %+v", d)
	}

	req.Range = stay(t, "2025-02-21", "2025-02-23")
	d = IsBookable(req)
	if d.Reason != ReasonBlocked || d.BlockedRangeID != "holiday" || !errors.Is(d.Err(), ErrBlocked) {
		t.Fatalf("expected global block, got %+v", d)
	}

	req.Range = stay(t, "2025-02-12", "2025-02-19")
	if d := IsBookable(req); !d.OK {
		t.Fatalf("another listing's block must not apply, got %+v", d)
	}
}

func TestOverlapChecksBeforeBlocked(t *testing.T) {
	req := Request{
		ListingID:  "l-1",
		Range:      stay(t, "2025-04-01", "2025-04-05"),
		Existing:   []ExistingBooking{{ID: "b", CheckIn: day("2025-04-03"), CheckOut: day("2025-04-04")}},
		Blocked:    []BlockedRange{{ID: "x", Scope: ScopeGlobal, Start: day("2025-04-01"), End: day("2025-04-01")}},
		MinAllowed: day("2025-03-01"),
		Host:       HostTimes{CheckIn: "15:00", CheckOut: "11:00"},
	}
	if d := IsBookable(req); d.Reason != ReasonBooked {
		t.Fatalf("booking overlap is reported first, got %+v", d)
	}
}

func TestNewBlockedRangeValidation(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewBlockedRange(NewBlockedRangeParams{ListingID: "l", Start: day("2025-01-05"), End: day("2025-01-04"), Now: now}); !errors.Is(err, ErrBlockedRangeInvalid) {
		t.Fatalf("expected invalid range error, got %v", err)
	}
	if _, err := NewBlockedRange(NewBlockedRangeParams{Scope: ScopeListing, Start: day("2025-01-05"), End: day("2025-01-05"), Now: now}); !errors.Is(err, ErrBlockedRangeListing) {
		t.Fatalf("expected listing id error, got %v", err)
	}
	r, err := NewBlockedRange(NewBlockedRangeParams{ID: "g", Start: day("2025-01-05"), End: day("2025-01-05"), Now: now})
	if err != nil || r.Scope != ScopeGlobal {
		t.Fatalf("empty listing id should default to global scope, got %+v %v", r, err)
	}
}
