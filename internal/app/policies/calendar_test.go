package policies

import (
	"testing"
	"time"

	"staybook/internal/domain/listings"
)

func TestCalendarUsesListingTimezone(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 11:00 UTC is 19:00 in Manila, past the 18:00 cutoff.
	now := time.Date(2025, 1, 10, 11, 0, 0, 0, time.UTC)
	p := Calendar{Clock: FixedClock(now), DefaultLocation: manila, CutoffHour: 18}

	l := &listings.Listing{ID: "l-1"}
	if got := p.MinAllowed(l).Format(); got != "2025-01-12" {
		t.Fatalf("min allowed = %s, want 2025-01-12", got)
	}

	l.Timezone = "UTC"
	if got := p.MinAllowed(l).Format(); got != "2025-01-11" {
		t.Fatalf("listing timezone should win, got %s", got)
	}
	if HostTimes(nil) != (HostTimes(l)) {
		t.Fatalf("empty listing times should match zero host times")
	}
}

func TestCalendarMidnightCutoff(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	p := Calendar{Clock: FixedClock(now), DefaultLocation: time.UTC, CutoffHour: 0}
	if got := p.MinAllowed(&listings.Listing{ID: "l-1"}).Format(); got != "2025-01-12" {
		t.Fatalf("cutoff 0 should always require two days, got %s", got)
	}
}
