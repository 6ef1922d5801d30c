package calendardate

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParsePlainDates(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		valid bool
	}{
		{"2025-01-10", "2025-01-10", true},
		{" 2024-02-29 ", "2024-02-29", true},
		{"2025-02-29", "", false},
		{"2025-13-01", "", false},
		{"2025-1-10", "", false},
		{"2025-01", "", false},
		{"abcd-ef-gh", "", false},
		{"", "", false},
		{"2025-01-1x", "", false},
		{"2025-+1-10", "", false},
		{"+025-01-10", "", false},
		{"2025-01--1", "", false},
		{"0000-01-01", "", false},
		{"2025-01-10T00:00:00Z", "2025-01-10", true},
		{"0000-01-01T00:00:00Z", "", false},
		{"0001-01-01T00:00:00+01:00", "", false},
	}
	for _, tc := range cases {
		d, err := ParseIn(tc.in, time.UTC)
		if tc.valid {
			if err != nil {
				t.Fatalf("ParseIn(%q) unexpected error: %v", tc.in, err)
			}
			if got := d.Format(); got != tc.want {
				t.Fatalf("ParseIn(%q) = %s, want %s", tc.in, got, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseIn(%q) expected ErrInvalidDate, got %v", tc.in, err)
		}
		if d.Valid() {
			t.Fatalf("ParseIn(%q) returned valid date %s on error", tc.in, d)
		}
	}
}

func TestParseTimestampTruncatesInLocation(t *testing.T) {
	manila := time.FixedZone("Asia/Manila", 8*60*60)
	d, err := ParseIn("2025-01-10T20:30:00Z", manila)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Format() != "2025-01-11" {
		t.Fatalf("expected Manila civil date 2025-01-11, got %s", d)
	}

	d, err = ParseIn("2025-01-10T20:30:00Z", time.UTC)
	if err != nil || d.Format() != "2025-01-10" {
		t.Fatalf("expected UTC civil date 2025-01-10, got %s (%v)", d, err)
	}

	d, err = ParseIn("2025-03-05T23:59", manila)
	if err != nil || d.Format() != "2025-03-05" {
		t.Fatalf("zone-less timestamp should stay on its own day, got %s (%v)", d, err)
	}
}

func TestAddDaysAndDistance(t *testing.T) {
	start := Must(2024, time.February, 27)
	if got := start.AddDays(3).Format(); got != "2024-03-01" {
		t.Fatalf("AddDays across leap day = %s", got)
	}
	if got := start.AddDays(-58).Format(); got != "2023-12-31" {
		t.Fatalf("AddDays backwards = %s", got)
	}
	if start.Format() != "2024-02-27" {
		t.Fatalf("AddDays mutated receiver: %s", start)
	}
	end := MustParse("2025-01-13")
	if n := MustParse("2025-01-10").DaysUntil(end); n != 3 {
		t.Fatalf("DaysUntil = %d, want 3", n)
	}
	if n := end.DaysUntil(MustParse("2025-01-10")); n != -3 {
		t.Fatalf("DaysUntil reversed = %d, want -3", n)
	}
	if (Date{}).AddDays(1).Valid() {
		t.Fatalf("invalid date must stay invalid")
	}
}

func TestOrdering(t *testing.T) {
	a := MustParse("2025-01-10")
	b := MustParse("2025-02-01")
	if !a.Before(b) || b.Before(a) || !b.After(a) {
		t.Fatalf("ordering broken for %s / %s", a, b)
	}
	if a.Compare(MustParse("2025-01-10")) != 0 || a != MustParse("2025-01-10") {
		t.Fatalf("equal dates must compare equal")
	}
	if !MustParse("2025-01-15").Between(a, b) || MustParse("2025-02-02").Between(a, b) {
		t.Fatalf("Between is inclusive on both ends only")
	}
}

func TestJSONRoundTripUsesKeyFormat(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}
	raw, err := json.Marshal(payload{Date: Must(2025, time.January, 5)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"date":"2025-01-05"}` {
		t.Fatalf("unexpected json %s", raw)
	}
	var out payload
	if err := json.Unmarshal([]byte(`{"date":"2025-01-32"}`), &out); err == nil {
		t.Fatalf("expected error for impossible date")
	}
}

func TestDaysIn(t *testing.T) {
	if DaysIn(2024, time.February) != 29 || DaysIn(2025, time.February) != 28 || DaysIn(2025, time.December) != 31 {
		t.Fatalf("DaysIn mismatch")
	}
}
