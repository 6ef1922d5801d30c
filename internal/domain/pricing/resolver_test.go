package pricing

import (
	"errors"
	"testing"
	"time"

	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var day = calendardate.MustParse

func januaryStay() daterange.StayRange {
	return daterange.StayRange{CheckIn: day("2025-01-10"), CheckOut: day("2025-01-13")}
}

func TestComputeTotalBaseRate(t *testing.T) {
	q := ComputeTotal(Input{Range: januaryStay(), BasePrice: money.Must(2000, "PHP")})
	if q.Nights != 3 || q.Subtotal.Amount != 6000 || q.Total.Amount != 6000 {
		t.Fatalf("unexpected quote %+v", q)
	}
	if q.Subtotal.Currency != "PHP" || q.Total.Currency != "PHP" {
		t.Fatalf("currency must follow base price, got %+v", q)
	}
}

func TestComputeTotalWithOverride(t *testing.T) {
	q := ComputeTotal(Input{
		Range:     januaryStay(),
		BasePrice: money.Must(2000, "PHP"),
		Overrides: Overrides{day("2025-01-11"): 3000},
	})
	if q.Subtotal.Amount != 7000 {
		t.Fatalf("subtotal = %d, want 7000", q.Subtotal.Amount)
	}
	if len(q.Breakdown) != 3 || !q.Breakdown[1].Overridden || q.Breakdown[0].Overridden {
		t.Fatalf("unexpected breakdown %+v", q.Breakdown)
	}
}

func TestComputeTotalExtraGuests(t *testing.T) {
	q := ComputeTotal(Input{
		Range:                 januaryStay(),
		BasePrice:             money.Must(2000, "PHP"),
		ExtraGuests:           2,
		ExtraGuestFeePerNight: 250,
	})
	if q.ExtraFees.Amount != 1500 {
		t.Fatalf("extra fees = %d, want 1500", q.ExtraFees.Amount)
	}
	if q.Total.Amount != q.Subtotal.Amount+1500 {
		t.Fatalf("total = %d, want subtotal+1500", q.Total.Amount)
	}

	q = ComputeTotal(Input{Range: januaryStay(), BasePrice: money.Must(2000, "PHP"), ExtraGuests: -4, ExtraGuestFeePerNight: 250})
	if q.ExtraFees.Amount != 0 || q.ExtraGuests != 0 {
		t.Fatalf("negative extra guests must clamp to zero, got %+v", q)
	}
}

func TestComputeTotalInvalidRangeIsZero(t *testing.T) {
	cases := []daterange.StayRange{
		{},
		{CheckIn: day("2025-01-10")},
		{CheckIn: day("2025-01-13"), CheckOut: day("2025-01-10")},
		{CheckIn: day("2025-01-10"), CheckOut: day("2025-01-10")},
	}
	for _, r := range cases {
		q := ComputeTotal(Input{Range: r, BasePrice: money.Must(2000, "PHP"), ExtraGuests: 3, ExtraGuestFeePerNight: 100})
		if q.Nights != 0 || !q.Subtotal.IsZero() || !q.ExtraFees.IsZero() || !q.Total.IsZero() {
			t.Fatalf("range %s: expected zero quote, got %+v", r, q)
		}
	}
}

func TestComputeTotalIgnoresOverrideInsertionOrder(t *testing.T) {
	dates := []string{"2025-01-10", "2025-01-11", "2025-01-12", "2025-01-20"}
	prices := []int64{2500, 3000, 1800, 9999}
	forward := Overrides{}
	for i := range dates {
		forward[day(dates[i])] = prices[i]
	}
	backward := Overrides{}
	for i := len(dates) - 1; i >= 0; i-- {
		backward[day(dates[i])] = prices[i]
	}
	in := Input{Range: januaryStay(), BasePrice: money.Must(2000, "PHP")}
	in.Overrides = forward
	a := ComputeTotal(in)
	in.Overrides = backward
	b := ComputeTotal(in)
	if a.Total != b.Total || a.Subtotal.Amount != 7300 {
		t.Fatalf("quotes differ: %+v vs %+v", a, b)
	}
}

func TestExpandRulesLatestCreatedWins(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	older := Rule{ID: "old", Start: day("2025-01-10"), End: day("2025-01-20"), NightlyPrice: 2500, CreatedAt: t0}
	newer := Rule{ID: "new", Start: day("2025-01-12"), End: day("2025-01-14"), NightlyPrice: 4000, CreatedAt: t0.Add(time.Hour)}

	for _, rules := range [][]Rule{{older, newer}, {newer, older}} {
		o := ExpandRules(rules, day("2025-01-01"), day("2025-01-31"))
		if o[day("2025-01-11")] != 2500 || o[day("2025-01-13")] != 4000 || o[day("2025-01-20")] != 2500 {
			t.Fatalf("unexpected overrides %v", o)
		}
		if _, ok := o[day("2025-01-21")]; ok {
			t.Fatalf("rule end is inclusive, not beyond")
		}
	}

	tie := Rule{ID: "tie", Start: day("2025-01-13"), End: day("2025-01-13"), NightlyPrice: 100, CreatedAt: t0.Add(time.Hour)}
	if o := ExpandRules([]Rule{older, newer, tie}, day("2025-01-01"), day("2025-01-31")); o[day("2025-01-13")] != 100 {
		t.Fatalf("equal timestamps fall to the later rule, got %d", o[day("2025-01-13")])
	}

	bad := Rule{ID: "bad", Start: day("2025-01-15"), End: day("2025-01-14"), NightlyPrice: 1, CreatedAt: t0.Add(2 * time.Hour)}
	if o := ExpandRules([]Rule{older, bad}, day("2025-01-01"), day("2025-01-31")); o[day("2025-01-15")] != 2500 {
		t.Fatalf("malformed rules must be skipped")
	}
}

func TestExpandRulesClipsToWindow(t *testing.T) {
	wide := Rule{ID: "wide", Start: day("0001-01-01"), End: day("9999-12-31"), NightlyPrice: 4200}
	o := ExpandRules([]Rule{wide}, day("2025-03-01"), day("2025-03-31"))
	if len(o) != 31 || o[day("2025-03-15")] != 4200 {
		t.Fatalf("expected 31 overrides inside the window, got %d", len(o))
	}
	if _, ok := o[day("2025-04-01")]; ok {
		t.Fatalf("overrides must stay inside the window")
	}
	if o := ExpandRules([]Rule{wide}, day("2025-03-31"), day("2025-03-01")); len(o) != 0 {
		t.Fatalf("inverted window should expand nothing, got %d", len(o))
	}
	if o := ExpandRules([]Rule{wide}, calendardate.Date{}, day("2025-03-01")); len(o) != 0 {
		t.Fatalf("zero window bound should expand nothing, got %d", len(o))
	}
}

func TestNewRuleRejectsLongSpans(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewRule(NewRuleParams{ListingID: "l-1", Start: day("0001-01-01"), End: day("9999-12-31"), NightlyPrice: 100, Now: now})
	if !errors.Is(err, ErrRuleTooLong) {
		t.Fatalf("err = %v, want ErrRuleTooLong", err)
	}
	start := day("2025-01-01")
	if _, err := NewRule(NewRuleParams{ListingID: "l-1", Start: start, End: start.AddDays(MaxRuleDays - 1), NightlyPrice: 100, Now: now}); err != nil {
		t.Fatalf("a span of exactly MaxRuleDays is allowed: %v", err)
	}
	if _, err := NewRule(NewRuleParams{ListingID: "l-1", Start: start, End: start.AddDays(MaxRuleDays), NightlyPrice: 100, Now: now}); !errors.Is(err, ErrRuleTooLong) {
		t.Fatalf("one day over the limit: err = %v", err)
	}
}

func TestGuestConfigClamps(t *testing.T) {
	g := GuestConfig{BaseGuests: 4, MaxExtraGuests: 2}
	cases := []struct{ in, guests, extra int }{
		{-1, 1, 0},
		{0, 1, 0},
		{3, 3, 2},
		{9, 4, 2},
	}
	for _, tc := range cases {
		if got := g.ClampGuests(tc.in); got != tc.guests {
			t.Fatalf("ClampGuests(%d) = %d, want %d", tc.in, got, tc.guests)
		}
		if got := g.ClampExtraGuests(tc.in); got != tc.extra {
			t.Fatalf("ClampExtraGuests(%d) = %d, want %d", tc.in, got, tc.extra)
		}
	}
	if (GuestConfig{}).ClampExtraGuests(50) != 50 {
		t.Fatalf("zero cap means unbounded")
	}
}
