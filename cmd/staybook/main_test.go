package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"staybook/internal/app/outbox"
	"staybook/internal/infra/config"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, _ := newTestApp(t)
	return srv
}

func newTestApp(t *testing.T) (*httptest.Server, *application) {
	t.Helper()
	cfg := config.Config{
		Env:                     "test",
		StorageMode:             config.StorageMemory,
		CalendarStore:           config.CalendarStorePrimary,
		IdempotencyTTL:          time.Hour,
		HostTimezone:            time.UTC,
		LeadTimeCutoffHour:      18,
		SnapshotRefreshInterval: time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := buildApplication(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("build application: %v", err)
	}
	t.Cleanup(app.close)
	if err := app.loadListingFixtures(context.Background(), "", logger); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	router := ginserver.NewRouter(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: app.checks}, app.handlers)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, app
}

func postJSON(t *testing.T, url, key string, body any) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestBookingFlowInMemory(t *testing.T) {
	srv := newTestServer(t)
	stay := map[string]any{
		"listing_id": "lst_demo_cabin",
		"guest_id":   "guest-1",
		"check_in":   "2031-03-10",
		"check_out":  "2031-03-13",
		"guests":     2,
	}

	resp := postJSON(t, srv.URL+"/api/v1/bookings", "req-1", stay)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created struct {
		ID     string `json:"id"`
		Nights int    `json:"nights"`
		State  string `json:"state"`
		Total  struct {
			Amount int64 `json:"amount"`
		} `json:"total"`
	}
	decode(t, resp, &created)
	if created.ID == "" || created.Nights != 3 || created.Total.Amount != 3*350000 {
		t.Fatalf("unexpected booking %+v", created)
	}

	replay := postJSON(t, srv.URL+"/api/v1/bookings", "req-1", stay)
	var replayed struct {
		ID string `json:"id"`
	}
	decode(t, replay, &replayed)
	if replayed.ID != created.ID {
		t.Fatalf("idempotent replay returned %q, want %q", replayed.ID, created.ID)
	}

	stay["guest_id"] = "guest-2"
	stay["check_in"] = "2031-03-12"
	stay["check_out"] = "2031-03-14"
	conflict := postJSON(t, srv.URL+"/api/v1/bookings", "req-2", stay)
	if conflict.StatusCode != http.StatusConflict {
		t.Fatalf("overlap status = %d, want 409", conflict.StatusCode)
	}

	stay["check_in"] = "2031-03-13"
	stay["check_out"] = "2031-03-15"
	turnover := postJSON(t, srv.URL+"/api/v1/bookings", "req-3", stay)
	if turnover.StatusCode != http.StatusCreated {
		t.Fatalf("checkout-day check-in status = %d, want 201", turnover.StatusCode)
	}

	cal, err := http.Get(srv.URL + "/api/v1/listings/lst_demo_cabin/calendar?year=2031&month=3")
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	defer cal.Body.Close()
	if cal.StatusCode != http.StatusOK {
		t.Fatalf("calendar status = %d", cal.StatusCode)
	}
	var grid struct {
		Cells []*struct {
			Date     string `json:"date"`
			IsBooked bool   `json:"is_booked"`
		} `json:"cells"`
	}
	decode(t, cal, &grid)
	booked := map[string]bool{}
	for _, c := range grid.Cells {
		if c != nil {
			booked[c.Date] = c.IsBooked
		}
	}
	for _, d := range []string{"2031-03-10", "2031-03-12", "2031-03-14"} {
		if !booked[d] {
			t.Fatalf("%s should be booked, got %v", d, booked)
		}
	}
	if booked["2031-03-15"] || booked["2031-03-09"] {
		t.Fatalf("checkout and earlier days must stay free")
	}
}

func TestAvailabilityReportsBlockedRange(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/v1/host/listings/lst_demo_loft/blocked-ranges", "", map[string]any{
		"start":  "2031-05-02",
		"end":    "2031-05-03",
		"reason": "maintenance",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("block status = %d", resp.StatusCode)
	}

	check, err := http.Get(srv.URL + "/api/v1/listings/lst_demo_loft/availability?check_in=2031-05-01&check_out=2031-05-04")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	defer check.Body.Close()
	var out struct {
		Bookable bool   `json:"bookable"`
		Reason   string `json:"reason"`
	}
	decode(t, check, &out)
	if out.Bookable || out.Reason != "blocked" {
		t.Fatalf("expected blocked decision, got %+v", out)
	}
}

func TestReadyzInMemory(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("readyz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status = %d", resp.StatusCode)
	}
}

func TestCalendarTopics(t *testing.T) {
	topics := calendarTopics("stg.")
	want := []string{"stg.booking.events.v1", "stg.calendar.events.v1", "stg.pricing.events.v1"}
	if len(topics) != len(want) {
		t.Fatalf("topics = %v", topics)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Fatalf("topics[%d] = %q, want %q", i, topics[i], want[i])
		}
	}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		decode(t, resp, out)
	}
	return resp.StatusCode
}

func deleteURL(t *testing.T, url string) int {
	t.Helper()
	req, _ := http.NewRequest(http.MethodDelete, url, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE %s: %v", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

type quoteBody struct {
	Nights   int `json:"nights"`
	Subtotal struct {
		Amount int64 `json:"amount"`
	} `json:"subtotal"`
}

func TestHostPricingAndBookingLifecycle(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/v1"

	resp := postJSON(t, base+"/host/listings/lst_demo_cabin/price-rules", "", map[string]any{
		"start":         "2031-06-11",
		"end":           "2031-06-11",
		"nightly_price": 400000,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("set rule status = %d", resp.StatusCode)
	}
	var rule struct {
		RuleID string `json:"rule_id"`
	}
	decode(t, resp, &rule)

	var q quoteBody
	if code := getJSON(t, base+"/listings/lst_demo_cabin/quote?check_in=2031-06-10&check_out=2031-06-13&guests=2", &q); code != http.StatusOK {
		t.Fatalf("quote status = %d", code)
	}
	if q.Nights != 3 || q.Subtotal.Amount != 2*350000+400000 {
		t.Fatalf("override not applied: %+v", q)
	}

	var sel struct {
		Selection struct {
			State string `json:"state"`
		} `json:"selection"`
		Quote *quoteBody `json:"quote"`
	}
	selResp := postJSON(t, base+"/listings/lst_demo_cabin/calendar/select", "", map[string]any{
		"start": "2031-06-10",
		"day":   "2031-06-13",
	})
	decode(t, selResp, &sel)
	if sel.Selection.State != "complete" || sel.Quote == nil || sel.Quote.Subtotal.Amount != q.Subtotal.Amount {
		t.Fatalf("unexpected selection result %+v", sel)
	}

	var cfg struct {
		PriceRules []struct {
			ID string `json:"id"`
		} `json:"price_rules"`
	}
	getJSON(t, base+"/host/listings/lst_demo_cabin/calendar-config", &cfg)
	if len(cfg.PriceRules) != 1 || cfg.PriceRules[0].ID != rule.RuleID {
		t.Fatalf("calendar config rules = %+v", cfg.PriceRules)
	}

	if code := deleteURL(t, base+"/host/price-rules/"+rule.RuleID); code != http.StatusOK {
		t.Fatalf("delete rule status = %d", code)
	}
	getJSON(t, base+"/listings/lst_demo_cabin/quote?check_in=2031-06-10&check_out=2031-06-13&guests=2", &q)
	if q.Subtotal.Amount != 3*350000 {
		t.Fatalf("deleted rule still priced: %+v", q)
	}

	created := postJSON(t, base+"/bookings", "", map[string]any{
		"listing_id": "lst_demo_cabin",
		"guest_id":   "guest-9",
		"check_in":   "2031-06-20",
		"check_out":  "2031-06-22",
		"guests":     1,
	})
	var b struct {
		ID string `json:"id"`
	}
	decode(t, created, &b)

	var timeline struct {
		Rows []struct {
			ListingID string `json:"listing_id"`
			Bars      []struct {
				ID string `json:"id"`
			} `json:"bars"`
		} `json:"rows"`
	}
	getJSON(t, base+"/admin/timeline?from=2031-06-15&days=14&listing_id=lst_demo_cabin", &timeline)
	if len(timeline.Rows) != 1 || len(timeline.Rows[0].Bars) != 1 || timeline.Rows[0].Bars[0].ID != b.ID {
		t.Fatalf("timeline = %+v", timeline)
	}

	if r := postJSON(t, base+"/bookings/"+b.ID+"/cancel", "", map[string]any{"reason": "plans changed"}); r.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d", r.StatusCode)
	}
	var check struct {
		Bookable bool `json:"bookable"`
	}
	getJSON(t, base+"/listings/lst_demo_cabin/availability?check_in=2031-06-20&check_out=2031-06-22", &check)
	if !check.Bookable {
		t.Fatalf("cancelled booking should free its nights")
	}

	var active, all struct {
		Items []struct {
			State string `json:"state"`
		} `json:"items"`
	}
	getJSON(t, base+"/host/listings/lst_demo_cabin/bookings", &active)
	getJSON(t, base+"/host/listings/lst_demo_cabin/bookings?include_inactive=true", &all)
	if len(active.Items) != 0 || len(all.Items) != 1 || all.Items[0].State != "CANCELLED" {
		t.Fatalf("active=%+v all=%+v", active.Items, all.Items)
	}
}

func TestTraceParentReachesEvents(t *testing.T) {
	srv, app := newTestApp(t)
	if app.subscribe == nil {
		t.Fatalf("memory mode should deliver events in process")
	}
	var (
		mu   sync.Mutex
		seen []outbox.EventRecord
	)
	app.subscribe(memory.Subscriber(func(_ context.Context, rec outbox.EventRecord) {
		mu.Lock()
		seen = append(seen, rec)
		mu.Unlock()
	}))

	const parent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	raw, _ := json.Marshal(map[string]any{
		"listing_id": "lst_demo_cabin",
		"guest_id":   "guest-trace",
		"check_in":   "2031-09-01",
		"check_out":  "2031-09-03",
		"guests":     2,
	})
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/bookings", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(obs.HeaderTraceParent, parent)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST bookings: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) == 0 {
		t.Fatalf("booking should emit an event")
	}
	for _, rec := range seen {
		if rec.Headers[outbox.HeaderTraceParent] != parent {
			t.Fatalf("%s traceparent = %q, want %q", rec.Name, rec.Headers[outbox.HeaderTraceParent], parent)
		}
	}
}

func TestUnboundedSpansAreRejected(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/v1"

	resp := postJSON(t, base+"/host/listings/lst_demo_cabin/price-rules", "", map[string]any{
		"start":         "0001-01-01",
		"end":           "9999-12-31",
		"nightly_price": 400000,
	})
	var body struct {
		Code string `json:"code"`
	}
	decode(t, resp, &body)
	if resp.StatusCode != http.StatusBadRequest || body.Code != "rule_too_long" {
		t.Fatalf("wide rule: status = %d code = %q", resp.StatusCode, body.Code)
	}

	for _, path := range []string{
		"/listings/lst_demo_cabin/quote?check_in=2031-10-20&check_out=9999-12-31",
		"/listings/lst_demo_cabin/availability?check_in=2031-10-20&check_out=9999-12-31",
		"/listings/lst_demo_loft/quote?check_in=2031-10-01&check_out=2031-10-20",
	} {
		if code := getJSON(t, base+path, nil); code != http.StatusUnprocessableEntity {
			t.Fatalf("GET %s status = %d, want 422", path, code)
		}
	}

	sel := postJSON(t, base+"/listings/lst_demo_cabin/calendar/select", "", map[string]any{
		"start": "2031-10-20",
		"day":   "2033-10-20",
	})
	if sel.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("select over the stay cap status = %d", sel.StatusCode)
	}

	booked := postJSON(t, base+"/bookings", "", map[string]any{
		"listing_id": "lst_demo_cabin",
		"guest_id":   "guest-long",
		"check_in":   "2031-10-20",
		"check_out":  "9999-12-31",
		"guests":     2,
	})
	if booked.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("booking over the stay cap status = %d", booked.StatusCode)
	}
}

func TestServeClosesApplicationOnListenFailure(t *testing.T) {
	cfg := config.Config{
		Env:                     "test",
		HTTPAddr:                "127.0.0.1:-1",
		StorageMode:             config.StorageMemory,
		CalendarStore:           config.CalendarStorePrimary,
		IdempotencyTTL:          time.Hour,
		HostTimezone:            time.UTC,
		LeadTimeCutoffHour:      18,
		SnapshotRefreshInterval: time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := buildApplication(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("build application: %v", err)
	}
	closed := false
	app.closers = append(app.closers, func() { closed = true })
	stopped := make(chan struct{})
	app.workers = append(app.workers, worker{name: "idle", run: func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return ctx.Err()
	}})

	if err := app.serve(context.Background(), cfg, logger); err == nil {
		t.Fatalf("serve should fail on an invalid address")
	}
	if !closed {
		t.Fatalf("application resources must be released when the server fails")
	}
	select {
	case <-stopped:
	default:
		t.Fatalf("workers must be stopped before serve returns")
	}
}
