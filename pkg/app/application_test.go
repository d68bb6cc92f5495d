package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"washbook/internal/availability"
	availabilityhandler "washbook/internal/availability/handler"
	bookinghandler "washbook/internal/bookings/handler"
	"washbook/internal/bookings/lock"
	bookingservice "washbook/internal/bookings/service"
	bookingvalidator "washbook/internal/bookings/validator"
	calendarhandler "washbook/internal/calendar/handler"
	calendarservice "washbook/internal/calendar/service"
	calendarvalidator "washbook/internal/calendar/validator"
	catalogservice "washbook/internal/catalog/service"
	"washbook/internal/events"
	statshandler "washbook/internal/stats/handler"
	statsservice "washbook/internal/stats/service"
	"washbook/internal/testfixtures"
	"washbook/pkg/client"
	"washbook/pkg/client/scheduling"
	"washbook/pkg/config"
	apperrors "washbook/pkg/errors"
	"washbook/pkg/model"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	return f.err
}

func testConfig() *config.Config {
	cfg := testfixtures.Config()
	cfg.Port = "0"
	cfg.RateLimitRequests = 1000
	cfg.RateLimitWindow = time.Minute
	cfg.AnonymousRateLimitRPS = 1000
	cfg.AnonymousRateLimitBurst = 1000
	cfg.RequestTimeout = 5 * time.Second
	cfg.IdempotencyTTL = time.Minute
	cfg.MaxRequestSize = 1 << 20
	cfg.ReadTimeout = 5 * time.Second
	cfg.WriteTimeout = 5 * time.Second
	cfg.IdleTimeout = 5 * time.Second
	cfg.ShutdownTimeout = 5 * time.Second
	return cfg
}

func newTestApp(t *testing.T, pinger Pinger) (*scheduling.Client, *events.Recorder) {
	t.Helper()
	cfg := testConfig()

	providers := calendarservice.NewCalendarService(
		testfixtures.NewProviders(testfixtures.Provider("UTC", false)),
		calendarvalidator.NewCalendarValidator(cfg.Log),
		cfg,
	)
	catalog := catalogservice.NewCatalogService(testfixtures.NewServices(testfixtures.Service(1)), cfg)
	ledger := testfixtures.NewLedger()
	recorder := &events.Recorder{}

	bookings := bookingservice.NewBookingService(
		ledger,
		lock.NewLocker(testfixtures.NewLockStore(nil), cfg.BookingLockTTL, cfg.BookingLockWait, cfg.Log),
		providers,
		catalog,
		recorder,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	application := NewApplication(cfg)
	application.SetApp(NewHealthHandler(pinger, nil, cfg.Log),
		calendarhandler.NewCalendarHandler(providers, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availability.NewResolver(providers, catalog, ledger, cfg), cfg.Log),
		bookinghandler.NewBookingHandler(bookings, cfg.Log),
		statshandler.NewStatsHandler(statsservice.NewStatsService(ledger, cfg), cfg.Log),
	)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		server.Close()
		application.idempotencyStore.Stop()
		application.rateLimiter.Stop()
		application.anonLimiter.Stop()
	})
	return scheduling.New(server.URL), recorder
}

// futureDate is far enough ahead that every slot is bookable.
func futureDate() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format(config.DateLayout)
}

func TestApplication_BookingFlow(t *testing.T) {
	api, recorder := newTestApp(t, fakePinger{})
	ctx := context.Background()
	date := futureDate()

	resp, err := api.Availability(ctx, testfixtures.ProviderID, testfixtures.ServiceID, date)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("availability failed: %v %v", err, resp)
	}
	before, err := api.DecodeAvailability(resp)
	if err != nil {
		t.Fatalf("decode availability: %v", err)
	}
	if len(before.Slots) != 10 || !before.Slots[1].Available {
		t.Fatalf("unexpected availability: %+v", before)
	}

	req := model.BookingRequest{
		ProviderID: testfixtures.ProviderID,
		ServiceID:  testfixtures.ServiceID,
		CustomerID: "cust-1",
		Date:       date,
		StartTime:  "10:00",
		EndTime:    "11:00",
		Customer:   model.CustomerDetails{Name: "Dana Smith"},
	}
	resp, err = api.CreateBooking(ctx, req, "key-1")
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create failed: %v %s", err, resp.Body)
	}
	created, _ := api.DecodeBooking(resp)

	// replay of the same idempotency key returns the stored response
	resp, err = api.CreateBooking(ctx, req, "key-1")
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("replay failed: %v %s", err, resp.Body)
	}
	replayed, _ := api.DecodeBooking(resp)
	if replayed.ID != created.ID {
		t.Errorf("replay created a second booking: %s vs %s", replayed.ID, created.ID)
	}

	resp, _ = api.CreateBooking(ctx, req, "key-2")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second booking of a full slot should be 409, got %d: %s", resp.StatusCode, resp.Body)
	}

	resp, _ = api.Availability(ctx, testfixtures.ProviderID, testfixtures.ServiceID, date)
	after, _ := api.DecodeAvailability(resp)
	if after.Slots[1].Available {
		t.Error("booked slot should be unavailable")
	}

	resp, _ = api.Cancel(ctx, created.ID, "plans changed")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel failed: %d %s", resp.StatusCode, resp.Body)
	}

	resp, _ = api.Availability(ctx, testfixtures.ProviderID, testfixtures.ServiceID, date)
	restored, _ := api.DecodeAvailability(resp)
	if !restored.Slots[1].Available {
		t.Error("cancelled slot should be available again")
	}

	resp, _ = api.Stats(ctx, testfixtures.ProviderID, date, date)
	stats, err := api.DecodeStats(resp)
	if err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 1 || stats.Cancelled != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	if n := len(recorder.Events()); n != 2 {
		t.Errorf("expected created and cancelled events, got %d", n)
	}
}

func TestApplication_RescheduleAndCalendar(t *testing.T) {
	api, recorder := newTestApp(t, fakePinger{})
	ctx := context.Background()
	date := futureDate()

	resp, _ := api.CreateBooking(ctx, model.BookingRequest{
		ProviderID: testfixtures.ProviderID,
		ServiceID:  testfixtures.ServiceID,
		CustomerID: "cust-2",
		Date:       date,
		StartTime:  "10:00",
		EndTime:    "11:00",
		Customer:   model.CustomerDetails{Name: "Noa Cohen"},
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create failed: %d %s", resp.StatusCode, resp.Body)
	}
	booking, _ := api.DecodeBooking(resp)
	if booking.Status != model.StatusPending {
		t.Fatalf("status = %s, want pending without auto accept", booking.Status)
	}

	resp, _ = api.Reschedule(ctx, booking.ID, model.RescheduleRequest{Date: date, StartTime: "12:00", EndTime: "13:00"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reschedule failed: %d %s", resp.StatusCode, resp.Body)
	}

	resp, _ = api.Availability(ctx, testfixtures.ProviderID, testfixtures.ServiceID, date)
	slots, _ := api.DecodeAvailability(resp)
	if !slots.Slots[1].Available || slots.Slots[3].Available {
		t.Errorf("reschedule should free 10:00 and hold 12:00: %+v", slots.Slots)
	}

	resp, _ = api.UpdateStatus(ctx, booking.ID, model.StatusConfirmed)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm failed: %d %s", resp.StatusCode, resp.Body)
	}
	resp, _ = api.UpdateStatus(ctx, booking.ID, model.StatusRejected)
	if code := client.GetErrorCode(resp); code != apperrors.CodePolicyViolation {
		t.Errorf("confirmed -> rejected code = %s, want %s", code, apperrors.CodePolicyViolation)
	}

	resp, _ = api.GetBooking(ctx, "000000000000000000000000")
	if resp.StatusCode != http.StatusNotFound || client.GetErrorCode(resp) != apperrors.CodeNotFound {
		t.Errorf("unknown booking: %d %s", resp.StatusCode, resp.Body)
	}

	resp, _ = api.ListBookings(ctx, testfixtures.ProviderID, date, date, 10, 0)
	var page struct {
		Data       []model.Booking `json:"data"`
		TotalCount int64           `json:"total_count"`
	}
	if err := resp.DecodeJSON(&page); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if page.TotalCount != 1 || len(page.Data) != 1 || page.Data[0].Status != model.StatusConfirmed {
		t.Errorf("unexpected listing: %+v", page)
	}

	resp, _ = api.SetOverride(ctx, testfixtures.ProviderID, date, model.HoursOverride{IsOpen: false})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set override failed: %d %s", resp.StatusCode, resp.Body)
	}
	resp, _ = api.Availability(ctx, testfixtures.ProviderID, testfixtures.ServiceID, date)
	closed, _ := api.DecodeAvailability(resp)
	if closed.Available || len(closed.Slots) != 0 {
		t.Errorf("closed override should offer nothing: %+v", closed)
	}

	resp, _ = api.GetCalendar(ctx, testfixtures.ProviderID)
	var view model.CalendarView
	if err := resp.DecodeData(&view); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if _, ok := view.Overrides[date]; !ok {
		t.Errorf("calendar is missing the override for %s", date)
	}

	resp, _ = api.DeleteOverride(ctx, testfixtures.ProviderID, date)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete override failed: %d %s", resp.StatusCode, resp.Body)
	}

	if n := len(recorder.Events()); n != 3 {
		t.Errorf("expected created, rescheduled and status events, got %d", n)
	}
}

func TestApplication_RejectsNonJSONBody(t *testing.T) {
	cfg := testConfig()
	application := NewApplication(cfg)
	application.SetApp(NewHealthHandler(fakePinger{}, nil, cfg.Log))
	defer application.idempotencyStore.Stop()
	defer application.rateLimiter.Stop()
	defer application.anonLimiter.Stop()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.ContentLength = 10
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	application.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		pinger     fakePinger
		cache      func(ctx context.Context) error
		path       string
		expectCode int
	}{
		{name: "liveness", pinger: fakePinger{err: errors.New("down")}, path: "/health", expectCode: http.StatusOK},
		{name: "ready", pinger: fakePinger{}, path: "/ready", expectCode: http.StatusOK},
		{name: "database down", pinger: fakePinger{err: errors.New("down")}, path: "/ready", expectCode: http.StatusServiceUnavailable},
		{
			name:       "cache down degrades only",
			pinger:     fakePinger{},
			cache:      func(ctx context.Context) error { return errors.New("redis down") },
			path:       "/ready",
			expectCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			application := NewApplication(cfg)
			application.SetApp(NewHealthHandler(tt.pinger, tt.cache, cfg.Log))
			defer application.idempotencyStore.Stop()
			defer application.rateLimiter.Stop()
			defer application.anonLimiter.Stop()

			w := httptest.NewRecorder()
			application.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d: %s", tt.expectCode, w.Code, w.Body.String())
			}
		})
	}
}
