package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "washbook/pkg/errors"
	"washbook/pkg/logger"
	"washbook/pkg/model"
)

// Mock service for testing
type mockBookingService struct {
	createFunc       func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	listFunc         func(ctx context.Context, providerID, startDate, endDate string, limit int, offset int64) ([]*model.Booking, int64, error)
	rescheduleFunc   func(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Booking, error)
	cancelFunc       func(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error)
	updateStatusFunc func(ctx context.Context, id string, req *model.StatusUpdate) (*model.Booking, error)
}

func (m *mockBookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) ListByProvider(ctx context.Context, providerID, startDate, endDate string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, providerID, startDate, endDate, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Booking, error) {
	if m.rescheduleFunc != nil {
		return m.rescheduleFunc(ctx, id, req)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id, req)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, id string, req *model.StatusUpdate) (*model.Booking, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, req)
	}
	return &model.Booking{ID: id}, nil
}

func newTestRouter(svc *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreate_CustomerHeaderFallback(t *testing.T) {
	var received *model.BookingRequest
	router := newTestRouter(&mockBookingService{
		createFunc: func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
			received = req
			return &model.Booking{ID: "b1", CustomerID: req.CustomerID}, nil
		},
	})

	body := `{"provider_id":"p","service_id":"s","date":"2025-06-02","start_time":"10:00","end_time":"11:00","customer_details":{"name":"Dana"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Customer-ID", "cust-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if received == nil || received.CustomerID != "cust-42" {
		t.Fatalf("customer id not taken from header: %+v", received)
	}
}

func TestCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expectCode int
		expectBody string
	}{
		{name: "slot conflict", err: apperrors.SlotConflict("full", nil), expectCode: http.StatusConflict, expectBody: apperrors.CodeSlotConflict},
		{name: "policy violation", err: apperrors.PolicyViolation(apperrors.RuleSlotInPast, "past", nil), expectCode: http.StatusUnprocessableEntity, expectBody: apperrors.RuleSlotInPast},
		{name: "store outage", err: apperrors.TransientStore("down", nil), expectCode: http.StatusServiceUnavailable, expectBody: apperrors.CodeTransientStore},
		{name: "not found", err: apperrors.NotFoundWithID("Service", "s"), expectCode: http.StatusNotFound, expectBody: apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockBookingService{
				createFunc: func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
					return nil, tt.err
				},
			})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{"provider_id":"p"}`))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.expectBody) {
				t.Errorf("body %s should mention %s", w.Body.String(), tt.expectBody)
			}
		})
	}
}

func TestCreate_MalformedBody(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	tests := []struct {
		name string
		body string
	}{
		{name: "truncated", body: `{"provider_id":`},
		{name: "unknown field", body: `{"provider":"p"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(tt.body)))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestList_QueryParameters(t *testing.T) {
	var gotProvider, gotStart, gotEnd string
	var gotLimit int
	var gotOffset int64
	router := newTestRouter(&mockBookingService{
		listFunc: func(ctx context.Context, providerID, startDate, endDate string, limit int, offset int64) ([]*model.Booking, int64, error) {
			gotProvider, gotStart, gotEnd, gotLimit, gotOffset = providerID, startDate, endDate, limit, offset
			return []*model.Booking{{ID: "b1"}}, 7, nil
		},
	})

	tests := []struct {
		name       string
		query      string
		expectCode int
	}{
		{name: "provider only", query: "provider_id=p", expectCode: http.StatusOK},
		{name: "full range", query: "provider_id=p&start_date=2025-06-01&end_date=2025-06-30&limit=5&offset=10", expectCode: http.StatusOK},
		{name: "missing provider", query: "start_date=2025-06-01", expectCode: http.StatusBadRequest},
		{name: "bad start date", query: "provider_id=p&start_date=yesterday", expectCode: http.StatusBadRequest},
		{name: "bad limit", query: "provider_id=p&limit=abc", expectCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings?"+tt.query, nil))
			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d: %s", tt.expectCode, w.Code, w.Body.String())
			}
		})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings?provider_id=p&start_date=2025-06-01&end_date=2025-06-30&limit=5&offset=10", nil))
	if gotProvider != "p" || gotStart != "2025-06-01" || gotEnd != "2025-06-30" || gotLimit != 5 || gotOffset != 10 {
		t.Errorf("unexpected arguments: %s %s %s %d %d", gotProvider, gotStart, gotEnd, gotLimit, gotOffset)
	}

	var resp struct {
		Data       []model.Booking `json:"data"`
		TotalCount int64           `json:"total_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalCount != 7 || len(resp.Data) != 1 {
		t.Errorf("unexpected page: %+v", resp)
	}
}

func TestMutations_PassPathID(t *testing.T) {
	var ids []string
	record := func(id string) (*model.Booking, error) {
		ids = append(ids, id)
		return &model.Booking{ID: id}, nil
	}
	router := newTestRouter(&mockBookingService{
		rescheduleFunc: func(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Booking, error) {
			return record(id)
		},
		cancelFunc: func(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error) {
			return record(id)
		},
		updateStatusFunc: func(ctx context.Context, id string, req *model.StatusUpdate) (*model.Booking, error) {
			return record(id)
		},
	})

	requests := []struct {
		method string
		path   string
		body   string
	}{
		{method: http.MethodPost, path: "/api/v1/bookings/id/abc/reschedule", body: `{"date":"2025-06-03","start_time":"10:00","end_time":"11:00"}`},
		{method: http.MethodPost, path: "/api/v1/bookings/id/abc/cancel", body: `{"reason":"sick"}`},
		{method: http.MethodPatch, path: "/api/v1/bookings/id/abc/status", body: `{"status":"confirmed"}`},
	}
	for _, r := range requests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(r.method, r.path, strings.NewReader(r.body)))
		if w.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200, got %d", r.method, r.path, w.Code)
		}
	}
	if len(ids) != 3 || ids[0] != "abc" || ids[2] != "abc" {
		t.Errorf("unexpected ids: %v", ids)
	}
}
