package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "washbook/pkg/errors"
	"washbook/pkg/logger"
	"washbook/pkg/model"
)

type mockResolver struct {
	resolveFunc func(ctx context.Context, providerID, serviceID, date string) (*model.Availability, error)
}

func (m *mockResolver) Resolve(ctx context.Context, providerID, serviceID, date string) (*model.Availability, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, providerID, serviceID, date)
	}
	return &model.Availability{Slots: []model.Slot{}}, nil
}

func TestAvailabilityHandler_Get(t *testing.T) {
	var called bool
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, providerID, serviceID, date string) (*model.Availability, error) {
			called = true
			if serviceID == "missing" {
				return nil, apperrors.NotFoundWithID("Service", serviceID)
			}
			return &model.Availability{ProviderID: providerID, ServiceID: serviceID, Date: date, Slots: []model.Slot{}}, nil
		},
	}

	router := httprouter.New()
	NewAvailabilityHandler(resolver, logger.Discard()).RegisterRoutes(router)

	tests := []struct {
		name        string
		query       string
		expectCode  int
		expectCalls bool
	}{
		{name: "valid", query: "provider_id=p&service_id=s&date=2025-06-02", expectCode: http.StatusOK, expectCalls: true},
		{name: "missing date", query: "provider_id=p&service_id=s", expectCode: http.StatusBadRequest},
		{name: "bad date", query: "provider_id=p&service_id=s&date=02-06-2025", expectCode: http.StatusBadRequest},
		{name: "missing provider", query: "service_id=s&date=2025-06-02", expectCode: http.StatusBadRequest},
		{name: "unknown service", query: "provider_id=p&service_id=missing&date=2025-06-02", expectCode: http.StatusNotFound, expectCalls: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/availability?"+tt.query, nil))
			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d: %s", tt.expectCode, w.Code, w.Body.String())
			}
			if called != tt.expectCalls {
				t.Errorf("resolver called = %v, want %v", called, tt.expectCalls)
			}
		})
	}
}
