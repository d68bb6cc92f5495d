package service

import (
	"context"
	"testing"
	"time"

	"washbook/internal/testfixtures"
	mongotx "washbook/pkg/db/mongo"
	apperrors "washbook/pkg/errors"
	"washbook/pkg/model"
)

func TestSummarize(t *testing.T) {
	stats := Summarize([]model.StatusBucket{
		{Status: model.StatusPending, Count: 2, PriceCents: 5000, Currency: "USD"},
		{Status: model.StatusConfirmed, Count: 3, PriceCents: 7500, Currency: "USD"},
		{Status: model.StatusCompleted, Count: 4, PriceCents: 10000, Currency: "USD"},
		{Status: model.StatusCancelled, Count: 2, PriceCents: 5000, Currency: "USD"},
		{Status: model.StatusRejected, Count: 1, PriceCents: 2500, Currency: "USD"},
		{Status: model.StatusNoShow, Count: 1, PriceCents: 2500, Currency: "USD"},
	})

	if stats.Total != 13 {
		t.Errorf("total = %d", stats.Total)
	}
	if stats.Revenue.CompletedCents != 10000 || stats.Revenue.ProjectedCents != 12500 || stats.Revenue.Currency != "USD" {
		t.Errorf("unexpected revenue: %+v", stats.Revenue)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{name: "confirmation", got: stats.Rates.Confirmation, want: 0.6154},
		{name: "completion", got: stats.Rates.Completion, want: 0.5},
		{name: "cancellation", got: stats.Rates.Cancellation, want: 0.1538},
		{name: "no show", got: stats.Rates.NoShow, want: 0.2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s rate = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestSummarize_MixedCurrencies(t *testing.T) {
	stats := Summarize([]model.StatusBucket{
		{Status: model.StatusCompleted, Count: 2, PriceCents: 5000, Currency: "USD"},
		{Status: model.StatusCompleted, Count: 1, PriceCents: 4000, Currency: "EUR"},
		{Status: model.StatusConfirmed, Count: 1, PriceCents: 4000, Currency: "EUR"},
		{Status: model.StatusCancelled, Count: 1, PriceCents: 9900, Currency: "GBP"},
	})

	if stats.Total != 5 || stats.Completed != 3 || stats.Confirmed != 1 {
		t.Errorf("counts should add across currencies: %+v", stats)
	}
	if !stats.Revenue.MixedCurrency || stats.Revenue.Currency != "" {
		t.Errorf("mixed revenue should not name one currency: %+v", stats.Revenue)
	}
	if stats.Revenue.CompletedCents != 0 || stats.Revenue.ProjectedCents != 0 {
		t.Errorf("mixed revenue must not add amounts across currencies: %+v", stats.Revenue)
	}

	want := []model.CurrencyRevenue{
		{Currency: "EUR", CompletedCents: 4000, ProjectedCents: 4000},
		{Currency: "USD", CompletedCents: 5000},
	}
	if len(stats.Revenue.ByCurrency) != len(want) {
		t.Fatalf("by currency = %+v, want %+v", stats.Revenue.ByCurrency, want)
	}
	for i := range want {
		if stats.Revenue.ByCurrency[i] != want[i] {
			t.Errorf("by currency[%d] = %+v, want %+v", i, stats.Revenue.ByCurrency[i], want[i])
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize(nil)
	if stats.Total != 0 || stats.Rates != (model.Rates{}) || stats.Revenue.CompletedCents != 0 ||
		stats.Revenue.ProjectedCents != 0 || len(stats.Revenue.ByCurrency) != 0 || stats.Revenue.MixedCurrency {
		t.Errorf("empty ledger should give zeroed stats: %+v", stats)
	}
}

func TestStats(t *testing.T) {
	ledger := testfixtures.NewLedger()
	day := func(date string, status model.BookingStatus) {
		start, _ := time.Parse("2006-01-02 15:04", date+" 10:00")
		ledger.Add(&model.Booking{
			ProviderID:  testfixtures.ProviderID,
			ServiceID:   testfixtures.ServiceID,
			BookingDate: date,
			StartTime:   start,
			EndTime:     start.Add(time.Hour),
			Status:      status,
			PriceCents:  2500,
			Currency:    "USD",
		})
	}
	day("2025-06-01", model.StatusCompleted)
	day("2025-06-02", model.StatusConfirmed)
	day("2025-06-02", model.StatusCancelled)
	day("2025-07-01", model.StatusCompleted)

	svc := NewStatsService(ledger, testfixtures.Config())
	ctx := context.Background()

	stats, err := svc.Stats(ctx, testfixtures.ProviderID, "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 3 || stats.Completed != 1 || stats.Confirmed != 1 || stats.Cancelled != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.ProviderID != testfixtures.ProviderID || stats.StartDate != "2025-06-01" {
		t.Errorf("range not echoed: %+v", stats)
	}

	ledger.ReadErrors = []error{mongotx.ErrUnavailable}
	if _, err := svc.Stats(ctx, testfixtures.ProviderID, "2025-06-01", "2025-06-30"); err != nil {
		t.Errorf("transient failure should be retried: %v", err)
	}

	_, err = svc.Stats(ctx, testfixtures.ProviderID, "2025-06-30", "2025-06-01")
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("inverted range should be INVALID_INPUT, got %v", err)
	}
}
