package service

import (
	"context"
	"math"
	"slices"
	"strings"

	"washbook/pkg/config"
	mongotx "washbook/pkg/db/mongo"
	apperrors "washbook/pkg/errors"
	"washbook/pkg/model"
)

type StatsLedger interface {
	AggregateStats(ctx context.Context, providerID, startDate, endDate string) ([]model.StatusBucket, error)
}

type StatsService interface {
	Stats(ctx context.Context, providerID, startDate, endDate string) (*model.BookingStats, error)
}

type statsService struct {
	ledger StatsLedger
	cfg    *config.Config
}

func NewStatsService(ledger StatsLedger, cfg *config.Config) StatsService {
	return &statsService{ledger: ledger, cfg: cfg}
}

// Stats summarizes the provider's bookings whose date falls in
// [startDate, endDate]. An empty range yields zeroed stats.
func (s *statsService) Stats(ctx context.Context, providerID, startDate, endDate string) (*model.BookingStats, error) {
	if providerID == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}
	if endDate < startDate {
		return nil, apperrors.InvalidInput("end_date must not be before start_date")
	}

	policy := mongotx.RetryPolicy{Attempts: s.cfg.ReadRetryAttempts, Backoff: s.cfg.ReadRetryBackoff}
	buckets, err := mongotx.WithRetry(ctx, policy, mongotx.IsTransient,
		func(ctx context.Context) ([]model.StatusBucket, error) {
			return s.ledger.AggregateStats(ctx, providerID, startDate, endDate)
		})
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate booking stats", "provider_id", providerID, "error", err)
		return nil, mongotx.StoreError("Failed to compute booking stats", err)
	}

	stats := Summarize(buckets)
	stats.ProviderID = providerID
	stats.StartDate = startDate
	stats.EndDate = endDate
	return stats, nil
}

// Summarize folds per-status buckets into counts, revenue and rates.
// Completed revenue counts completed bookings; projected revenue counts
// bookings still holding capacity. Amounts in different currencies are never
// added together.
func Summarize(buckets []model.StatusBucket) *model.BookingStats {
	stats := &model.BookingStats{}
	revenue := map[string]*model.CurrencyRevenue{}
	earn := func(currency string) *model.CurrencyRevenue {
		r, ok := revenue[currency]
		if !ok {
			r = &model.CurrencyRevenue{Currency: currency}
			revenue[currency] = r
		}
		return r
	}

	for _, b := range buckets {
		stats.Total += b.Count

		switch b.Status {
		case model.StatusPending:
			stats.Pending += b.Count
			earn(b.Currency).ProjectedCents += b.PriceCents
		case model.StatusConfirmed:
			stats.Confirmed += b.Count
			earn(b.Currency).ProjectedCents += b.PriceCents
		case model.StatusCompleted:
			stats.Completed += b.Count
			earn(b.Currency).CompletedCents += b.PriceCents
		case model.StatusCancelled:
			stats.Cancelled += b.Count
		case model.StatusRejected:
			stats.Rejected += b.Count
		case model.StatusNoShow:
			stats.NoShow += b.Count
		}
	}

	stats.Revenue = summarizeRevenue(revenue)

	accepted := stats.Confirmed + stats.Completed + stats.NoShow
	stats.Rates = model.Rates{
		Confirmation: ratio(accepted, stats.Total),
		Completion:   ratio(stats.Completed, accepted),
		Cancellation: ratio(stats.Cancelled, stats.Total),
		NoShow:       ratio(stats.NoShow, stats.Completed+stats.NoShow),
	}
	return stats
}

func summarizeRevenue(byCurrency map[string]*model.CurrencyRevenue) model.Revenue {
	var out model.Revenue
	for _, r := range byCurrency {
		out.ByCurrency = append(out.ByCurrency, *r)
	}
	slices.SortFunc(out.ByCurrency, func(a, b model.CurrencyRevenue) int {
		return strings.Compare(a.Currency, b.Currency)
	})

	switch len(out.ByCurrency) {
	case 0:
	case 1:
		only := out.ByCurrency[0]
		out.Currency = only.Currency
		out.CompletedCents = only.CompletedCents
		out.ProjectedCents = only.ProjectedCents
	default:
		out.MixedCurrency = true
	}
	return out
}

func ratio(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 10000
}
