package availability

import (
	"context"
	"time"

	"washbook/internal/calendar"
	"washbook/pkg/config"
	mongotx "washbook/pkg/db/mongo"
	apperrors "washbook/pkg/errors"
	"washbook/pkg/model"
)

type ProviderSource interface {
	GetProvider(ctx context.Context, providerID string) (*model.Provider, error)
}

type ServiceSource interface {
	GetService(ctx context.Context, serviceID string) (*model.Service, error)
}

type Ledger interface {
	FindActiveInRange(ctx context.Context, providerID, serviceID string, start, end time.Time) ([]*model.Booking, error)
}

// Resolver computes bookable slots. It only reads; two calls against the
// same ledger state return the same answer.
type Resolver struct {
	providers ProviderSource
	services  ServiceSource
	ledger    Ledger
	cfg       *config.Config
	now       func() time.Time
}

func NewResolver(providers ProviderSource, services ServiceSource, ledger Ledger, cfg *config.Config) *Resolver {
	return &Resolver{
		providers: providers,
		services:  services,
		ledger:    ledger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Load fetches the service and its provider, checking they belong together.
func Load(ctx context.Context, providers ProviderSource, services ServiceSource, providerID, serviceID string) (*model.Provider, *model.Service, error) {
	svc, err := services.GetService(ctx, serviceID)
	if err != nil {
		return nil, nil, err
	}
	if svc.ProviderID != providerID {
		return nil, nil, apperrors.NotFound("Service " + serviceID + " for provider " + providerID)
	}
	provider, err := providers.GetProvider(ctx, providerID)
	if err != nil {
		return nil, nil, err
	}
	return provider, svc, nil
}

// OfferedSlots generates the service's slots on date in chronological order.
// Slots outside the booking window are dropped.
func OfferedSlots(provider *model.Provider, svc *model.Service, date string, now time.Time) ([]model.Slot, error) {
	hours, open, err := calendar.ResolveDay(provider, date)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if !open {
		return nil, nil
	}

	generated := calendar.GenerateSlots(hours, svc.DurationMinutes)
	slots := generated[:0]
	for _, s := range generated {
		if CheckStart(svc, s.StartTime, now) == nil {
			slots = append(slots, s)
		}
	}
	return slots, nil
}

func (r *Resolver) Resolve(ctx context.Context, providerID, serviceID, date string) (*model.Availability, error) {
	provider, svc, err := Load(ctx, r.providers, r.services, providerID, serviceID)
	if err != nil {
		return nil, err
	}

	slots, err := OfferedSlots(provider, svc, date, r.now())
	if err != nil {
		return nil, err
	}

	result := &model.Availability{
		ProviderID: providerID,
		ServiceID:  serviceID,
		Date:       date,
		TimeZone:   provider.TimeZone,
		Slots:      []model.Slot{},
	}
	if len(slots) == 0 {
		return result, nil
	}

	policy := mongotx.RetryPolicy{Attempts: r.cfg.ReadRetryAttempts, Backoff: r.cfg.ReadRetryBackoff}
	bookings, err := mongotx.WithRetry(ctx, policy, mongotx.IsTransient,
		func(ctx context.Context) ([]*model.Booking, error) {
			return r.ledger.FindActiveInRange(ctx, providerID, serviceID, slots[0].StartTime, slots[len(slots)-1].EndTime)
		})
	if err != nil {
		r.cfg.Log.Error("Failed to read ledger for availability",
			"provider_id", providerID,
			"service_id", serviceID,
			"date", date,
			"error", err,
		)
		return nil, mongotx.StoreError("Failed to read bookings", err)
	}

	for _, s := range slots {
		taken := countOverlaps(bookings, s.StartTime, s.EndTime)
		s.Available = taken < svc.MaxCapacity
		s.Remaining = max(svc.MaxCapacity-taken, 0)
		result.Available = result.Available || s.Available
		result.Slots = append(result.Slots, s)
	}

	r.cfg.Log.Debug("Availability resolved",
		"provider_id", providerID,
		"service_id", serviceID,
		"date", date,
		"slots", len(result.Slots),
	)
	return result, nil
}
