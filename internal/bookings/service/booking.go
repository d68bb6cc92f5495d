package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"washbook/internal/availability"
	bookingserrors "washbook/internal/bookings/errors"
	"washbook/internal/bookings/lock"
	"washbook/internal/bookings/repository"
	"washbook/internal/bookings/validator"
	"washbook/internal/calendar"
	"washbook/internal/events"
	"washbook/pkg/config"
	mongotx "washbook/pkg/db/mongo"
	apperrors "washbook/pkg/errors"
	"washbook/pkg/locale"
	"washbook/pkg/model"
	"washbook/pkg/sanitizer"
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByProvider(ctx context.Context, providerID, startDate, endDate string, limit int, offset int64) ([]*model.Booking, int64, error)
	Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Booking, error)
	Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, req *model.StatusUpdate) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	locker    *lock.Locker
	providers availability.ProviderSource
	services  availability.ServiceSource
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	locker *lock.Locker,
	providers availability.ProviderSource,
	services availability.ServiceSource,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		locker:    locker,
		providers: providers,
		services:  services,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create reserves a slot. The request is re-validated under the
// provider:service:date lock, and the overlap count and insert run in one
// transaction, so capacity can never be exceeded.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		return nil, validationError("Invalid booking request", err)
	}

	provider, svc, err := availability.Load(ctx, s.providers, s.services, req.ProviderID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	start, end, err := s.resolveSlot(provider, svc, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	lease, err := s.locker.Acquire(ctx, lock.Key(req.ProviderID, req.ServiceID, req.Date))
	if err != nil {
		return nil, s.mapError(err, "", "Failed to acquire booking lock")
	}
	defer lease.Release()

	// Once the lock is held the reservation runs to commit or rejection,
	// bounded by the lock TTL.
	ctx, cancel := s.commitContext(ctx)
	defer cancel()

	if err := availability.CheckStart(svc, start, s.now()); err != nil {
		return nil, err
	}

	status := model.StatusPending
	if provider.AutoAccept {
		status = model.StatusConfirmed
	}
	booking := &model.Booking{
		ProviderID:    req.ProviderID,
		ServiceID:     req.ServiceID,
		CustomerID:    req.CustomerID,
		BookingDate:   req.Date,
		StartTime:     start.UTC(),
		EndTime:       end.UTC(),
		Status:        status,
		PaymentStatus: model.PaymentUnpaid,
		PriceCents:    svc.PriceCents,
		Currency:      svc.Currency,
		Customer:      sanitizer.NormalizeCustomer(req.Customer, locale.DetectRegion(provider.TimeZone)),
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		taken, err := s.repo.CountOverlapping(txCtx, booking.ProviderID, booking.ServiceID, booking.StartTime, booking.EndTime, "")
		if err != nil {
			return err
		}
		if taken >= int64(svc.MaxCapacity) {
			return slotConflict(booking.StartTime, booking.EndTime, svc.MaxCapacity)
		}
		if err := lease.Fence(txCtx); err != nil {
			return err
		}
		return s.repo.Create(txCtx, booking)
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeSlotConflict) {
			s.cfg.Log.Info("Booking rejected, slot full",
				"provider_id", booking.ProviderID,
				"service_id", booking.ServiceID,
				"start_time", booking.StartTime,
			)
			return nil, err
		}
		return nil, s.mapError(commitFailure(ctx, err), "", "Failed to create booking")
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"provider_id", booking.ProviderID,
		"service_id", booking.ServiceID,
		"start_time", booking.StartTime,
		"status", booking.Status,
	)
	s.publish(context.WithoutCancel(ctx), model.EventBookingCreated, booking, nil)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.read(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) ListByProvider(ctx context.Context, providerID, startDate, endDate string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if providerID == "" {
		return nil, 0, apperrors.InvalidInput("Provider ID cannot be empty")
	}
	if startDate != "" && endDate != "" && endDate < startDate {
		return nil, 0, apperrors.InvalidInput("end_date must not be before start_date")
	}

	policy := s.readPolicy()
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = mongotx.WithRetry(ctx, policy, mongotx.IsTransient, func(ctx context.Context) (int64, error) {
			return s.repo.CountByProvider(ctx, providerID, startDate, endDate)
		})
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = mongotx.WithRetry(ctx, policy, mongotx.IsTransient, func(ctx context.Context) ([]*model.Booking, error) {
			return s.repo.FindByProvider(ctx, providerID, startDate, endDate, limit, offset)
		})
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, s.mapError(errCount, "", "Failed to count bookings")
	}
	if errFind != nil {
		return nil, 0, s.mapError(errFind, "", "Failed to list bookings")
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	s.cfg.Log.Debug("Booking list completed",
		"provider_id", providerID,
		"count", len(bookings),
		"total_count", count,
	)
	return bookings, count, nil
}

// Reschedule moves an active booking in one write. Both the old and the new
// lock keys are held, and on conflict the booking is left untouched.
func (s *bookingService) Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Booking, error) {
	if err := s.validator.ValidateReschedule(req); err != nil {
		return nil, validationError("Invalid reschedule request", err)
	}

	existing, err := s.read(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve booking")
	}
	if !existing.Status.IsActive() {
		return nil, invalidTransition(existing.Status, "", "Only pending or confirmed bookings can be rescheduled")
	}

	provider, svc, err := availability.Load(ctx, s.providers, s.services, existing.ProviderID, existing.ServiceID)
	if err != nil {
		return nil, err
	}

	start, end, err := s.resolveSlot(provider, svc, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if start.Equal(existing.StartTime) && end.Equal(existing.EndTime) {
		return existing, nil
	}

	lease, err := s.locker.Acquire(ctx,
		lock.Key(existing.ProviderID, existing.ServiceID, existing.BookingDate),
		lock.Key(existing.ProviderID, existing.ServiceID, req.Date),
	)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to acquire booking lock")
	}
	defer lease.Release()

	ctx, cancel := s.commitContext(ctx)
	defer cancel()

	if err := availability.CheckStart(svc, start, s.now()); err != nil {
		return nil, err
	}

	var updated *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if !current.Status.IsActive() {
			return invalidTransition(current.Status, "", "Only pending or confirmed bookings can be rescheduled")
		}

		taken, err := s.repo.CountOverlapping(txCtx, current.ProviderID, current.ServiceID, start.UTC(), end.UTC(), id)
		if err != nil {
			return err
		}
		if taken >= int64(svc.MaxCapacity) {
			return slotConflict(start.UTC(), end.UTC(), svc.MaxCapacity)
		}
		if err := lease.Fence(txCtx); err != nil {
			return err
		}

		updated, err = s.repo.UpdateSlot(txCtx, id, req.Date, start.UTC(), end.UTC())
		return err
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, s.mapError(commitFailure(ctx, err), id, "Failed to reschedule booking")
	}

	s.cfg.Log.Info("Booking rescheduled",
		"id", id,
		"previous_start", existing.StartTime,
		"start_time", updated.StartTime,
	)
	s.publish(context.WithoutCancel(ctx), model.EventBookingRescheduled, updated, func(e *model.BookingEvent) {
		e.PreviousStart = &existing.StartTime
		e.PreviousEnd = &existing.EndTime
	})
	return updated, nil
}

// Cancel frees the booking's capacity immediately.
func (s *bookingService) Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error) {
	req.Reason = sanitizer.NormalizeNotes(req.Reason)
	if err := s.validator.ValidateCancel(req); err != nil {
		return nil, validationError("A cancellation reason is required", err)
	}

	existing, err := s.read(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve booking")
	}
	if !existing.Status.CanTransitionTo(model.StatusCancelled) {
		return nil, invalidTransition(existing.Status, model.StatusCancelled, "Booking can no longer be cancelled")
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	if notice := s.cfg.CancellationMinNotice; notice > 0 && existing.StartTime.Sub(now) < notice {
		return nil, apperrors.PolicyViolation(apperrors.RuleCancellationWindow,
			fmt.Sprintf("Bookings must be cancelled at least %s before they start", notice),
			map[string]any{"start_time": existing.StartTime, "min_notice": notice.String()},
		)
	}

	cancelled, err := s.repo.Cancel(ctx, id, existing.Status, req.Reason, now)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to cancel booking")
	}

	s.cfg.Log.Info("Booking cancelled", "id", id, "previous_status", existing.Status)
	s.publish(context.WithoutCancel(ctx), model.EventBookingCancelled, cancelled, func(e *model.BookingEvent) {
		e.PreviousStatus = existing.Status
		e.Reason = req.Reason
	})
	return cancelled, nil
}

// UpdateStatus applies an administrative transition. Cancellation goes
// through Cancel so that a reason is always recorded.
func (s *bookingService) UpdateStatus(ctx context.Context, id string, req *model.StatusUpdate) (*model.Booking, error) {
	if err := s.validator.ValidateStatusUpdate(req); err != nil {
		return nil, validationError("Invalid status update", err)
	}

	existing, err := s.read(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve booking")
	}
	if !existing.Status.CanTransitionTo(req.Status) {
		return nil, invalidTransition(existing.Status, req.Status,
			fmt.Sprintf("Cannot move booking from %s to %s", existing.Status, req.Status))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, existing.Status, req.Status)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to update booking status")
	}

	s.cfg.Log.Info("Booking status updated", "id", id, "from", existing.Status, "to", updated.Status)
	s.publish(context.WithoutCancel(ctx), model.EventBookingStatusChanged, updated, func(e *model.BookingEvent) {
		e.PreviousStatus = existing.Status
	})
	return updated, nil
}

// --- Helpers ---

func (s *bookingService) readPolicy() mongotx.RetryPolicy {
	return mongotx.RetryPolicy{Attempts: s.cfg.ReadRetryAttempts, Backoff: s.cfg.ReadRetryBackoff}
}

func (s *bookingService) read(ctx context.Context, id string) (*model.Booking, error) {
	return mongotx.WithRetry(ctx, s.readPolicy(), mongotx.IsTransient, func(ctx context.Context) (*model.Booking, error) {
		return s.repo.FindByID(ctx, id)
	})
}

// resolveSlot turns provider-local clock times into instants and checks that
// they name a slot the provider offers for svc within its booking window.
func (s *bookingService) resolveSlot(provider *model.Provider, svc *model.Service, date, startClock, endClock string) (time.Time, time.Time, error) {
	loc, err := provider.Location()
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Internal("Provider time zone is invalid", err)
	}
	start, err := calendar.ClockOn(date, startClock, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput(err.Error())
	}
	end, err := calendar.ClockOn(date, endClock, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput(err.Error())
	}

	if !end.Equal(start.Add(svc.Duration())) {
		return time.Time{}, time.Time{}, apperrors.PolicyViolation(apperrors.RuleSlotNotOffered,
			fmt.Sprintf("Requested interval must last exactly %d minutes", svc.DurationMinutes),
			map[string]any{"duration_minutes": svc.DurationMinutes},
		)
	}

	hours, open, err := calendar.ResolveDay(provider, date)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput(err.Error())
	}
	if !open || !availability.IsOffered(calendar.GenerateSlots(hours, svc.DurationMinutes), start, end) {
		return time.Time{}, time.Time{}, apperrors.PolicyViolation(apperrors.RuleSlotNotOffered,
			"Requested interval is not an offered slot",
			map[string]any{"date": date, "start_time": startClock, "end_time": endClock},
		)
	}

	if err := availability.CheckStart(svc, start, s.now()); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking, decorate func(*model.BookingEvent)) {
	event := model.BookingEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: s.now().UTC(),
		BookingID:  b.ID,
		ProviderID: b.ProviderID,
		ServiceID:  b.ServiceID,
		CustomerID: b.CustomerID,
		Status:     b.Status,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
	}
	if decorate != nil {
		decorate(&event)
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event", "type", eventType, "booking_id", b.ID, "error", err)
	}
}

func (s *bookingService) mapError(err error, id, message string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingserrors.ErrStatusChanged):
		return apperrors.Conflict("Booking was modified by another request; reload and retry")
	case errors.Is(err, bookingserrors.ErrLockTimeout):
		return apperrors.TransientStore("Slot is busy, retry shortly", err)
	case errors.Is(err, bookingserrors.ErrLockLost):
		s.cfg.Log.Warn("Booking lock expired before commit", "id", id, "error", err)
		return apperrors.TransientStore("Booking lock expired before commit, retry shortly", err)
	case errors.Is(err, errCommitDeadline):
		s.cfg.Log.Warn("Booking commit outlived the lock TTL", "id", id, "error", err)
		return apperrors.TransientStore("Booking commit took too long, retry shortly", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Request was cancelled before the booking lock was acquired")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return mongotx.StoreError(message, err)
}

var errCommitDeadline = errors.New("booking commit exceeded lock ttl")

// commitContext detaches the write from request cancellation and bounds it
// by the lock TTL, so the lock cannot expire while the commit is in flight.
func (s *bookingService) commitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeoutCause(context.WithoutCancel(ctx), s.locker.TTL(), errCommitDeadline)
}

func commitFailure(ctx context.Context, err error) error {
	if errors.Is(context.Cause(ctx), errCommitDeadline) {
		return fmt.Errorf("%w: %w", errCommitDeadline, err)
	}
	return err
}

func slotConflict(start, end time.Time, capacity int) error {
	return apperrors.SlotConflict("Requested slot is no longer available", map[string]any{
		"conflicting_start": start,
		"conflicting_end":   end,
		"max_capacity":      capacity,
	})
}

func invalidTransition(from, to model.BookingStatus, message string) error {
	details := map[string]any{
		"from":    from,
		"allowed": from.AllowedTransitions(),
	}
	if to != "" {
		details["to"] = to
	}
	return apperrors.PolicyViolation(apperrors.RuleInvalidTransition, message, details)
}

func validationError(message string, err error) error {
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
