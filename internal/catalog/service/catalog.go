package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	catalogerrors "washbook/internal/catalog/errors"
	"washbook/internal/catalog/repository"
	"washbook/pkg/config"
	mongotx "washbook/pkg/db/mongo"
	apperrors "washbook/pkg/errors"
	"washbook/pkg/model"
	"washbook/pkg/sanitizer"
)

type CatalogService interface {
	// GetService returns an active service. Inactive services are not bookable
	// and read as not found.
	GetService(ctx context.Context, serviceID string) (*model.Service, error)
	UpsertService(ctx context.Context, svc *model.Service) error
}

type catalogService struct {
	repo     repository.ServiceRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewCatalogService(repo repository.ServiceRepository, cfg *config.Config) CatalogService {
	v, err := model.NewValidate()
	if err != nil {
		cfg.Log.Fatal("Failed to initialize catalog validator", "error", err)
	}
	return &catalogService{
		repo:     repo,
		validate: v,
		cfg:      cfg,
	}
}

func (s *catalogService) GetService(ctx context.Context, serviceID string) (*model.Service, error) {
	if serviceID == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	policy := mongotx.RetryPolicy{Attempts: s.cfg.ReadRetryAttempts, Backoff: s.cfg.ReadRetryBackoff}
	svc, err := mongotx.WithRetry(ctx, policy, mongotx.IsTransient,
		func(ctx context.Context) (*model.Service, error) {
			return s.repo.FindByID(ctx, serviceID)
		})
	if err != nil {
		if errors.Is(err, catalogerrors.ErrServiceNotFound) {
			return nil, apperrors.NotFoundWithID("Service", serviceID)
		}
		s.cfg.Log.Error("Failed to load service", "service_id", serviceID, "error", err)
		return nil, mongotx.StoreError("Failed to load service", err)
	}
	if !svc.Active {
		return nil, apperrors.NotFoundWithID("Service", serviceID)
	}
	return svc, nil
}

func (s *catalogService) UpsertService(ctx context.Context, svc *model.Service) error {
	svc.Name = sanitizer.NormalizeName(svc.Name)
	if err := model.CheckStruct(s.validate, svc); err != nil {
		var verrs model.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.Validation("Invalid service", verrs.Details())
		}
		return apperrors.Validation("Invalid service", map[string]any{"error": err.Error()})
	}
	if minH, maxH := svc.MinAdvanceBookingHours, svc.MaxAdvanceBookingHours; minH != nil && maxH != nil && *minH > *maxH {
		return apperrors.Validation("Invalid service", map[string]any{
			"error": "min_advance_booking_hours must not exceed max_advance_booking_hours",
		})
	}

	if err := s.repo.Upsert(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to upsert service", "service_id", svc.ID, "error", err)
		return mongotx.StoreError("Failed to upsert service", err)
	}
	s.cfg.Log.Info("Service upserted", "service_id", svc.ID, "provider_id", svc.ProviderID, "active", svc.Active)
	return nil
}
