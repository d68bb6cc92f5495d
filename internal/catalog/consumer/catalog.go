package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	calendarservice "washbook/internal/calendar/service"
	catalogerrors "washbook/internal/catalog/errors"
	catalogservice "washbook/internal/catalog/service"
	apperrors "washbook/pkg/errors"
	"washbook/pkg/kafka"
	"washbook/pkg/logger"
	"washbook/pkg/model"
)

// CatalogSync applies catalog events to the provider and service read models.
type CatalogSync struct {
	calendar calendarservice.CalendarService
	catalog  catalogservice.CatalogService
	log      *logger.Logger
}

func NewCatalogSync(calendar calendarservice.CalendarService, catalog catalogservice.CatalogService, log *logger.Logger) *CatalogSync {
	return &CatalogSync{
		calendar: calendar,
		catalog:  catalog,
		log:      log,
	}
}

// Handle is a kafka.MessageHandler. Undecodable or invalid events are
// permanent failures; store outages are transient and retried.
func (c *CatalogSync) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.CatalogEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode catalog event", err)
	}
	if event.Type == "" {
		event.Type = msg.GetEventType()
	}

	switch event.Type {
	case model.EventProviderUpserted:
		var profile model.ProviderProfile
		if err := json.Unmarshal(event.Payload, &profile); err != nil {
			return kafka.NewPermanentError("failed to decode provider payload", err)
		}
		if _, err := c.calendar.EnsureProvider(ctx, &profile); err != nil {
			return classify("provider upsert failed", err)
		}
		c.log.Debug("Provider synced from catalog", "provider_id", profile.ID)

	case model.EventServiceUpserted:
		var svc model.Service
		if err := json.Unmarshal(event.Payload, &svc); err != nil {
			return kafka.NewPermanentError("failed to decode service payload", err)
		}
		if err := c.catalog.UpsertService(ctx, &svc); err != nil {
			return classify("service upsert failed", err)
		}
		c.log.Debug("Service synced from catalog", "service_id", svc.ID)

	default:
		c.log.Warn("Skipping unknown catalog event", "type", event.Type, "key", msg.Key)
		return kafka.NewPermanentError(fmt.Sprintf("event type %q", event.Type), catalogerrors.ErrUnknownEvent)
	}
	return nil
}

func classify(message string, err error) error {
	if apperrors.HasCode(err, apperrors.CodeTransientStore) {
		return kafka.NewTransientError(message, err)
	}
	return kafka.NewPermanentError(message, err)
}
