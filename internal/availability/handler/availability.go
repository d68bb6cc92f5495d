package handler

import (
	"context"
	"net/http"

	httputil "washbook/pkg/http"
	"washbook/pkg/logger"
	"washbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityResolver interface {
	Resolve(ctx context.Context, providerID, serviceID, date string) (*model.Availability, error)
}

type AvailabilityHandler struct {
	resolver AvailabilityResolver
	log      *logger.Logger
}

func NewAvailabilityHandler(resolver AvailabilityResolver, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		resolver: resolver,
		log:      log,
	}
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params, err := httputil.RequireQuery(r, "provider_id", "service_id", "date")
	if err == nil {
		_, err = httputil.ParseDate("date", params["date"])
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	availability, err := h.resolver.Resolve(r.Context(), params["provider_id"], params["service_id"], params["date"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability", h.Get)
}
