package handler

import (
	"net/http"

	"washbook/internal/stats/service"
	httputil "washbook/pkg/http"
	"washbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type StatsHandler struct {
	service service.StatsService
	log     *logger.Logger
}

func NewStatsHandler(service service.StatsService, log *logger.Logger) *StatsHandler {
	return &StatsHandler{service: service, log: log}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params, err := httputil.RequireQuery(r, "provider_id", "start_date", "end_date")
	if err == nil {
		_, err = httputil.ParseDate("start_date", params["start_date"])
	}
	if err == nil {
		_, err = httputil.ParseDate("end_date", params["end_date"])
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	stats, err := h.service.Stats(r.Context(), params["provider_id"], params["start_date"], params["end_date"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StatsHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
	}
}

func (h *StatsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/stats", h.Get)
}
