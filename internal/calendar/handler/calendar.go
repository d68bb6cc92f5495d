package handler

import (
	"net/http"

	"washbook/internal/calendar/service"
	httputil "washbook/pkg/http"
	"washbook/pkg/logger"
	"washbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CalendarHandler struct {
	service service.CalendarService
	log     *logger.Logger
}

func NewCalendarHandler(service service.CalendarService, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		service: service,
		log:     log,
	}
}

func (h *CalendarHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := h.service.GetCalendar(r.Context(), ps.ByName("id"))
	h.respond(w, "Get", view, err)
}

func (h *CalendarHandler) UpdateWeekly(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.WeeklyHoursUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.respond(w, "UpdateWeekly", nil, err)
		return
	}

	view, err := h.service.UpdateWeeklyHours(r.Context(), ps.ByName("id"), &update)
	h.respond(w, "UpdateWeekly", view, err)
}

func (h *CalendarHandler) SetOverride(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var override model.HoursOverride
	if err := httputil.DecodeJSON(r, &override); err != nil {
		h.respond(w, "SetOverride", nil, err)
		return
	}

	view, err := h.service.SetOverride(r.Context(), ps.ByName("id"), ps.ByName("date"), &override)
	h.respond(w, "SetOverride", view, err)
}

func (h *CalendarHandler) DeleteOverride(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := h.service.DeleteOverride(r.Context(), ps.ByName("id"), ps.ByName("date"))
	h.respond(w, "DeleteOverride", view, err)
}

func (h *CalendarHandler) respond(w http.ResponseWriter, handler string, data any, err error) {
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
		}
		return
	}
	if writeErr := httputil.WriteSuccess(w, data); writeErr != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", writeErr)
	}
}

func (h *CalendarHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/providers/:id/calendar", h.Get)
	router.PUT("/api/v1/providers/:id/calendar/weekly", h.UpdateWeekly)
	router.PUT("/api/v1/providers/:id/calendar/overrides/:date", h.SetOverride)
	router.DELETE("/api/v1/providers/:id/calendar/overrides/:date", h.DeleteOverride)
}
