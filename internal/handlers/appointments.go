package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/internal/services"
	"github.com/venusseo127/dentalApp/types"
)

// AppointmentHandler exposes the appointment lifecycle.
type AppointmentHandler struct {
	appointments *services.AppointmentService
}

func NewAppointmentHandler(appointments *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

// AppointmentRouter registers /appointments routes. Every route requires an
// authenticated actor.
func AppointmentRouter(r chi.Router, handler *AppointmentHandler, actor func(http.Handler) http.Handler) {
	r.Use(actor)
	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Route("/{appointmentID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.With(requireAdmin).Delete("/", handler.Delete)
		r.Post("/reschedule", handler.Reschedule)
		r.Post("/cancel", handler.Cancel)
	})
}

type RescheduleRequest struct {
	Date    string `json:"appointmentDate"`
	Time    string `json:"appointmentTime"`
	Confirm bool   `json:"confirm"`
}

type CancelRequest struct {
	Confirm bool `json:"confirm"`
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	query := r.URL.Query()
	appointments, err := h.appointments.List(r.Context(), actor, services.ListQuery{
		Scope:     types.Scope(query.Get("scope")),
		DentistID: query.Get("dentistId"),
		Date:      query.Get("date"),
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, appointments)
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var req types.AppointmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	appointment, err := h.appointments.Create(r.Context(), actor, req)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, appointment)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	appointment, err := h.appointments.Get(r.Context(), actor, chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var patch types.AppointmentPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeAppError(w, r, err)
		return
	}
	appointment, err := h.appointments.Update(r.Context(), actor, chi.URLParam(r, "appointmentID"), patch)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}

func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var req RescheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	if !req.Confirm {
		writeAppError(w, r, apperr.Validation("confirm", "please confirm the new date and time"))
		return
	}
	appointment, err := h.appointments.Reschedule(r.Context(), actor, chi.URLParam(r, "appointmentID"), req.Date, req.Time)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var req CancelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	if !req.Confirm {
		writeAppError(w, r, apperr.Validation("confirm", "please confirm the cancellation"))
		return
	}
	appointment, err := h.appointments.Cancel(r.Context(), actor, chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	if err := h.appointments.Delete(r.Context(), actor, chi.URLParam(r, "appointmentID")); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
