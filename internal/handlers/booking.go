package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/internal/booking"
	"github.com/venusseo127/dentalApp/internal/services"
	"github.com/venusseo127/dentalApp/types"
)

// Wizard actions accepted by POST /booking/wizard.
const (
	actionSelectService = "select_service"
	actionSelectDentist = "select_dentist"
	actionSelectDate    = "select_date"
	actionSelectTime    = "select_time"
	actionSetNotes      = "set_notes"
	actionNext          = "next"
	actionBack          = "back"
)

// BookingHandler drives the booking wizard. Wizard state lives with the
// client and is sent back on every call.
type BookingHandler struct {
	appointments *services.AppointmentService
	slots        booking.SlotProvider
	now          func() time.Time
}

func NewBookingHandler(appointments *services.AppointmentService, slots booking.SlotProvider, now func() time.Time) *BookingHandler {
	if slots == nil {
		slots = booking.FixedSlots(booking.DefaultSlots)
	}
	if now == nil {
		now = time.Now
	}
	return &BookingHandler{appointments: appointments, slots: slots, now: now}
}

// BookingRouter registers /booking routes.
func BookingRouter(r chi.Router, handler *BookingHandler, actor func(http.Handler) http.Handler) {
	r.Get("/slots", handler.Slots)
	r.Post("/wizard", handler.Apply)
	r.With(actor).Post("/submit", handler.Submit)
}

type WizardState struct {
	Step  booking.Step  `json:"step"`
	Draft booking.Draft `json:"draft"`
}

type WizardActionRequest struct {
	Wizard *WizardState `json:"wizard"`
	Action string       `json:"action"`
	Value  string       `json:"value"`
}

type WizardResponse struct {
	Wizard booking.Wizard `json:"wizard"`
	Slots  []string       `json:"slots,omitempty"`
}

type WizardErrorResponse struct {
	ErrorResponse
	Wizard booking.Wizard `json:"wizard"`
}

type SubmitRequest struct {
	Wizard WizardState `json:"wizard"`
}

type SubmitResponse struct {
	Appointment types.Appointment `json:"appointment"`
	Wizard      booking.Wizard    `json:"wizard"`
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	slots, err := h.slots.Slots(r.Context(), query.Get("dentistId"), query.Get("date"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"slots": slots})
}

// Apply runs one wizard action. A rejected action returns 400 with the
// unchanged wizard.
func (h *BookingHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req WizardActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}

	wizard := booking.New()
	if req.Wizard != nil {
		restored, err := booking.Restore(req.Wizard.Step, req.Wizard.Draft)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		wizard = restored
	}

	next, err := h.apply(r, wizard, req.Action, req.Value)
	if err != nil {
		h.writeWizardError(w, r, wizard, err)
		return
	}

	resp := WizardResponse{Wizard: next}
	if next.Step == booking.StepSchedule && next.Draft.Date != "" {
		slots, err := h.slots.Slots(r.Context(), next.Draft.DentistID, next.Draft.Date)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		resp.Slots = slots
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) apply(r *http.Request, wizard booking.Wizard, action, value string) (booking.Wizard, error) {
	switch action {
	case actionSelectService:
		return wizard.SelectService(value)
	case actionSelectDentist:
		return wizard.SelectDentist(value)
	case actionSelectDate:
		return wizard.SelectDate(value, h.now())
	case actionSelectTime:
		candidates, err := h.slots.Slots(r.Context(), wizard.Draft.DentistID, wizard.Draft.Date)
		if err != nil {
			return wizard, err
		}
		return wizard.SelectTime(value, candidates)
	case actionSetNotes:
		return wizard.SetNotes(value)
	case actionNext:
		return wizard.Next()
	case actionBack:
		return wizard.Back()
	default:
		return wizard, apperr.Validation("action", "unknown wizard action")
	}
}

// Submit books the appointment for the authenticated actor.
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var req SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	wizard, err := booking.Restore(req.Wizard.Step, req.Wizard.Draft)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	reset, appointment, err := wizard.Submit(r.Context(), h.appointments, actor)
	if err != nil {
		h.writeWizardError(w, r, wizard, err)
		return
	}
	writeJSON(w, http.StatusCreated, SubmitResponse{Appointment: appointment, Wizard: reset})
}

func (h *BookingHandler) writeWizardError(w http.ResponseWriter, r *http.Request, wizard booking.Wizard, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, status, WizardErrorResponse{ErrorResponse: body, Wizard: wizard})
}
