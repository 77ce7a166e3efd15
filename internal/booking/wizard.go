// Package booking implements the three-step booking flow used by clients to
// assemble an appointment request.
package booking

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/types"
)

// Step is a position in the wizard.
type Step int

const (
	StepSelection Step = 1
	StepSchedule  Step = 2
	StepConfirm   Step = 3
)

func (s Step) String() string {
	switch s {
	case StepSelection:
		return "selection"
	case StepSchedule:
		return "schedule"
	case StepConfirm:
		return "confirm"
	default:
		return "unknown"
	}
}

// Draft holds the choices made so far.
type Draft struct {
	ServiceID string `json:"serviceId,omitempty"`
	DentistID string `json:"dentistId,omitempty"`
	Date      string `json:"appointmentDate,omitempty"`
	Time      string `json:"appointmentTime,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Wizard is an immutable booking session. Every action returns a new value
// and leaves the receiver untouched, so a rejected action has no effect.
type Wizard struct {
	Step  Step  `json:"step"`
	Draft Draft `json:"draft"`
}

// Creator books an appointment from a completed draft.
type Creator interface {
	Create(ctx context.Context, actor types.User, req types.AppointmentRequest) (types.Appointment, error)
}

// New starts a wizard at the first step.
func New() Wizard {
	return Wizard{Step: StepSelection}
}

// Restore rebuilds a wizard from client-held state.
func Restore(step Step, draft Draft) (Wizard, error) {
	if step < StepSelection || step > StepConfirm {
		return Wizard{}, apperr.Validation("step", "must be 1, 2, or 3")
	}
	return Wizard{Step: step, Draft: draft}, nil
}

func (w Wizard) SelectService(id string) (Wizard, error) {
	if err := w.requireStep(StepSelection); err != nil {
		return w, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return w, apperr.Validation("serviceId", "please select a service")
	}
	w.Draft.ServiceID = id
	return w, nil
}

func (w Wizard) SelectDentist(id string) (Wizard, error) {
	if err := w.requireStep(StepSelection); err != nil {
		return w, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return w, apperr.Validation("dentistId", "please select a dentist")
	}
	w.Draft.DentistID = id
	return w, nil
}

// SelectDate picks a calendar date no earlier than today.
func (w Wizard) SelectDate(date string, today time.Time) (Wizard, error) {
	if err := w.requireStep(StepSchedule); err != nil {
		return w, err
	}
	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return w, apperr.Validation("appointmentDate", "must be a date in YYYY-MM-DD format")
	}
	if day.Format(time.DateOnly) < today.Format(time.DateOnly) {
		return w, apperr.Validation("appointmentDate", "cannot be in the past")
	}
	w.Draft.Date = date
	return w, nil
}

// SelectTime picks one of the offered candidate slots.
func (w Wizard) SelectTime(slot string, candidates []string) (Wizard, error) {
	if err := w.requireStep(StepSchedule); err != nil {
		return w, err
	}
	if w.Draft.Date == "" {
		return w, apperr.Validation("appointmentDate", "please select a date first")
	}
	if !slices.Contains(candidates, slot) {
		return w, apperr.Validation("appointmentTime", "is not an available time")
	}
	w.Draft.Time = slot
	return w, nil
}

func (w Wizard) SetNotes(notes string) (Wizard, error) {
	if err := w.requireStep(StepConfirm); err != nil {
		return w, err
	}
	w.Draft.Notes = strings.TrimSpace(notes)
	return w, nil
}

// Next advances one step once the current step is complete.
func (w Wizard) Next() (Wizard, error) {
	switch w.Step {
	case StepSelection:
		if w.Draft.ServiceID == "" || w.Draft.DentistID == "" {
			return w, apperr.Validation(missing(map[string]string{
				"serviceId": w.Draft.ServiceID,
				"dentistId": w.Draft.DentistID,
			}, "serviceId", "dentistId"), "please select both a service and a dentist")
		}
	case StepSchedule:
		if w.Draft.Date == "" || w.Draft.Time == "" {
			return w, apperr.Validation(missing(map[string]string{
				"appointmentDate": w.Draft.Date,
				"appointmentTime": w.Draft.Time,
			}, "appointmentDate", "appointmentTime"), "please select both a date and time")
		}
	default:
		return w, apperr.Validation("step", "already at the last step")
	}
	w.Step++
	return w, nil
}

// Back returns to the previous step keeping every choice.
func (w Wizard) Back() (Wizard, error) {
	if w.Step <= StepSelection {
		return w, apperr.Validation("step", "already at the first step")
	}
	w.Step--
	return w, nil
}

// Request converts the draft into a booking request.
func (w Wizard) Request() types.AppointmentRequest {
	return types.AppointmentRequest{
		ServiceID: w.Draft.ServiceID,
		DentistID: w.Draft.DentistID,
		Date:      w.Draft.Date,
		Time:      w.Draft.Time,
		Notes:     w.Draft.Notes,
	}
}

// Submit books the appointment from the confirm step. On success the wizard
// is reset; on failure it is returned unchanged so the client can retry.
func (w Wizard) Submit(ctx context.Context, creator Creator, actor types.User) (Wizard, types.Appointment, error) {
	if err := w.requireStep(StepConfirm); err != nil {
		return w, types.Appointment{}, err
	}
	appointment, err := creator.Create(ctx, actor, w.Request())
	if err != nil {
		return w, types.Appointment{}, err
	}
	return New(), appointment, nil
}

func (w Wizard) requireStep(step Step) error {
	if w.Step != step {
		return apperr.Validation("step", "action is not available at the "+w.Step.String()+" step")
	}
	return nil
}

func missing(values map[string]string, order ...string) string {
	var fields []string
	for _, name := range order {
		if values[name] == "" {
			fields = append(fields, name)
		}
	}
	return strings.Join(fields, ",")
}
