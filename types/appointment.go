package types

import "time"

// Status is the lifecycle state of an appointment.
type Status string

// Supported appointment statuses.
const (
	// StatusScheduled is the initial state of every new appointment.
	StatusScheduled Status = "scheduled"

	// StatusConfirmed marks an administrative acknowledgement.
	StatusConfirmed Status = "confirmed"

	// StatusCompleted is terminal and set explicitly by an administrator.
	StatusCompleted Status = "completed"

	// StatusCancelled is terminal and reachable by the owner or an administrator.
	StatusCancelled Status = "cancelled"

	// StatusNoShow is terminal and set by an administrator only.
	StatusNoShow Status = "no_show"
)

var transitions = map[Status][]Status{
	StatusScheduled: {StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is permitted from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Reschedulable reports whether date and time may still change in state s.
func (s Status) Reschedulable() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

// CanTransitionTo reports whether next is a legal edge out of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment is a booking of a service with a dentist at a date and time.
// Patient, dentist, and service details are copied at booking time and are
// not affected by later catalog edits.
type Appointment struct {
	// ID is the unique identifier of the appointment.
	ID string `json:"id" db:"id"`

	// UserID identifies the owning patient. Immutable after creation.
	UserID string `json:"userId" db:"user_id"`

	// Snapshot of the owner at booking time.
	UserName  string `json:"userName" db:"user_name"`
	UserEmail string `json:"userEmail" db:"user_email"`
	UserPhone string `json:"userPhone" db:"user_phone"`

	// DentistID identifies the dentist. Immutable after creation.
	DentistID string `json:"dentistId" db:"dentist_id"`

	// Snapshot of the dentist at booking time.
	DentistName           string `json:"dentistName" db:"dentist_name"`
	DentistPhone          string `json:"dentistPhone" db:"dentist_phone"`
	DentistSpecialization string `json:"dentistSpecialization" db:"dentist_specialization"`

	// ServiceID identifies the booked service. Immutable after creation.
	ServiceID string `json:"serviceId" db:"service_id"`

	// Snapshot of the service at booking time.
	ServiceName        string `json:"serviceName" db:"service_name"`
	ServicePrice       string `json:"servicePrice" db:"service_price"`
	ServiceDuration    int    `json:"serviceDuration" db:"service_duration"`
	ServiceDescription string `json:"serviceDescription" db:"service_description"`

	// AppointmentDate is a plain calendar date, "YYYY-MM-DD".
	AppointmentDate string `json:"appointmentDate" db:"appointment_date"`

	// AppointmentTime is a time of day, "HH:MM".
	AppointmentTime string `json:"appointmentTime" db:"appointment_time"`

	// Status is the lifecycle state.
	Status Status `json:"status" db:"status"`

	// Notes is optional free text from the patient.
	Notes string `json:"notes,omitempty" db:"notes"`

	// TotalCost defaults to the service price at booking time.
	TotalCost string `json:"totalCost,omitempty" db:"total_cost"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// AppointmentRequest is what a patient submits to book an appointment.
// The owner is never part of the request; it comes from the acting user.
type AppointmentRequest struct {
	ServiceID string `json:"serviceId"`
	DentistID string `json:"dentistId"`
	Date      string `json:"appointmentDate"`
	Time      string `json:"appointmentTime"`
	Notes     string `json:"notes,omitempty"`
}

// AppointmentPatch is a partial update. Nil pointers are left unchanged.
// The reference fields exist only so attempts to change them can be rejected.
type AppointmentPatch struct {
	UserID    *string `json:"userId,omitempty"`
	DentistID *string `json:"dentistId,omitempty"`
	ServiceID *string `json:"serviceId,omitempty"`
	Status    *Status `json:"status,omitempty"`
	Date      *string `json:"appointmentDate,omitempty"`
	Time      *string `json:"appointmentTime,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	TotalCost *string `json:"totalCost,omitempty"`
}

// Scope narrows an appointment listing relative to today.
type Scope string

const (
	ScopeAll      Scope = ""
	ScopeUpcoming Scope = "upcoming"
	ScopePast     Scope = "past"
)

// AppointmentFilter selects appointments at the storage layer.
// Empty fields do not filter.
type AppointmentFilter struct {
	UserID    string
	DentistID string
	Date      string
}

// AppointmentEvent is published after every persisted appointment change.
type AppointmentEvent struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	ActorID       string      `json:"actorId"`
	AppointmentID string      `json:"appointmentId"`
	FromStatus    Status      `json:"fromStatus,omitempty"`
	ToStatus      Status      `json:"toStatus,omitempty"`
	Appointment   Appointment `json:"appointment"`
	OccurredAt    time.Time   `json:"occurredAt"`
}

// Appointment event types.
const (
	EventAppointmentCreated       = "appointment.created"
	EventAppointmentRescheduled   = "appointment.rescheduled"
	EventAppointmentStatusChanged = "appointment.status_changed"
	EventAppointmentUpdated       = "appointment.updated"
	EventAppointmentDeleted       = "appointment.deleted"
)
