package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/types"
)

// AppointmentRepository defines persistence operations for appointments.
type AppointmentRepository interface {
	List(ctx context.Context, filter types.AppointmentFilter) ([]types.Appointment, error)
	Get(ctx context.Context, id string) (types.Appointment, error)
	Create(ctx context.Context, appointment types.Appointment) (types.Appointment, error)
	Update(ctx context.Context, appointment types.Appointment) (types.Appointment, error)
	Delete(ctx context.Context, id string) error
	HasConflict(ctx context.Context, dentistID, date, slot, excludeID string) (bool, error)
}

// CatalogLookup resolves the dentist and service referenced by a booking.
type CatalogLookup interface {
	GetDentist(ctx context.Context, id string) (types.Dentist, error)
	GetService(ctx context.Context, id string) (types.Service, error)
}

// AppointmentConfig tunes optional appointment behavior.
type AppointmentConfig struct {
	// PreventDoubleBooking rejects a slot already held for the same dentist.
	PreventDoubleBooking bool

	// Clock returns the current time; defaults to time.Now.
	Clock func() time.Time
}

// ListQuery narrows an appointment listing.
type ListQuery struct {
	Scope     types.Scope
	DentistID string
	Date      string
}

// AppointmentService implements the appointment lifecycle.
type AppointmentService struct {
	repo    AppointmentRepository
	catalog CatalogLookup
	events  EventPublisher
	gate    Gate
	cfg     AppointmentConfig
	logger  *slog.Logger
}

func NewAppointmentService(repo AppointmentRepository, catalog CatalogLookup, events EventPublisher, cfg AppointmentConfig) *AppointmentService {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &AppointmentService{
		repo:    repo,
		catalog: catalog,
		events:  events,
		cfg:     cfg,
		logger:  slog.Default().With(slog.String("component", "appointments")),
	}
}

func (s *AppointmentService) today() string {
	return s.cfg.Clock().Format(dateLayout)
}

// Create books an appointment for the acting user. Dentist and service
// details are copied from the catalog, never from the request.
func (s *AppointmentService) Create(ctx context.Context, actor types.User, req types.AppointmentRequest) (types.Appointment, error) {
	if actor.ID == "" {
		return types.Appointment{}, apperr.Unauthenticated("sign in to book an appointment")
	}
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.DentistID = strings.TrimSpace(req.DentistID)
	if err := requireSelection(req.ServiceID, req.DentistID); err != nil {
		return types.Appointment{}, err
	}
	req.Date, req.Time = strings.TrimSpace(req.Date), strings.TrimSpace(req.Time)
	if err := s.validateSlot(req.Date, req.Time); err != nil {
		return types.Appointment{}, err
	}

	service, err := s.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return types.Appointment{}, offered(err, "serviceId", "service")
	}
	if !service.IsActive {
		return types.Appointment{}, apperr.Validation("serviceId", "service is not offered")
	}
	dentist, err := s.catalog.GetDentist(ctx, req.DentistID)
	if err != nil {
		return types.Appointment{}, offered(err, "dentistId", "dentist")
	}
	if !dentist.IsActive {
		return types.Appointment{}, apperr.Validation("dentistId", "dentist is not offered")
	}

	if err := s.checkConflict(ctx, dentist.ID, req.Date, req.Time, ""); err != nil {
		return types.Appointment{}, err
	}

	appointment := types.Appointment{
		UserID:                actor.ID,
		UserName:              actor.FullName(),
		UserEmail:             actor.Email,
		UserPhone:             actor.Phone,
		DentistID:             dentist.ID,
		DentistName:           dentist.Name,
		DentistPhone:          dentist.Phone,
		DentistSpecialization: dentist.Specialization,
		ServiceID:             service.ID,
		ServiceName:           service.Name,
		ServicePrice:          service.Price,
		ServiceDuration:       service.Duration,
		ServiceDescription:    service.Description,
		AppointmentDate:       req.Date,
		AppointmentTime:       req.Time,
		Status:                types.StatusScheduled,
		Notes:                 strings.TrimSpace(req.Notes),
		TotalCost:             service.Price,
	}

	created, err := s.repo.Create(ctx, appointment)
	if err != nil {
		return types.Appointment{}, apperr.Transient(err)
	}
	s.publish(ctx, types.EventAppointmentCreated, actor, "", created)
	return created, nil
}

// List returns every appointment for administrators and only the actor's own
// appointments for patients.
func (s *AppointmentService) List(ctx context.Context, actor types.User, query ListQuery) ([]types.Appointment, error) {
	if actor.ID == "" || !actor.Role.Valid() {
		return nil, apperr.PermissionDenied("a signed-in user is required")
	}
	switch query.Scope {
	case types.ScopeAll, types.ScopeUpcoming, types.ScopePast:
	default:
		return nil, apperr.Validation("scope", "must be upcoming or past")
	}
	if query.Date != "" && !validDate(query.Date) {
		return nil, apperr.Validation("date", "must be a date in YYYY-MM-DD format")
	}

	filter := types.AppointmentFilter{DentistID: query.DentistID, Date: query.Date}
	if !actor.IsAdmin() {
		filter.UserID = actor.ID
	}

	appointments, err := retryRead(ctx, func(ctx context.Context) ([]types.Appointment, error) {
		return s.repo.List(ctx, filter)
	})
	if err != nil {
		return nil, apperr.Transient(err)
	}
	if query.Scope == types.ScopeAll {
		return appointments, nil
	}

	today := s.today()
	scoped := make([]types.Appointment, 0, len(appointments))
	for _, appointment := range appointments {
		upcoming := appointment.AppointmentDate >= today && !appointment.Status.IsTerminal()
		if upcoming == (query.Scope == types.ScopeUpcoming) {
			scoped = append(scoped, appointment)
		}
	}
	return scoped, nil
}

func (s *AppointmentService) Get(ctx context.Context, actor types.User, id string) (types.Appointment, error) {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return types.Appointment{}, err
	}
	if err := s.gate.authorizeRead(actor, appointment); err != nil {
		return types.Appointment{}, err
	}
	return appointment, nil
}

// UpdateStatus moves an appointment along the status machine. Patients may
// only cancel; every other transition is administrative.
func (s *AppointmentService) UpdateStatus(ctx context.Context, actor types.User, id string, next types.Status) (types.Appointment, error) {
	if !next.Valid() {
		return types.Appointment{}, apperr.Validation("status", "unknown status")
	}
	appointment, err := s.loadForMutation(ctx, actor, id)
	if err != nil {
		return types.Appointment{}, err
	}
	if err := s.checkTransition(actor, appointment.Status, next); err != nil {
		return types.Appointment{}, err
	}

	previous := appointment.Status
	appointment.Status = next
	updated, err := s.repo.Update(ctx, appointment)
	if err != nil {
		return types.Appointment{}, storeErr(err, "appointment")
	}
	s.publish(ctx, types.EventAppointmentStatusChanged, actor, previous, updated)
	return updated, nil
}

// Cancel moves a non-terminal appointment to cancelled.
func (s *AppointmentService) Cancel(ctx context.Context, actor types.User, id string) (types.Appointment, error) {
	return s.UpdateStatus(ctx, actor, id, types.StatusCancelled)
}

// Reschedule changes date and time while the appointment is scheduled or
// confirmed. The status is left unchanged.
func (s *AppointmentService) Reschedule(ctx context.Context, actor types.User, id, date, slot string) (types.Appointment, error) {
	date, slot = strings.TrimSpace(date), strings.TrimSpace(slot)
	if err := s.validateSlot(date, slot); err != nil {
		return types.Appointment{}, err
	}
	appointment, err := s.loadForMutation(ctx, actor, id)
	if err != nil {
		return types.Appointment{}, err
	}
	if !appointment.Status.Reschedulable() {
		return types.Appointment{}, apperr.NotReschedulable(string(appointment.Status))
	}
	if err := s.checkConflict(ctx, appointment.DentistID, date, slot, appointment.ID); err != nil {
		return types.Appointment{}, err
	}

	appointment.AppointmentDate = date
	appointment.AppointmentTime = slot
	updated, err := s.repo.Update(ctx, appointment)
	if err != nil {
		return types.Appointment{}, storeErr(err, "appointment")
	}
	s.publish(ctx, types.EventAppointmentRescheduled, actor, "", updated)
	return updated, nil
}

// Update applies a partial change in a single write. Every rule is checked
// before anything is stored.
func (s *AppointmentService) Update(ctx context.Context, actor types.User, id string, patch types.AppointmentPatch) (types.Appointment, error) {
	appointment, err := s.loadForMutation(ctx, actor, id)
	if err != nil {
		return types.Appointment{}, err
	}

	if changed(patch.UserID, appointment.UserID) {
		return types.Appointment{}, apperr.ImmutableField("userId")
	}
	if changed(patch.DentistID, appointment.DentistID) {
		return types.Appointment{}, apperr.ImmutableField("dentistId")
	}
	if changed(patch.ServiceID, appointment.ServiceID) {
		return types.Appointment{}, apperr.ImmutableField("serviceId")
	}

	original := appointment
	if changed(trimmed(patch.Date), appointment.AppointmentDate) || changed(trimmed(patch.Time), appointment.AppointmentTime) {
		if !original.Status.Reschedulable() {
			return types.Appointment{}, apperr.NotReschedulable(string(original.Status))
		}
		date, slot := appointment.AppointmentDate, appointment.AppointmentTime
		if patch.Date != nil {
			date = strings.TrimSpace(*patch.Date)
		}
		if patch.Time != nil {
			slot = strings.TrimSpace(*patch.Time)
		}
		if err := s.validateSlot(date, slot); err != nil {
			return types.Appointment{}, err
		}
		if err := s.checkConflict(ctx, appointment.DentistID, date, slot, appointment.ID); err != nil {
			return types.Appointment{}, err
		}
		appointment.AppointmentDate, appointment.AppointmentTime = date, slot
	}

	if patch.Status != nil && *patch.Status != original.Status {
		if !patch.Status.Valid() {
			return types.Appointment{}, apperr.Validation("status", "unknown status")
		}
		if err := s.checkTransition(actor, original.Status, *patch.Status); err != nil {
			return types.Appointment{}, err
		}
		appointment.Status = *patch.Status
	}

	if patch.TotalCost != nil && *patch.TotalCost != original.TotalCost {
		if !actor.IsAdmin() {
			return types.Appointment{}, apperr.PermissionDenied("only administrators can change the total cost")
		}
		if err := validate.Var(*patch.TotalCost, "omitempty,numeric"); err != nil {
			return types.Appointment{}, apperr.Validation("totalCost", "must be a number")
		}
		appointment.TotalCost = *patch.TotalCost
	}

	if patch.Notes != nil {
		appointment.Notes = strings.TrimSpace(*patch.Notes)
	}
	if appointment == original {
		return original, nil
	}

	updated, err := s.repo.Update(ctx, appointment)
	if err != nil {
		return types.Appointment{}, storeErr(err, "appointment")
	}
	s.publish(ctx, types.EventAppointmentUpdated, actor, original.Status, updated)
	return updated, nil
}

// Delete physically removes an appointment. It is an administrative action.
func (s *AppointmentService) Delete(ctx context.Context, actor types.User, id string) error {
	appointment, err := s.loadForMutation(ctx, actor, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperr.PermissionDenied("only administrators can delete appointments")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err, "appointment")
	}
	s.publish(ctx, types.EventAppointmentDeleted, actor, appointment.Status, appointment)
	return nil
}

func (s *AppointmentService) load(ctx context.Context, id string) (types.Appointment, error) {
	if strings.TrimSpace(id) == "" {
		return types.Appointment{}, apperr.NotFound("appointment")
	}
	appointment, err := retryRead(ctx, func(ctx context.Context) (types.Appointment, error) {
		return s.repo.Get(ctx, id)
	})
	return appointment, storeErr(err, "appointment")
}

func (s *AppointmentService) loadForMutation(ctx context.Context, actor types.User, id string) (types.Appointment, error) {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return types.Appointment{}, err
	}
	if err := s.gate.authorizeMutate(actor, appointment); err != nil {
		return types.Appointment{}, err
	}
	return appointment, nil
}

func (s *AppointmentService) checkTransition(actor types.User, from, to types.Status) error {
	if !actor.IsAdmin() && to != types.StatusCancelled {
		return apperr.PermissionDenied(fmt.Sprintf("only administrators can mark an appointment %s", to))
	}
	if !from.CanTransitionTo(to) {
		return apperr.InvalidTransition(string(from), string(to))
	}
	return nil
}

// validateSlot expects date and slot already trimmed.
func (s *AppointmentService) validateSlot(date, slot string) error {
	var missing []string
	if date == "" {
		missing = append(missing, "appointmentDate")
	}
	if slot == "" {
		missing = append(missing, "appointmentTime")
	}
	if len(missing) > 0 {
		return apperr.Validation(strings.Join(missing, ","), "please select both a date and time")
	}
	if !validDate(date) {
		return apperr.Validation("appointmentDate", "must be a date in YYYY-MM-DD format")
	}
	if !validTime(slot) {
		return apperr.Validation("appointmentTime", "must be a time in HH:MM format")
	}
	if date < s.today() {
		return apperr.Validation("appointmentDate", "cannot be in the past")
	}
	return nil
}

func (s *AppointmentService) checkConflict(ctx context.Context, dentistID, date, slot, excludeID string) error {
	if !s.cfg.PreventDoubleBooking {
		return nil
	}
	taken, err := s.repo.HasConflict(ctx, dentistID, date, slot, excludeID)
	if err != nil {
		return apperr.Transient(err)
	}
	if taken {
		return apperr.Conflict("the selected time is already booked for this dentist")
	}
	return nil
}

func (s *AppointmentService) publish(ctx context.Context, eventType string, actor types.User, from types.Status, appointment types.Appointment) {
	if s.events == nil {
		return
	}
	event := types.AppointmentEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		ActorID:       actor.ID,
		AppointmentID: appointment.ID,
		FromStatus:    from,
		ToStatus:      appointment.Status,
		Appointment:   appointment,
		OccurredAt:    s.cfg.Clock().UTC(),
	}
	if err := s.events.PublishAppointmentEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish appointment event",
			slog.String("type", eventType),
			slog.String("appointment_id", appointment.ID),
			slog.Any("error", err),
		)
	}
}

// requireSelection reports which of service and dentist are missing.
func requireSelection(serviceID, dentistID string) error {
	switch {
	case serviceID == "" && dentistID == "":
		return apperr.Validation("serviceId,dentistId", "please select both a service and a dentist")
	case serviceID == "":
		return apperr.Validation("serviceId", "please select a service")
	case dentistID == "":
		return apperr.Validation("dentistId", "please select a dentist")
	}
	return nil
}

func offered(err error, field, resource string) error {
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Validation(field, resource+" is not offered")
	}
	return err
}

func changed(value *string, current string) bool {
	return value != nil && *value != current
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
