package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/venusseo127/dentalApp/types"
)

const appointmentColumns = `id, user_id, user_name, user_email, user_phone,
		dentist_id, dentist_name, dentist_phone, dentist_specialization,
		service_id, service_name, service_price::text, service_duration, service_description,
		appointment_date::text, to_char(appointment_time, 'HH24:MI'), status, notes,
		COALESCE(total_cost::text, ''), created_at, updated_at`

const appointmentFilter = `
		WHERE ($1 = '' OR user_id::text = $1)
		AND ($2 = '' OR dentist_id::text = $2)
		AND ($3 = '' OR appointment_date::text = $3)`

// AppointmentRepository handles persistence for appointments.
type AppointmentRepository struct {
	db *sql.DB
}

func NewAppointmentRepository(db *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// List returns appointments matching filter, newest first. A date filter
// orders the day's appointments by time instead.
func (r *AppointmentRepository) List(ctx context.Context, filter types.AppointmentFilter) ([]types.Appointment, error) {
	const byRecency = `SELECT ` + appointmentColumns + ` FROM appointments` + appointmentFilter + `
		ORDER BY appointment_date DESC, appointment_time DESC`
	const byTime = `SELECT ` + appointmentColumns + ` FROM appointments` + appointmentFilter + `
		ORDER BY appointment_time ASC`

	query := byRecency
	if filter.Date != "" {
		query = byTime
	}

	rows, err := r.db.QueryContext(ctx, query, filter.UserID, filter.DentistID, filter.Date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := make([]types.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (types.Appointment, error) {
	const query = `SELECT ` + appointmentColumns + ` FROM appointments WHERE id::text = $1`
	return scanAppointment(r.db.QueryRowContext(ctx, query, id))
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment types.Appointment) (types.Appointment, error) {
	now := time.Now().UTC()
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	const query = `
		INSERT INTO appointments (
			id, user_id, user_name, user_email, user_phone,
			dentist_id, dentist_name, dentist_phone, dentist_specialization,
			service_id, service_name, service_price, service_duration, service_description,
			appointment_date, appointment_time, status, notes, total_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NULLIF($19, '')::numeric, $20, $21)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		appointment.ID,
		appointment.UserID,
		appointment.UserName,
		appointment.UserEmail,
		appointment.UserPhone,
		appointment.DentistID,
		appointment.DentistName,
		appointment.DentistPhone,
		appointment.DentistSpecialization,
		appointment.ServiceID,
		appointment.ServiceName,
		appointment.ServicePrice,
		appointment.ServiceDuration,
		appointment.ServiceDescription,
		appointment.AppointmentDate,
		appointment.AppointmentTime,
		string(appointment.Status),
		appointment.Notes,
		appointment.TotalCost,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return types.Appointment{}, translate(err)
	}
	return appointment, nil
}

// Update writes the mutable fields of an appointment. Owner, dentist, service
// and their snapshots are never rewritten.
func (r *AppointmentRepository) Update(ctx context.Context, appointment types.Appointment) (types.Appointment, error) {
	appointment.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE appointments
		SET appointment_date = $1,
			appointment_time = $2,
			status = $3,
			notes = $4,
			total_cost = NULLIF($5, '')::numeric,
			updated_at = $6
		WHERE id::text = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		appointment.AppointmentDate,
		appointment.AppointmentTime,
		string(appointment.Status),
		appointment.Notes,
		appointment.TotalCost,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return types.Appointment{}, err
	}
	if err := requireAffected(result); err != nil {
		return types.Appointment{}, err
	}
	return appointment, nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM appointments WHERE id::text = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// HasConflict reports whether another live appointment holds the dentist's slot.
func (r *AppointmentRepository) HasConflict(ctx context.Context, dentistID, date, slot, excludeID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE dentist_id::text = $1
			AND appointment_date::text = $2
			AND to_char(appointment_time, 'HH24:MI') = $3
			AND status NOT IN ('cancelled', 'no_show')
			AND id::text <> $4
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, dentistID, date, slot, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanAppointment(row rowScanner) (types.Appointment, error) {
	var (
		appointment types.Appointment
		status      string
	)
	err := row.Scan(
		&appointment.ID,
		&appointment.UserID,
		&appointment.UserName,
		&appointment.UserEmail,
		&appointment.UserPhone,
		&appointment.DentistID,
		&appointment.DentistName,
		&appointment.DentistPhone,
		&appointment.DentistSpecialization,
		&appointment.ServiceID,
		&appointment.ServiceName,
		&appointment.ServicePrice,
		&appointment.ServiceDuration,
		&appointment.ServiceDescription,
		&appointment.AppointmentDate,
		&appointment.AppointmentTime,
		&status,
		&appointment.Notes,
		&appointment.TotalCost,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Appointment{}, ErrNotFound
		}
		return types.Appointment{}, err
	}
	appointment.Status = types.Status(status)
	return appointment, nil
}
