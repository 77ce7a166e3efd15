package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venusseo127/dentalApp/types"
)

var appointmentRowColumns = []string{
	"id", "user_id", "user_name", "user_email", "user_phone",
	"dentist_id", "dentist_name", "dentist_phone", "dentist_specialization",
	"service_id", "service_name", "service_price", "service_duration", "service_description",
	"appointment_date", "appointment_time", "status", "notes", "total_cost", "created_at", "updated_at",
}

func setupAppointmentRepo(t *testing.T) (*AppointmentRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewAppointmentRepository(db), mock, db
}

func appointmentRow(rows *sqlmock.Rows, id, userID, date, slot, status string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, userID, "Ada Lovelace", "ada@example.com", "555-0100",
		"d1", "Dr. X", "555-0199", "General Dentistry",
		"s1", "Cleaning", "120.00", 60, "Routine cleaning",
		date, slot, status, "", "120.00", now, now,
	)
}

func TestAppointmentRepository_List(t *testing.T) {
	repo, mock, db := setupAppointmentRepo(t)
	defer db.Close()

	t.Run("owner filter orders by recency", func(t *testing.T) {
		rows := sqlmock.NewRows(appointmentRowColumns)
		appointmentRow(rows, "a2", "u1", "2025-03-11", "09:00", "scheduled")
		appointmentRow(rows, "a1", "u1", "2025-03-10", "14:00", "cancelled")

		mock.ExpectQuery(`SELECT .* FROM appointments\s+WHERE .* ORDER BY appointment_date DESC, appointment_time DESC`).
			WithArgs("u1", "", "").
			WillReturnRows(rows)

		appointments, err := repo.List(context.Background(), types.AppointmentFilter{UserID: "u1"})
		require.NoError(t, err)
		require.Len(t, appointments, 2)
		assert.Equal(t, "a2", appointments[0].ID)
		assert.Equal(t, types.StatusCancelled, appointments[1].Status)
		assert.Equal(t, "Cleaning", appointments[0].ServiceName)
	})

	t.Run("date filter orders by time", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM appointments\s+WHERE .* ORDER BY appointment_time ASC`).
			WithArgs("", "d1", "2025-03-10").
			WillReturnRows(sqlmock.NewRows(appointmentRowColumns))

		appointments, err := repo.List(context.Background(), types.AppointmentFilter{DentistID: "d1", Date: "2025-03-10"})
		require.NoError(t, err)
		assert.Empty(t, appointments)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_Get(t *testing.T) {
	repo, mock, db := setupAppointmentRepo(t)
	defer db.Close()

	rows := sqlmock.NewRows(appointmentRowColumns)
	appointmentRow(rows, "a1", "u1", "2025-03-10", "09:00", "confirmed")
	mock.ExpectQuery(`SELECT .* FROM appointments WHERE id::text = \$1`).
		WithArgs("a1").
		WillReturnRows(rows)

	appointment, err := repo.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusConfirmed, appointment.Status)
	assert.Equal(t, "2025-03-10", appointment.AppointmentDate)
	assert.Equal(t, "09:00", appointment.AppointmentTime)

	mock.ExpectQuery(`SELECT .* FROM appointments WHERE id::text = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_Create(t *testing.T) {
	repo, mock, db := setupAppointmentRepo(t)
	defer db.Close()

	args := make([]driver.Value, 0, 21)
	for i := 0; i < 21; i++ {
		args = append(args, sqlmock.AnyArg())
	}
	mock.ExpectExec(`INSERT INTO appointments`).
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Create(context.Background(), types.Appointment{
		UserID:          "u1",
		DentistID:       "d1",
		ServiceID:       "s1",
		AppointmentDate: "2025-03-10",
		AppointmentTime: "09:00",
		Status:          types.StatusScheduled,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_Update(t *testing.T) {
	repo, mock, db := setupAppointmentRepo(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE appointments\s+SET appointment_date = \$1`).
		WithArgs("2025-03-12", "10:30", "scheduled", "", "", sqlmock.AnyArg(), "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.Update(context.Background(), types.Appointment{
		ID:              "a1",
		AppointmentDate: "2025-03-12",
		AppointmentTime: "10:30",
		Status:          types.StatusScheduled,
	})
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.IsZero())

	mock.ExpectExec(`UPDATE appointments`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = repo.Update(context.Background(), types.Appointment{ID: "gone", Status: types.StatusCancelled})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_Delete(t *testing.T) {
	repo, mock, db := setupAppointmentRepo(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM appointments WHERE id::text = \$1`).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "a1"))

	mock.ExpectExec(`DELETE FROM appointments`).
		WithArgs("a1").
		WillReturnError(errors.New("connection refused"))
	assert.EqualError(t, repo.Delete(context.Background(), "a1"), "connection refused")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_HasConflict(t *testing.T) {
	repo, mock, db := setupAppointmentRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("d1", "2025-03-10", "09:00", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.HasConflict(context.Background(), "d1", "2025-03-10", "09:00", "")
	require.NoError(t, err)
	assert.True(t, taken)
	require.NoError(t, mock.ExpectationsWereMet())
}
