package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/types"
)

func TestAppointmentService_Create_SnapshotsCatalog(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()

	appointment, err := f.appointments.Create(ctx, f.patient, types.AppointmentRequest{
		ServiceID: f.service.ID,
		DentistID: f.dentist.ID,
		Date:      tomorrow,
		Time:      "10:30",
		Notes:     "  first visit ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, appointment.ID)
	assert.Equal(t, f.patient.ID, appointment.UserID)
	assert.Equal(t, "Jane Doe", appointment.UserName)
	assert.Equal(t, "jane@example.com", appointment.UserEmail)
	assert.Equal(t, "Dr. Sarah Johnson", appointment.DentistName)
	assert.Equal(t, "General Dentistry", appointment.DentistSpecialization)
	assert.Equal(t, "Regular Cleaning", appointment.ServiceName)
	assert.Equal(t, "120", appointment.ServicePrice)
	assert.Equal(t, 60, appointment.ServiceDuration)
	assert.Equal(t, "120", appointment.TotalCost)
	assert.Equal(t, types.StatusScheduled, appointment.Status)
	assert.Equal(t, "first visit", appointment.Notes)
	assert.Equal(t, []string{types.EventAppointmentCreated}, f.events.eventTypes())

	// Later catalog edits do not reach the stored copy.
	renamed := f.dentist
	renamed.Name = "Dr. Sarah Johnson-Lee"
	_, err = f.store.Dentists().Update(ctx, renamed)
	require.NoError(t, err)

	stored, err := f.appointments.Get(ctx, f.patient, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Sarah Johnson", stored.DentistName)
}

func TestAppointmentService_Create_RoundTrip(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()

	created := f.book(t, f.patient, nextWeek, "14:00")
	got, err := f.appointments.Get(ctx, f.patient, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestAppointmentService_Create_Validation(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()

	cases := []struct {
		name    string
		req     types.AppointmentRequest
		field   string
		message string
	}{
		{
			name:    "missing service and dentist",
			req:     types.AppointmentRequest{Date: tomorrow, Time: "09:00"},
			field:   "serviceId,dentistId",
			message: "please select both a service and a dentist",
		},
		{
			name:  "missing dentist",
			req:   types.AppointmentRequest{ServiceID: f.service.ID, Date: tomorrow, Time: "09:00"},
			field: "dentistId",
		},
		{
			name:    "missing date and time",
			req:     types.AppointmentRequest{ServiceID: f.service.ID, DentistID: f.dentist.ID},
			field:   "appointmentDate,appointmentTime",
			message: "please select both a date and time",
		},
		{
			name:  "malformed date",
			req:   types.AppointmentRequest{ServiceID: f.service.ID, DentistID: f.dentist.ID, Date: "17/10/2026", Time: "09:00"},
			field: "appointmentDate",
		},
		{
			name:  "malformed time",
			req:   types.AppointmentRequest{ServiceID: f.service.ID, DentistID: f.dentist.ID, Date: tomorrow, Time: "9am"},
			field: "appointmentTime",
		},
		{
			name:  "date in the past",
			req:   types.AppointmentRequest{ServiceID: f.service.ID, DentistID: f.dentist.ID, Date: "2026-10-15", Time: "09:00"},
			field: "appointmentDate",
		},
		{
			name:  "unknown service",
			req:   types.AppointmentRequest{ServiceID: "missing", DentistID: f.dentist.ID, Date: tomorrow, Time: "09:00"},
			field: "serviceId",
		},
		{
			name:  "unknown dentist",
			req:   types.AppointmentRequest{ServiceID: f.service.ID, DentistID: "missing", Date: tomorrow, Time: "09:00"},
			field: "dentistId",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.appointments.Create(ctx, f.patient, tc.req)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, tc.field, appErr.Field)
			if tc.message != "" {
				assert.Equal(t, tc.message, appErr.Message)
			}
		})
	}

	appointments, err := f.appointments.List(ctx, f.admin, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, appointments)
	assert.Empty(t, f.events.eventTypes())
}

func TestAppointmentService_Create_TrimsDateAndTime(t *testing.T) {
	f := newFixture(t, AppointmentConfig{PreventDoubleBooking: true})
	ctx := context.Background()

	appointment, err := f.appointments.Create(ctx, f.patient, types.AppointmentRequest{
		ServiceID: f.service.ID,
		DentistID: f.dentist.ID,
		Date:      " " + nextWeek,
		Time:      "09:00 ",
	})
	require.NoError(t, err)
	assert.Equal(t, nextWeek, appointment.AppointmentDate)
	assert.Equal(t, "09:00", appointment.AppointmentTime)

	upcoming, err := f.appointments.List(ctx, f.patient, ListQuery{Scope: types.ScopeUpcoming})
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)

	byDate, err := f.appointments.List(ctx, f.patient, ListQuery{Date: nextWeek})
	require.NoError(t, err)
	assert.Len(t, byDate, 1)

	_, err = f.appointments.Create(ctx, f.other, types.AppointmentRequest{
		ServiceID: f.service.ID, DentistID: f.dentist.ID, Date: nextWeek, Time: "09:00",
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	moved, err := f.appointments.Reschedule(ctx, f.patient, appointment.ID, tomorrow+" ", " 10:30")
	require.NoError(t, err)
	assert.Equal(t, tomorrow, moved.AppointmentDate)
	assert.Equal(t, "10:30", moved.AppointmentTime)

	date, slot := "  "+nextWeek, "14:00\t"
	patched, err := f.appointments.Update(ctx, f.admin, appointment.ID, types.AppointmentPatch{Date: &date, Time: &slot})
	require.NoError(t, err)
	assert.Equal(t, nextWeek, patched.AppointmentDate)
	assert.Equal(t, "14:00", patched.AppointmentTime)
}

func TestAppointmentService_Create_TodayIsAllowed(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	appointment := f.book(t, f.patient, today, "16:30")
	assert.Equal(t, today, appointment.AppointmentDate)
}

func TestAppointmentService_Create_InactiveService(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()

	retired := f.service
	retired.IsActive = false
	_, err := f.store.Services().Update(ctx, retired)
	require.NoError(t, err)

	_, err = f.appointments.Create(ctx, f.patient, types.AppointmentRequest{
		ServiceID: f.service.ID, DentistID: f.dentist.ID, Date: tomorrow, Time: "09:00",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAppointmentService_Create_RequiresActor(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	_, err := f.appointments.Create(context.Background(), types.User{}, types.AppointmentRequest{})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestAppointmentService_Create_WriteNotRetried(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	repo := &failingWrites{AppointmentRepository: f.store.Appointments()}
	svc := NewAppointmentService(repo, f.catalog, nil, AppointmentConfig{Clock: func() time.Time { return fixedNow }})

	_, err := svc.Create(context.Background(), f.patient, types.AppointmentRequest{
		ServiceID: f.service.ID, DentistID: f.dentist.ID, Date: tomorrow, Time: "09:00",
	})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.Retryable())
	assert.Equal(t, 1, repo.writes)
}

func TestAppointmentService_PreventDoubleBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled by default", func(t *testing.T) {
		f := newFixture(t, AppointmentConfig{})
		f.book(t, f.patient, tomorrow, "09:00")
		f.book(t, f.other, tomorrow, "09:00")
	})

	t.Run("enabled", func(t *testing.T) {
		f := newFixture(t, AppointmentConfig{PreventDoubleBooking: true})
		first := f.book(t, f.patient, tomorrow, "09:00")

		_, err := f.appointments.Create(ctx, f.other, types.AppointmentRequest{
			ServiceID: f.service.ID, DentistID: f.dentist.ID, Date: tomorrow, Time: "09:00",
		})
		assert.True(t, apperr.Is(err, apperr.KindConflict))

		second := f.book(t, f.other, tomorrow, "10:30")
		_, err = f.appointments.Reschedule(ctx, f.other, second.ID, tomorrow, "09:00")
		assert.True(t, apperr.Is(err, apperr.KindConflict))

		// Rescheduling onto its own slot is not a conflict.
		_, err = f.appointments.Reschedule(ctx, f.patient, first.ID, tomorrow, "09:00")
		require.NoError(t, err)

		// A cancelled booking frees the slot.
		_, err = f.appointments.Cancel(ctx, f.patient, first.ID)
		require.NoError(t, err)
		f.book(t, f.other, tomorrow, "09:00")
	})
}

func TestAppointmentService_List_Ownership(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()

	mine := f.book(t, f.patient, tomorrow, "09:00")
	f.book(t, f.other, tomorrow, "10:30")

	own, err := f.appointments.List(ctx, f.patient, ListQuery{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	all, err := f.appointments.List(ctx, f.admin, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.appointments.List(ctx, types.User{}, ListQuery{})
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))
}

func TestAppointmentService_List_Scopes(t *testing.T) {
	clock := fixedNow
	f := newFixture(t, AppointmentConfig{Clock: func() time.Time { return clock }})
	ctx := context.Background()

	past := f.book(t, f.patient, today, "09:00")
	upcoming := f.book(t, f.patient, nextWeek, "09:00")
	cancelled := f.book(t, f.patient, nextWeek, "14:00")
	_, err := f.appointments.Cancel(ctx, f.patient, cancelled.ID)
	require.NoError(t, err)

	// Move the clock forward so the first booking falls behind today.
	clock = fixedNow.AddDate(0, 0, 2)

	got, err := f.appointments.List(ctx, f.patient, ListQuery{Scope: types.ScopeUpcoming})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, upcoming.ID, got[0].ID)

	got, err = f.appointments.List(ctx, f.patient, ListQuery{Scope: types.ScopePast})
	require.NoError(t, err)
	ids := []string{}
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{past.ID, cancelled.ID}, ids)

	_, err = f.appointments.List(ctx, f.patient, ListQuery{Scope: "tomorrow"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAppointmentService_List_DentistDateFilter(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()

	f.book(t, f.patient, tomorrow, "14:00")
	f.book(t, f.other, tomorrow, "09:00")
	f.book(t, f.other, nextWeek, "09:00")

	got, err := f.appointments.List(ctx, f.admin, ListQuery{DentistID: f.dentist.ID, Date: tomorrow})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "09:00", got[0].AppointmentTime)
	assert.Equal(t, "14:00", got[1].AppointmentTime)

	_, err = f.appointments.List(ctx, f.admin, ListQuery{Date: "tomorrow"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAppointmentService_Get_Authorization(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()
	appointment := f.book(t, f.patient, tomorrow, "09:00")

	_, err := f.appointments.Get(ctx, f.other, appointment.ID)
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	_, err = f.appointments.Get(ctx, f.admin, appointment.ID)
	require.NoError(t, err)

	_, err = f.appointments.Get(ctx, f.admin, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAppointmentService_Reschedule(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()
	appointment := f.book(t, f.patient, tomorrow, "09:00")

	updated, err := f.appointments.Reschedule(ctx, f.patient, appointment.ID, nextWeek, "15:30")
	require.NoError(t, err)
	assert.Equal(t, nextWeek, updated.AppointmentDate)
	assert.Equal(t, "15:30", updated.AppointmentTime)
	assert.Equal(t, types.StatusScheduled, updated.Status)
	assert.Equal(t, appointment.DentistName, updated.DentistName)

	_, err = f.appointments.Reschedule(ctx, f.other, appointment.ID, nextWeek, "09:00")
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	_, err = f.appointments.Reschedule(ctx, f.patient, appointment.ID, "2026-01-01", "09:00")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.appointments.Reschedule(ctx, f.patient, appointment.ID, nextWeek, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Equal(t, []string{types.EventAppointmentCreated, types.EventAppointmentRescheduled}, f.events.eventTypes())
}

func TestAppointmentService_Reschedule_Terminal(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()

	for _, status := range []types.Status{types.StatusCompleted, types.StatusCancelled, types.StatusNoShow} {
		appointment := f.book(t, f.patient, tomorrow, "09:00")
		_, err := f.appointments.UpdateStatus(ctx, f.admin, appointment.ID, status)
		require.NoError(t, err)

		_, err = f.appointments.Reschedule(ctx, f.admin, appointment.ID, nextWeek, "09:00")
		assert.True(t, apperr.Is(err, apperr.KindInvalidTransition), string(status))
	}
}

func TestAppointmentService_Cancel(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()
	appointment := f.book(t, f.patient, tomorrow, "09:00")

	_, err := f.appointments.Cancel(ctx, f.other, appointment.ID)
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	cancelled, err := f.appointments.Cancel(ctx, f.patient, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCancelled, cancelled.Status)

	_, err = f.appointments.Cancel(ctx, f.patient, appointment.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition))

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, types.EventAppointmentStatusChanged, last.Type)
	assert.Equal(t, types.StatusScheduled, last.FromStatus)
	assert.Equal(t, types.StatusCancelled, last.ToStatus)
	assert.Equal(t, f.patient.ID, last.ActorID)
}

func TestAppointmentService_UpdateStatus_Grid(t *testing.T) {
	ctx := context.Background()
	all := []types.Status{types.StatusScheduled, types.StatusConfirmed, types.StatusCompleted, types.StatusCancelled, types.StatusNoShow}

	for _, from := range all {
		for _, to := range all {
			f := newFixture(t, AppointmentConfig{})
			appointment := f.book(t, f.patient, tomorrow, "09:00")
			if from != types.StatusScheduled {
				_, err := f.appointments.UpdateStatus(ctx, f.admin, appointment.ID, from)
				require.NoError(t, err)
			}

			_, err := f.appointments.UpdateStatus(ctx, f.admin, appointment.ID, to)
			if from.CanTransitionTo(to) {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.True(t, apperr.Is(err, apperr.KindInvalidTransition), "%s -> %s: %v", from, to, err)
			}
		}
	}
}

func TestAppointmentService_UpdateStatus_PatientLimits(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()
	appointment := f.book(t, f.patient, tomorrow, "09:00")

	for _, status := range []types.Status{types.StatusConfirmed, types.StatusCompleted, types.StatusNoShow} {
		_, err := f.appointments.UpdateStatus(ctx, f.patient, appointment.ID, status)
		assert.True(t, apperr.Is(err, apperr.KindPermissionDenied), string(status))
	}

	_, err := f.appointments.UpdateStatus(ctx, f.admin, appointment.ID, "pending")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	confirmed, err := f.appointments.UpdateStatus(ctx, f.admin, appointment.ID, types.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, types.StatusConfirmed, confirmed.Status)
}

func TestAppointmentService_Update_ImmutableFields(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()
	appointment := f.book(t, f.patient, tomorrow, "09:00")

	other := "someone-else"
	cases := map[string]types.AppointmentPatch{
		"userId":    {UserID: &other},
		"dentistId": {DentistID: &other},
		"serviceId": {ServiceID: &other},
	}
	for field, patch := range cases {
		_, err := f.appointments.Update(ctx, f.admin, appointment.ID, patch)
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr, field)
		assert.Equal(t, apperr.KindImmutableField, appErr.Kind)
		assert.Equal(t, field, appErr.Field)
	}

	// Echoing the current values back is tolerated.
	notes := "bring x-rays"
	updated, err := f.appointments.Update(ctx, f.patient, appointment.ID, types.AppointmentPatch{
		UserID:    &appointment.UserID,
		DentistID: &appointment.DentistID,
		Notes:     &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "bring x-rays", updated.Notes)
	assert.Equal(t, appointment.UserID, updated.UserID)
}

func TestAppointmentService_Update_AllOrNothing(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()
	appointment := f.book(t, f.patient, tomorrow, "09:00")

	notes := "changed"
	completed := types.StatusCompleted
	_, err := f.appointments.Update(ctx, f.patient, appointment.ID, types.AppointmentPatch{
		Notes:  &notes,
		Status: &completed,
	})
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	stored, err := f.appointments.Get(ctx, f.patient, appointment.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Notes)
	assert.Equal(t, types.StatusScheduled, stored.Status)
}

func TestAppointmentService_Update_TotalCost(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()
	appointment := f.book(t, f.patient, tomorrow, "09:00")

	discounted := "99.50"
	_, err := f.appointments.Update(ctx, f.patient, appointment.ID, types.AppointmentPatch{TotalCost: &discounted})
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	updated, err := f.appointments.Update(ctx, f.admin, appointment.ID, types.AppointmentPatch{TotalCost: &discounted})
	require.NoError(t, err)
	assert.Equal(t, "99.50", updated.TotalCost)

	bogus := "lots"
	_, err = f.appointments.Update(ctx, f.admin, appointment.ID, types.AppointmentPatch{TotalCost: &bogus})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAppointmentService_Update_DateAndStatus(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()
	appointment := f.book(t, f.patient, tomorrow, "09:00")

	date, slot := nextWeek, "16:30"
	confirmed := types.StatusConfirmed
	updated, err := f.appointments.Update(ctx, f.admin, appointment.ID, types.AppointmentPatch{
		Date: &date, Time: &slot, Status: &confirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, nextWeek, updated.AppointmentDate)
	assert.Equal(t, "16:30", updated.AppointmentTime)
	assert.Equal(t, types.StatusConfirmed, updated.Status)

	cancelled := types.StatusCancelled
	_, err = f.appointments.Update(ctx, f.patient, appointment.ID, types.AppointmentPatch{Status: &cancelled})
	require.NoError(t, err)

	later := "2026-11-01"
	_, err = f.appointments.Update(ctx, f.admin, appointment.ID, types.AppointmentPatch{Date: &later})
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition))
}

func TestAppointmentService_Update_EmptyPatchIsNoop(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()
	appointment := f.book(t, f.patient, tomorrow, "09:00")

	got, err := f.appointments.Update(ctx, f.patient, appointment.ID, types.AppointmentPatch{})
	require.NoError(t, err)
	assert.Equal(t, appointment, got)

	// Resending the stored values is not a change either.
	date, slot, scheduled := " "+tomorrow, "09:00", types.StatusScheduled
	got, err = f.appointments.Update(ctx, f.admin, appointment.ID, types.AppointmentPatch{
		Date: &date, Time: &slot, Status: &scheduled, TotalCost: &appointment.TotalCost,
	})
	require.NoError(t, err)
	assert.Equal(t, appointment.UpdatedAt, got.UpdatedAt)
	assert.Equal(t, []string{types.EventAppointmentCreated}, f.events.eventTypes())
}

// Concurrent edits are last-write-wins. There is no version check, so a
// stale reader's write replaces the earlier one without an error.
func TestAppointmentService_ConcurrentEdits_LastWriteWins(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()
	appointment := f.book(t, f.patient, tomorrow, "09:00")

	seenByPatient, err := f.appointments.Get(ctx, f.patient, appointment.ID)
	require.NoError(t, err)
	seenByAdmin, err := f.appointments.Get(ctx, f.admin, appointment.ID)
	require.NoError(t, err)
	require.Equal(t, seenByPatient, seenByAdmin)

	_, err = f.appointments.Reschedule(ctx, f.patient, appointment.ID, nextWeek, "10:30")
	require.NoError(t, err)
	_, err = f.appointments.Reschedule(ctx, f.admin, appointment.ID, nextWeek, "15:00")
	require.NoError(t, err)

	stored, err := f.appointments.Get(ctx, f.patient, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, nextWeek, stored.AppointmentDate)
	assert.Equal(t, "15:00", stored.AppointmentTime)

	// A cancel issued after the reschedule keeps the latest slot.
	cancelled, err := f.appointments.Cancel(ctx, f.patient, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCancelled, cancelled.Status)
	assert.Equal(t, "15:00", cancelled.AppointmentTime)

	assert.Equal(t, []string{
		types.EventAppointmentCreated,
		types.EventAppointmentRescheduled,
		types.EventAppointmentRescheduled,
		types.EventAppointmentStatusChanged,
	}, f.events.eventTypes())
}

func TestAppointmentService_Delete(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()
	appointment := f.book(t, f.patient, tomorrow, "09:00")

	err := f.appointments.Delete(ctx, f.patient, appointment.ID)
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	err = f.appointments.Delete(ctx, f.other, appointment.ID)
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	require.NoError(t, f.appointments.Delete(ctx, f.admin, appointment.ID))

	_, err = f.appointments.Get(ctx, f.admin, appointment.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = f.appointments.Delete(ctx, f.admin, appointment.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAppointmentService_ReadRetriesOnce(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	ctx := context.Background()
	appointment := f.book(t, f.patient, tomorrow, "09:00")
	clock := func() time.Time { return fixedNow }

	flaky := &flakyAppointments{AppointmentRepository: f.store.Appointments(), failures: 1}
	svc := NewAppointmentService(flaky, f.catalog, nil, AppointmentConfig{Clock: clock})
	got, err := svc.Get(ctx, f.patient, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.ID, got.ID)
	assert.Equal(t, 2, flaky.calls)

	down := &flakyAppointments{AppointmentRepository: f.store.Appointments(), failures: 5}
	svc = NewAppointmentService(down, f.catalog, nil, AppointmentConfig{Clock: clock})
	_, err = svc.List(ctx, f.patient, ListQuery{})
	assert.True(t, apperr.Is(err, apperr.KindTransient))
	assert.Equal(t, 2, down.calls)
}

func TestAppointmentService_PublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t, AppointmentConfig{})
	f.events.err = errFlaky
	appointment := f.book(t, f.patient, tomorrow, "09:00")
	assert.NotEmpty(t, appointment.ID)
}
