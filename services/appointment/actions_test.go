package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appointmentRepo "dispatchly/database/repository/appointment"
	businessRepo "dispatchly/database/repository/business"
	customerRepo "dispatchly/database/repository/customer"
	"dispatchly/models"
	"dispatchly/services/calendar"
	"dispatchly/services/scheduling"
)

type actionsEnv struct {
	actions      *Actions
	appointments *appointmentRepo.InMemoryAppointmentRepo
	calendar     *calendar.InMemoryProvider
}

func newActionsEnv(t *testing.T) *actionsEnv {
	t.Helper()

	businesses := businessRepo.NewInMemoryBusinessRepo()
	businesses.Put(models.Business{ID: "biz-1", Name: "Bristol Plumbing"})

	env := &actionsEnv{
		appointments: appointmentRepo.NewInMemoryAppointmentRepo(),
		calendar:     calendar.NewInMemoryProvider(),
	}
	env.actions = &Actions{
		Appointments: env.appointments,
		Businesses:   businesses,
		Customers:    customerRepo.NewInMemoryCustomerRepo(),
		Engine:       &scheduling.Engine{},
		Calendar:     env.calendar,
		// Zero hours mean always open, so these tests are not sensitive to
		// the times they pick.
		Defaults: models.BusinessCalendarConfig{},
	}
	return env
}

func (env *actionsEnv) seed(t *testing.T, id string, start time.Time, durationMinutes int) models.Appointment {
	t.Helper()

	eventID, err := env.calendar.CreateEvent(context.Background(), "", calendar.Event{
		Summary: "Plumbing appointment",
		Start:   start,
		End:     start.Add(time.Duration(durationMinutes) * time.Minute),
	})
	require.NoError(t, err)

	appt := models.Appointment{
		ID:              id,
		BusinessID:      "biz-1",
		StartTime:       start,
		EndTime:         start.Add(time.Duration(durationMinutes) * time.Minute),
		Status:          models.AppointmentScheduled,
		JobStage:        "Booked",
		CalendarEventID: eventID,
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, env.appointments.Create(context.Background(), &appt))
	return appt
}

var actionsBase = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC) // a Monday

func TestCancel(t *testing.T) {
	env := newActionsEnv(t)
	appt := env.seed(t, "appt-1", actionsBase, 60)

	res, err := env.actions.Cancel(context.Background(), "appt-1", "biz-1", "", false)
	require.NoError(t, err)
	require.Equal(t, CodeCancelled, res.Code)

	stored, err := env.appointments.Get(context.Background(), "appt-1")
	require.NoError(t, err)
	require.Equal(t, models.AppointmentCancelled, stored.Status)

	_, ok := env.calendar.Get(appt.CalendarEventID)
	require.False(t, ok, "calendar event should be removed")

	// Cancelling again is a no-op.
	res, err = env.actions.Cancel(context.Background(), "appt-1", "biz-1", "", false)
	require.NoError(t, err)
	require.Equal(t, CodeAlreadyCancelled, res.Code)
}

func TestCancelNotFound(t *testing.T) {
	env := newActionsEnv(t)
	env.seed(t, "appt-1", actionsBase, 60)

	res, err := env.actions.Cancel(context.Background(), "missing", "biz-1", "", false)
	require.NoError(t, err)
	require.Equal(t, CodeNotFound, res.Code)

	// A tenant can only touch its own appointments.
	res, err = env.actions.Cancel(context.Background(), "appt-1", "other-biz", "", false)
	require.NoError(t, err)
	require.Equal(t, CodeNotFound, res.Code)
}

func TestRescheduleValidation(t *testing.T) {
	env := newActionsEnv(t)
	env.seed(t, "appt-1", actionsBase, 60)

	res, err := env.actions.Reschedule(context.Background(), RescheduleParams{
		AppointmentID: "appt-1",
		BusinessID:    "biz-1",
		NewStart:      actionsBase.Add(2 * time.Hour),
		NewEnd:        actionsBase.Add(time.Hour), // end before start
	})
	require.NoError(t, err)
	require.Equal(t, CodeInvalidRange, res.Code)

	res, err = env.actions.Reschedule(context.Background(), RescheduleParams{
		AppointmentID: "appt-1",
		BusinessID:    "biz-1",
		NewStart:      actionsBase,
		NewEnd:        actionsBase.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, CodeNoChange, res.Code)
}

func TestRescheduleConflict(t *testing.T) {
	env := newActionsEnv(t)
	env.seed(t, "appt-1", actionsBase, 60)
	env.seed(t, "appt-2", actionsBase.Add(3*time.Hour), 60)

	// Moving appt-1 onto appt-2's window conflicts; its own old window is
	// excluded from the check.
	res, err := env.actions.Reschedule(context.Background(), RescheduleParams{
		AppointmentID: "appt-1",
		BusinessID:    "biz-1",
		NewStart:      actionsBase.Add(3 * time.Hour),
		NewEnd:        actionsBase.Add(4 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, CodeConflict, res.Code)

	stored, err := env.appointments.Get(context.Background(), "appt-1")
	require.NoError(t, err)
	require.True(t, stored.StartTime.Equal(actionsBase), "conflict must not move the appointment")
}

func TestRescheduleSuccess(t *testing.T) {
	env := newActionsEnv(t)
	appt := env.seed(t, "appt-1", actionsBase, 60)

	newStart := actionsBase.Add(24 * time.Hour)
	res, err := env.actions.Reschedule(context.Background(), RescheduleParams{
		AppointmentID: "appt-1",
		BusinessID:    "biz-1",
		NewStart:      newStart,
		NewEnd:        newStart.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, CodeRescheduled, res.Code)

	stored, err := env.appointments.Get(context.Background(), "appt-1")
	require.NoError(t, err)
	require.True(t, stored.StartTime.Equal(newStart))
	require.Equal(t, models.AppointmentScheduled, stored.Status)
	require.Equal(t, "Rescheduled", stored.JobStage)

	event, ok := env.calendar.Get(appt.CalendarEventID)
	require.True(t, ok)
	require.True(t, event.Start.Equal(newStart), "calendar event should follow the move")
}

func TestRescheduleCalendarFailureLeavesRepoUnchanged(t *testing.T) {
	env := newActionsEnv(t)
	appt := env.seed(t, "appt-1", actionsBase, 60)

	// Simulate a lost calendar event; the update must fail closed.
	require.NoError(t, env.calendar.DeleteEvent(context.Background(), "", appt.CalendarEventID))

	newStart := actionsBase.Add(24 * time.Hour)
	res, err := env.actions.Reschedule(context.Background(), RescheduleParams{
		AppointmentID: "appt-1",
		BusinessID:    "biz-1",
		NewStart:      newStart,
		NewEnd:        newStart.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, CodeCalendarError, res.Code)

	stored, err := env.appointments.Get(context.Background(), "appt-1")
	require.NoError(t, err)
	require.True(t, stored.StartTime.Equal(actionsBase))
	require.Equal(t, models.AppointmentScheduled, stored.Status)
}

func TestMarkPendingReschedule(t *testing.T) {
	env := newActionsEnv(t)
	env.seed(t, "appt-1", actionsBase, 60)

	res, err := env.actions.MarkPendingReschedule(context.Background(), "appt-1", "biz-1")
	require.NoError(t, err)
	require.Equal(t, CodePendingResched, res.Code)

	stored, err := env.appointments.Get(context.Background(), "appt-1")
	require.NoError(t, err)
	require.Equal(t, models.AppointmentPendingReschedule, stored.Status)

	res, err = env.actions.MarkPendingReschedule(context.Background(), "appt-1", "biz-1")
	require.NoError(t, err)
	require.Equal(t, CodeAlreadyPending, res.Code)

	res, err = env.actions.MarkPendingReschedule(context.Background(), "missing", "biz-1")
	require.NoError(t, err)
	require.Equal(t, CodeNotFound, res.Code)
}
