package appointmentRepo

import (
	"context"

	"dispatchly/models"
)

// AppointmentRepository provides access to booked jobs for a tenant.
// The scheduling engine only reads; the conversation manager creates.
type AppointmentRepository interface {
	ListForBusiness(ctx context.Context, businessID string) ([]models.Appointment, error)
	Get(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, appt *models.Appointment) error
	// Update applies the non-nil fields and returns the updated appointment,
	// or nil when the id is unknown.
	Update(ctx context.Context, id string, fields models.AppointmentUpdate) (*models.Appointment, error)
}
