package notification

import (
	"context"

	"dispatchly/models"
)

// Service delivers booking and emergency notifications. Delivery failures are
// logged by callers and never abort a booking.
type Service interface {
	// NotifyOwner pushes a message to the tenant owner's device.
	NotifyOwner(ctx context.Context, business *models.Business, title, body string, data map[string]string) error
	// NotifyCustomer sends an SMS to the caller.
	NotifyCustomer(ctx context.Context, business *models.Business, toPhone, body string) error
}

// SMSSender abstracts the outbound SMS gateway.
type SMSSender interface {
	Send(ctx context.Context, fromBusinessID, toPhone, body string) error
}
