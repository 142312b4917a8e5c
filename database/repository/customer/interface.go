package customerRepo

import (
	"context"

	"dispatchly/models"
)

// CustomerRepository provides CRM contact lookup and upsert.
type CustomerRepository interface {
	// GetByPhone returns nil when no contact matches for the tenant.
	GetByPhone(ctx context.Context, phone, businessID string) (*models.Customer, error)
	// GetByID returns nil when the contact is unknown.
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	// Upsert creates or refreshes the contact keyed by (businessID, phone).
	Upsert(ctx context.Context, customer *models.Customer) (*models.Customer, error)
}
