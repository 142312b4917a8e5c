package businessRepo

import (
	"context"

	"dispatchly/models"
)

// BusinessRepository provides read access to tenant configuration.
type BusinessRepository interface {
	// Get returns nil when the tenant is unknown; callers fall back to defaults.
	Get(ctx context.Context, businessID string) (*models.Business, error)
}
