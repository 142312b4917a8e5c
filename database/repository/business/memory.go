package businessRepo

import (
	"context"
	"sync"

	"dispatchly/models"
)

// InMemoryBusinessRepo is a concurrency-safe in-process repository used in
// development setups and tests.
type InMemoryBusinessRepo struct {
	mu   sync.RWMutex
	byID map[string]models.Business
}

// NewInMemoryBusinessRepo constructs an empty in-memory repository.
func NewInMemoryBusinessRepo() *InMemoryBusinessRepo {
	return &InMemoryBusinessRepo{byID: make(map[string]models.Business)}
}

// Put stores or replaces a tenant row.
func (repo *InMemoryBusinessRepo) Put(business models.Business) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.byID[business.ID] = business
}

func (repo *InMemoryBusinessRepo) Get(_ context.Context, businessID string) (*models.Business, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	business, ok := repo.byID[businessID]
	if !ok {
		return nil, nil
	}
	return &business, nil
}
