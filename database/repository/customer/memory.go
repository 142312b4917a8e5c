package customerRepo

import (
	"context"
	"sync"
	"time"

	"dispatchly/models"

	"github.com/google/uuid"
)

// InMemoryCustomerRepo is a concurrency-safe in-process repository used in
// development setups and tests.
type InMemoryCustomerRepo struct {
	mu      sync.RWMutex
	byPhone map[string]models.Customer // key: businessID + "|" + phone
}

// NewInMemoryCustomerRepo constructs an empty in-memory repository.
func NewInMemoryCustomerRepo() *InMemoryCustomerRepo {
	return &InMemoryCustomerRepo{byPhone: make(map[string]models.Customer)}
}

func key(businessID, phone string) string {
	return businessID + "|" + phone
}

func (repo *InMemoryCustomerRepo) GetByPhone(_ context.Context, phone, businessID string) (*models.Customer, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	customer, ok := repo.byPhone[key(businessID, phone)]
	if !ok {
		return nil, nil
	}
	return &customer, nil
}

func (repo *InMemoryCustomerRepo) GetByID(_ context.Context, id string) (*models.Customer, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, customer := range repo.byPhone {
		if customer.ID == id {
			c := customer
			return &c, nil
		}
	}
	return nil, nil
}

func (repo *InMemoryCustomerRepo) Upsert(_ context.Context, customer *models.Customer) (*models.Customer, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	now := time.Now().UTC()
	k := key(customer.BusinessID, customer.Phone)
	existing, ok := repo.byPhone[k]
	if !ok {
		customer.ID = uuid.New().String()
		customer.CreatedAt = now
		customer.UpdatedAt = now
		repo.byPhone[k] = *customer
		return customer, nil
	}

	if customer.Name != "" {
		existing.Name = customer.Name
	}
	if customer.Address != "" {
		existing.Address = customer.Address
	}
	existing.UpdatedAt = now
	repo.byPhone[k] = existing
	return &existing, nil
}
