package appointmentRepo

import (
	"context"
	"sync"

	"dispatchly/models"
)

// InMemoryAppointmentRepo is a concurrency-safe in-process repository used in
// development setups and tests.
type InMemoryAppointmentRepo struct {
	mu    sync.RWMutex
	byID  map[string]models.Appointment
	order []string
}

// NewInMemoryAppointmentRepo constructs an empty in-memory repository.
func NewInMemoryAppointmentRepo() *InMemoryAppointmentRepo {
	return &InMemoryAppointmentRepo{byID: make(map[string]models.Appointment)}
}

func (repo *InMemoryAppointmentRepo) ListForBusiness(_ context.Context, businessID string) ([]models.Appointment, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var appts []models.Appointment
	for _, id := range repo.order {
		if appt := repo.byID[id]; appt.BusinessID == businessID {
			appts = append(appts, appt)
		}
	}
	return appts, nil
}

func (repo *InMemoryAppointmentRepo) Get(_ context.Context, id string) (*models.Appointment, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	appt, ok := repo.byID[id]
	if !ok {
		return nil, nil
	}
	return &appt, nil
}

func (repo *InMemoryAppointmentRepo) Create(_ context.Context, appt *models.Appointment) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, exists := repo.byID[appt.ID]; !exists {
		repo.order = append(repo.order, appt.ID)
	}
	repo.byID[appt.ID] = *appt
	return nil
}

func (repo *InMemoryAppointmentRepo) Update(_ context.Context, id string, fields models.AppointmentUpdate) (*models.Appointment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	appt, ok := repo.byID[id]
	if !ok {
		return nil, nil
	}
	if fields.StartTime != nil {
		appt.StartTime = *fields.StartTime
	}
	if fields.EndTime != nil {
		appt.EndTime = *fields.EndTime
	}
	if fields.Status != nil {
		appt.Status = *fields.Status
	}
	if fields.JobStage != nil {
		appt.JobStage = *fields.JobStage
	}
	repo.byID[id] = appt
	return &appt, nil
}
