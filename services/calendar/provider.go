package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a calendar entry mirroring a booked appointment.
type Event struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// Provider abstracts the tenant's external calendar. Bookings create the
// calendar event before persisting the appointment so the technician's
// calendar never lags behind the CRM.
type Provider interface {
	CreateEvent(ctx context.Context, calendarID string, event Event) (string, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, event Event) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// InMemoryProvider is the default provider for tenants without an external
// calendar connection, and the double used in tests.
type InMemoryProvider struct {
	mu     sync.RWMutex
	events map[string]Event // eventID -> event
}

func NewInMemoryProvider() *InMemoryProvider {
	return &InMemoryProvider{events: make(map[string]Event)}
}

func (p *InMemoryProvider) CreateEvent(_ context.Context, _ string, event Event) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	event.ID = uuid.New().String()
	p.events[event.ID] = event
	return event.ID, nil
}

func (p *InMemoryProvider) UpdateEvent(_ context.Context, _ string, eventID string, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.events[eventID]; !ok {
		return fmt.Errorf("calendar event %s not found", eventID)
	}
	event.ID = eventID
	p.events[eventID] = event
	return nil
}

func (p *InMemoryProvider) DeleteEvent(_ context.Context, _ string, eventID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.events[eventID]; !ok {
		return fmt.Errorf("calendar event %s not found", eventID)
	}
	delete(p.events, eventID)
	return nil
}

// Get returns a stored event; it exists for assertions in tests.
func (p *InMemoryProvider) Get(eventID string) (Event, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	event, ok := p.events[eventID]
	return event, ok
}
