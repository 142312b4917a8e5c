package models

import "time"

// TimeSlot is a candidate [start,end) window for a service appointment.
// Times are stored and compared in UTC. Invariant: Start < End.
type TimeSlot struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// BusinessCalendarConfig is a read-only per-tenant snapshot of scheduling policy.
// When CloseHour <= OpenHour the tenant is treated as always open; that is an
// explicit policy, not a configuration error.
type BusinessCalendarConfig struct {
	OpenHour  int `json:"openHour"`
	CloseHour int `json:"closeHour"`
	// ClosedDays holds weekday indices with Monday=0.
	ClosedDays map[int]bool `json:"closedDays,omitempty"`
	// MaxJobsPerDay caps SCHEDULED/CONFIRMED appointments per day; nil means no cap.
	MaxJobsPerDay                 *int           `json:"maxJobsPerDay,omitempty"`
	ReserveMorningsForEmergencies bool           `json:"reserveMorningsForEmergencies"`
	TravelBufferMinutes           int            `json:"travelBufferMinutes"`
	ServiceDurations              map[string]int `json:"serviceDurations,omitempty"` // service type -> minutes
}

// AlwaysOpen reports whether the hours configuration disables the open/close window.
func (c BusinessCalendarConfig) AlwaysOpen() bool {
	return c.CloseHour <= c.OpenHour
}

// ClosedOn reports whether the tenant is closed on the given weekday (Monday=0).
func (c BusinessCalendarConfig) ClosedOn(weekday int) bool {
	if c.AlwaysOpen() {
		return false
	}
	return c.ClosedDays[weekday]
}
