package models

import "time"

// AppointmentStatus values mirror what the CRM exposes. Only SCHEDULED and
// CONFIRMED rows count toward capacity and conflict checks.
type AppointmentStatus string

const (
	AppointmentScheduled         AppointmentStatus = "SCHEDULED"
	AppointmentConfirmed         AppointmentStatus = "CONFIRMED"
	AppointmentCancelled         AppointmentStatus = "CANCELLED"
	AppointmentPendingReschedule AppointmentStatus = "PENDING_RESCHEDULE"
)

// CountsTowardCapacity reports whether the status occupies calendar time.
func (s AppointmentStatus) CountsTowardCapacity() bool {
	return s == AppointmentScheduled || s == AppointmentConfirmed
}

// Appointment is a booked job as stored in the appointment repository.
type Appointment struct {
	ID              string            `bson:"id" json:"id"`
	BusinessID      string            `bson:"business_id" json:"businessId"`
	CustomerID      string            `bson:"customer_id,omitempty" json:"customerId,omitempty"`
	StartTime       time.Time         `bson:"start_time" json:"startTime"`
	EndTime         time.Time         `bson:"end_time" json:"endTime"`
	Status          AppointmentStatus `bson:"status" json:"status"`
	TechnicianID    string            `bson:"technician_id,omitempty" json:"technicianId,omitempty"`
	Address         string            `bson:"address,omitempty" json:"address,omitempty"`
	ServiceType     string            `bson:"service_type,omitempty" json:"serviceType,omitempty"`
	IsEmergency     bool              `bson:"is_emergency" json:"isEmergency"`
	Description     string            `bson:"description,omitempty" json:"description,omitempty"`
	LeadSource      string            `bson:"lead_source,omitempty" json:"leadSource,omitempty"`
	JobStage        string            `bson:"job_stage,omitempty" json:"jobStage,omitempty"`
	CalendarEventID string            `bson:"calendar_event_id,omitempty" json:"calendarEventId,omitempty"`
	QuotedValue     *float64          `bson:"quoted_value,omitempty" json:"quotedValue,omitempty"`
	QuoteStatus     string            `bson:"quote_status,omitempty" json:"quoteStatus,omitempty"`
	CreatedAt       time.Time         `bson:"created_at" json:"createdAt"`
}

// AppointmentUpdate carries the mutable fields of an appointment. Nil fields
// are left untouched by Repository.Update.
type AppointmentUpdate struct {
	StartTime *time.Time
	EndTime   *time.Time
	Status    *AppointmentStatus
	JobStage  *string
}
