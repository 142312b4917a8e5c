package models

// Business is the tenant configuration row consulted on every turn.
type Business struct {
	ID           string `bson:"id" json:"id"`
	Name         string `bson:"name" json:"name"`
	Vertical     string `bson:"vertical,omitempty" json:"vertical,omitempty"` // e.g. plumbing, hvac
	LanguageCode string `bson:"language_code,omitempty" json:"languageCode,omitempty"`

	OpenHour   *int   `bson:"open_hour,omitempty" json:"openHour,omitempty"`
	CloseHour  *int   `bson:"close_hour,omitempty" json:"closeHour,omitempty"`
	ClosedDays string `bson:"closed_days,omitempty" json:"closedDays,omitempty"` // e.g. "Sun" or "5,6"

	MaxJobsPerDay                 *int `bson:"max_jobs_per_day,omitempty" json:"maxJobsPerDay,omitempty"`
	ReserveMorningsForEmergencies bool `bson:"reserve_mornings_for_emergencies" json:"reserveMorningsForEmergencies"`
	TravelBufferMinutes           int  `bson:"travel_buffer_minutes" json:"travelBufferMinutes"`

	// EmergencyKeywords is a comma-separated per-tenant keyword list.
	EmergencyKeywords string `bson:"emergency_keywords,omitempty" json:"emergencyKeywords,omitempty"`
	// IntentThreshold in [0,1]; values >1 are interpreted as percentages.
	IntentThreshold *float64 `bson:"intent_threshold,omitempty" json:"intentThreshold,omitempty"`
	// ServiceDurationConfig holds overrides like "water_heater=90,drain_or_sewer=120".
	ServiceDurationConfig string `bson:"service_duration_config,omitempty" json:"serviceDurationConfig,omitempty"`

	CalendarID string `bson:"calendar_id,omitempty" json:"calendarId,omitempty"`
	OwnerPhone string `bson:"owner_phone,omitempty" json:"ownerPhone,omitempty"`
	// OwnerFCMToken is the push target for owner notifications.
	OwnerFCMToken string `bson:"owner_fcm_token,omitempty" json:"ownerFcmToken,omitempty"`

	Plan                 string `bson:"plan,omitempty" json:"plan,omitempty"`
	StripeSubscriptionID string `bson:"stripe_subscription_id,omitempty" json:"stripeSubscriptionId,omitempty"`
}
