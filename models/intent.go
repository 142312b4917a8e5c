package models

// Intent labels produced by the classifier.
const (
	IntentEmergency  = "emergency"
	IntentSchedule   = "schedule"
	IntentReschedule = "reschedule"
	IntentCancel     = "cancel"
	IntentFAQ        = "faq"
	IntentGreeting   = "greeting"
	IntentOther      = "other"
	IntentFallback   = "fallback"
)

// IntentResult is one classification outcome.
type IntentResult struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Provider   string  `json:"provider"`
}
