package models

// NotificationPayload is the asynq task body for background notification
// delivery.
type NotificationPayload struct {
	BusinessID string            `json:"businessId"`
	Target     string            `json:"target"` // owner | customer
	ToPhone    string            `json:"toPhone,omitempty"`
	Title      string            `json:"title,omitempty"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data,omitempty"`
}
