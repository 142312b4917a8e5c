package models

import "time"

// Stage identifies where a call session is in the intake dialogue.
type Stage string

const (
	StageGreeting       Stage = "GREETING"
	StageAskName        Stage = "ASK_NAME"
	StageAskAddress     Stage = "ASK_ADDRESS"
	StageConfirmAddress Stage = "CONFIRM_ADDRESS"
	StageAskProblem     Stage = "ASK_PROBLEM"
	StageAskSchedule    Stage = "ASK_SCHEDULE"
	StageConfirmSlot    Stage = "CONFIRM_SLOT"
	StageCompleted      Stage = "COMPLETED"
)

// SessionStatus is the disposition of a call session.
type SessionStatus string

const (
	StatusActive          SessionStatus = "ACTIVE"
	StatusScheduled       SessionStatus = "SCHEDULED"
	StatusPendingFollowup SessionStatus = "PENDING_FOLLOWUP"
	StatusCompleted       SessionStatus = "COMPLETED"
	StatusAbandoned       SessionStatus = "ABANDONED"
	StatusCancelled       SessionStatus = "CANCELLED"
)

// IsTerminal reports whether the status is a valid final disposition.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case StatusScheduled, StatusPendingFollowup, StatusCompleted, StatusAbandoned, StatusCancelled:
		return true
	}
	return false
}

// CallSession holds the state of one in-flight conversation. It is mutated
// only by the conversation manager during a turn and owned by the session store.
type CallSession struct {
	ID          string `bson:"id" json:"id"`
	BusinessID  string `bson:"business_id" json:"businessId"`
	Channel     string `bson:"channel" json:"channel"` // phone | web | sms
	CallerPhone string `bson:"caller_phone,omitempty" json:"callerPhone,omitempty"`
	CallerName  string `bson:"caller_name,omitempty" json:"callerName,omitempty"`

	Address        string `bson:"address,omitempty" json:"address,omitempty"`
	ProblemSummary string `bson:"problem_summary,omitempty" json:"problemSummary,omitempty"`
	// RequestedTime is the ISO instant of a tentatively proposed slot start.
	RequestedTime string `bson:"requested_time,omitempty" json:"requestedTime,omitempty"`

	IsEmergency                  bool     `bson:"is_emergency" json:"isEmergency"`
	EmergencyConfidence          float64  `bson:"emergency_confidence" json:"emergencyConfidence"`
	EmergencyReasons             []string `bson:"emergency_reasons,omitempty" json:"emergencyReasons,omitempty"`
	EmergencyConfirmationPending bool     `bson:"emergency_confirmation_pending" json:"emergencyConfirmationPending"`
	// EmergencyConfirmationDenied records a NO answer so the mid-range score
	// never re-prompts the same caller.
	EmergencyConfirmationDenied bool `bson:"emergency_confirmation_denied,omitempty" json:"-"`
	// PendingConfirmationInput holds the utterance that triggered the
	// confirmation question; a YES replays it through the stage dispatch.
	PendingConfirmationInput string `bson:"pending_confirmation_input,omitempty" json:"-"`

	Intent           string  `bson:"intent,omitempty" json:"intent,omitempty"`
	IntentConfidence float64 `bson:"intent_confidence" json:"intentConfidence"`
	// RecentUtterances is the rolling window of caller turns handed to the
	// intent classifier as dialogue context.
	RecentUtterances []string `bson:"recent_utterances,omitempty" json:"-"`

	Stage        Stage         `bson:"stage" json:"stage"`
	Status       SessionStatus `bson:"status" json:"status"`
	NoInputCount int           `bson:"no_input_count" json:"noInputCount"`
	LeadSource   string        `bson:"lead_source,omitempty" json:"leadSource,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// SessionState is the externally visible snapshot returned after each turn.
type SessionState struct {
	SessionID                    string    `json:"sessionId"`
	Stage                        Stage     `json:"stage"`
	Status                       SessionStatus `json:"status"`
	CallerPhone                  string    `json:"callerPhone,omitempty"`
	CallerName                   string    `json:"callerName,omitempty"`
	Address                      string    `json:"address,omitempty"`
	ProblemSummary               string    `json:"problemSummary,omitempty"`
	RequestedTime                string    `json:"requestedTime,omitempty"`
	IsEmergency                  bool      `json:"isEmergency"`
	EmergencyConfidence          float64   `json:"emergencyConfidence"`
	EmergencyReasons             []string  `json:"emergencyReasons,omitempty"`
	EmergencyConfirmationPending bool      `json:"emergencyConfirmationPending"`
	ProposedSlot                 *TimeSlot `json:"proposedSlot,omitempty"`
}

// ConversationResult is returned to the transport adapter after every turn.
type ConversationResult struct {
	ReplyText string       `json:"replyText"`
	NewState  SessionState `json:"newState"`
}
