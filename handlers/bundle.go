package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct for route
// registration.
type HandlerBundle struct {
	// Voice session endpoints.
	StartVoiceSessionHandler gin.HandlerFunc
	VoiceTurnHandler         gin.HandlerFunc
	EndVoiceSessionHandler   gin.HandlerFunc

	// Web chat endpoint.
	ChatTurnHandler gin.HandlerFunc

	// Callback queue endpoints.
	ListCallbacksHandler   gin.HandlerFunc
	ResolveCallbackHandler gin.HandlerFunc

	// Appointment endpoints.
	ListAppointmentsHandler      gin.HandlerFunc
	CancelAppointmentHandler     gin.HandlerFunc
	RescheduleAppointmentHandler gin.HandlerFunc
	PendingRescheduleHandler     gin.HandlerFunc
}
