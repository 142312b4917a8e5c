package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dispatchly/handlers"
	"dispatchly/middleware"
)

// RegisterVoiceRoutes registers the telephony session endpoints. The turn
// endpoint is the webhook target, so it gets replay protection.
func RegisterVoiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/voice")
	{
		api.POST("/sessions", middleware.ReplayProtectionMiddleware(), hb.StartVoiceSessionHandler)
		api.POST("/sessions/:sessionID/turns", middleware.ReplayProtectionMiddleware(), hb.VoiceTurnHandler)
		api.DELETE("/sessions/:sessionID", hb.EndVoiceSessionHandler)
	}
}

// RegisterChatRoutes registers the web-chat widget endpoint.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/chat/turns", hb.ChatTurnHandler)
}

// RegisterBusinessRoutes registers owner-facing tenant endpoints.
func RegisterBusinessRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/businesses/:businessID")
	{
		api.GET("/callbacks", hb.ListCallbacksHandler)
		api.POST("/callbacks/resolve", hb.ResolveCallbackHandler)
		api.GET("/appointments", hb.ListAppointmentsHandler)
	}
}

// RegisterAppointmentRoutes registers appointment mutation endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments/:appointmentID")
	{
		api.POST("/cancel", hb.CancelAppointmentHandler)
		api.POST("/reschedule", hb.RescheduleAppointmentHandler)
		api.POST("/pending-reschedule", hb.PendingRescheduleHandler)
	}
}

// RegisterOpsRoutes registers the health and metrics endpoints.
func RegisterOpsRoutes(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Event-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterVoiceRoutes(r, hb)
	RegisterChatRoutes(r, hb)
	RegisterBusinessRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterOpsRoutes(r)
}
