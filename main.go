// File: dispatchly/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatchly/config"
	"dispatchly/cron"
	"dispatchly/database"
	appointmentRepo "dispatchly/database/repository/appointment"
	businessRepo "dispatchly/database/repository/business"
	customerRepo "dispatchly/database/repository/customer"
	"dispatchly/handlers"
	"dispatchly/middleware"
	"dispatchly/models"
	"dispatchly/routes"
	appointmentSvc "dispatchly/services/appointment"
	"dispatchly/services/calendar"
	"dispatchly/services/callback"
	"dispatchly/services/conversation"
	"dispatchly/services/intelligence"
	"dispatchly/services/notification"
	"dispatchly/services/scheduling"
	"dispatchly/services/session"
	"dispatchly/services/subscription"
	"dispatchly/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	businesses := businessRepo.NewMongoBusinessRepo()
	customers := customerRepo.NewMongoCustomerRepo()
	appointments := appointmentRepo.NewMongoAppointmentRepo()

	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	sessions := session.NewRedisStore(utils.GetSessionCacheClient(), sessionTTL)

	// Intent classification: Gemini when a key is configured, with the
	// deterministic keyword classifier as fallback; keyword-only otherwise.
	keywordClassifier := intelligence.NewKeywordClassifier()
	var classifier intelligence.IntentClassifier = keywordClassifier
	var fallback intelligence.IntentClassifier
	if config.AppConfig.GeminiAPIKey != "" {
		gemini, err := intelligence.NewGeminiClassifier(config.AppConfig.GeminiAPIKey)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize gemini classifier: %v", err)
		}
		classifier = gemini
		fallback = keywordClassifier
	}

	// Notifications are delivered by the asynq worker; the conversation flow
	// only ever enqueues.
	notifSvc, err := notification.NewDefaultService(notification.LogSMSSender{})
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()
	dispatcher := notification.NewAsyncDispatcher(asynqClient)
	cron.InitNotifyWorker(notifSvc, businesses)

	gate := subscription.NewGate(appointments, dispatcher, nil)

	engine := &scheduling.Engine{Geocoder: scheduling.NewStaticGeocoder()}
	calendarProvider := calendar.NewInMemoryProvider()
	callbackQueue := callback.NewQueue()

	manager := &conversation.Manager{
		Sessions:     sessions,
		Businesses:   businesses,
		Customers:    customers,
		Appointments: appointments,
		Engine:       engine,
		Classifier:   classifier,
		Fallback:     fallback,
		Calendar:     calendarProvider,
		Notifier:     dispatcher,
		Gate:         gate,
		Callbacks:    callbackQueue,
	}

	calendarDefaults := models.BusinessCalendarConfig{
		OpenHour:   config.AppConfig.DefaultOpenHour,
		CloseHour:  config.AppConfig.DefaultCloseHour,
		ClosedDays: scheduling.ParseClosedDays(config.AppConfig.DefaultClosedDays),
	}
	actions := &appointmentSvc.Actions{
		Appointments: appointments,
		Businesses:   businesses,
		Customers:    customers,
		Engine:       engine,
		Calendar:     calendarProvider,
		Notifier:     dispatcher,
		Defaults:     calendarDefaults,
	}

	sessionHandler := handlers.NewSessionHandler(manager)
	chatHandler := handlers.NewChatHandler(manager)
	callbackHandler := handlers.NewCallbackHandler(callbackQueue)
	appointmentHandler := handlers.NewAppointmentHandler(actions, appointments)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		StartVoiceSessionHandler: sessionHandler.StartSessionHandler,
		VoiceTurnHandler:         sessionHandler.TurnHandler,
		EndVoiceSessionHandler:   sessionHandler.EndSessionHandler,

		ChatTurnHandler: chatHandler.TurnHandler,

		ListCallbacksHandler:   callbackHandler.ListPendingHandler,
		ResolveCallbackHandler: callbackHandler.ResolveHandler,

		ListAppointmentsHandler:      appointmentHandler.ListHandler,
		CancelAppointmentHandler:     appointmentHandler.CancelHandler,
		RescheduleAppointmentHandler: appointmentHandler.RescheduleHandler,
		PendingRescheduleHandler:     appointmentHandler.PendingRescheduleHandler,
	}

	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(utils.SessionCacheClient, utils.DedupCacheClient, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
