package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rashedsumon/ai-receptionist/config"
	"github.com/rashedsumon/ai-receptionist/controllers"
	"github.com/rashedsumon/ai-receptionist/metrics"
	"github.com/rashedsumon/ai-receptionist/middleware"
	"github.com/rashedsumon/ai-receptionist/nlu"
	"github.com/rashedsumon/ai-receptionist/services"
)

// SetupRoutes wires services and controllers onto router. callLog may be
// nil, in which case calls are kept in memory.
func SetupRoutes(router *gin.Engine, cfg *config.Config, hybrid *nlu.HybridNLU, callLog services.CallLog) {
	// Initialize services
	calendarService := services.NewCalendarService(cfg.Storage.CalendarPath)
	crmService := services.NewCRMService(cfg.Storage.CRMPath)
	smsService := services.NewSMSService(cfg.SMS)
	receptionistService := services.NewReceptionistService(hybrid, calendarService, crmService, smsService, callLog)

	// Initialize controllers
	callController := controllers.NewCallController(receptionistService, hybrid)
	nluController := controllers.NewNLUController(hybrid)
	officeController := controllers.NewOfficeController(calendarService, crmService, smsService)
	wsController := controllers.NewWebSocketController(receptionistService, cfg.Security.AllowedOrigins)
	voiceController := controllers.NewVoiceController(receptionistService)

	router.GET("/metrics", metrics.Handler())

	public := router.Group("/api/v1")
	{
		// Call simulation
		public.POST("/calls", callController.HandleCall)
		public.GET("/calls", callController.ListCalls)
		public.GET("/intents", callController.GetSupportedIntents)

		// WebSocket for live call simulation
		public.GET("/ws", wsController.HandleWebSocket)

		// Intent classifier
		public.POST("/nlu/predict", nluController.Predict)
		public.POST("/nlu/train", nluController.Train)
		public.GET("/nlu/status", nluController.Status)

		// Calendar, CRM and SMS
		public.GET("/bookings", officeController.ListBookings)
		public.GET("/leads", officeController.ListLeads)
		public.POST("/sms/send", officeController.SendSMS)
		public.GET("/sms/status", officeController.GetSMSStatus)
	}

	// Voice webhook routes
	voice := router.Group("/api/voice")
	{
		voice.POST("/transcript", middleware.VerifyWebhookSignature(cfg.Security.WebhookSecret), voiceController.HandleTranscript)
		voice.GET("/notes", voiceController.GetNotes)
	}

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})
}
