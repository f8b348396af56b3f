package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rashedsumon/ai-receptionist/config"
	"github.com/rashedsumon/ai-receptionist/database"
	"github.com/rashedsumon/ai-receptionist/metrics"
	"github.com/rashedsumon/ai-receptionist/middleware"
	"github.com/rashedsumon/ai-receptionist/models"
	"github.com/rashedsumon/ai-receptionist/nlu"
	"github.com/rashedsumon/ai-receptionist/routes"
	"github.com/rashedsumon/ai-receptionist/services"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cfg := config.Get()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Disconnect()

	var callLog services.CallLog
	if database.Enabled() {
		callLog = database.NewMongoCallLog(database.GetMongoDB())
	}

	// Intent classifier
	rulesFile, err := config.LoadRulesFile(cfg.NLU.RulesFile)
	if err != nil {
		log.Fatalf("Failed to load intent rules: %v", err)
	}
	hybrid := nlu.New(nluOptions(cfg, rulesFile))

	if cfg.NLU.TrainOnStart && !hybrid.Trained() {
		trainOnStart(hybrid, cfg.NLU.DatasetPath)
	}

	if !cfg.SMSConfigured() {
		log.Println("WARNING: Vonage credentials not set, confirmation SMS will not be sent")
	}

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(metrics.Middleware())
	router.Use(middleware.CORS(cfg.Security.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "disabled"
		if database.Enabled() {
			dbStatus = "ok"
			if err := database.HealthCheck(c.Request.Context()); err != nil {
				dbStatus = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		c.JSON(status, gin.H{
			"status":         "ok",
			"timestamp":      time.Now(),
			"nlu_trained":    hybrid.Trained(),
			"sms_configured": cfg.SMSConfigured(),
			"database":       dbStatus,
		})
	})

	// Setup all routes
	routes.SetupRoutes(router, cfg, hybrid, callLog)

	// Log available endpoints
	logAvailableEndpoints(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Port)
		log.Printf("Voice webhook URL: http://localhost:%s/api/voice/transcript", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// nluOptions merges the environment settings with the optional rules file.
// Values from the file win.
func nluOptions(cfg *config.Config, rf *config.RulesFile) nlu.Options {
	opts := nlu.Options{
		RuleConfidence: cfg.NLU.RuleConfidence,
		ModelPath:      cfg.NLU.ModelPath,
		VectorizerPath: cfg.NLU.VectorizerPath,
		Train: nlu.TrainConfig{
			MaxFeatures: cfg.NLU.MaxFeatures,
			MaxIter:     cfg.NLU.MaxIter,
			C:           nlu.DefaultC,
		},
	}
	if rf == nil {
		return opts
	}

	log.Printf("Loaded %d intent rules from %s", len(rf.Rules), cfg.NLU.RulesFile)
	if len(rf.Rules) > 0 {
		opts.Rules = make([]nlu.IntentRule, 0, len(rf.Rules))
		for _, rule := range rf.Rules {
			opts.Rules = append(opts.Rules, nlu.IntentRule{
				Intent:   models.IntentLabel(rule.Intent),
				Triggers: rule.Triggers,
			})
		}
	}
	if rf.RuleConfidence > 0 {
		opts.RuleConfidence = rf.RuleConfidence
	}
	opts.Columns.TextColumns = rf.TextColumns
	opts.Columns.LabelColumns = rf.LabelColumns
	return opts
}

// trainOnStart trains from the dataset when it exists and from the demo
// samples otherwise. Failures leave the service on keyword rules.
func trainOnStart(hybrid *nlu.HybridNLU, datasetPath string) {
	var (
		result nlu.TrainResult
		err    error
	)

	if _, statErr := os.Stat(datasetPath); statErr == nil {
		log.Printf("Training intent model from %s", datasetPath)
		result, err = hybrid.TrainFromCSV(datasetPath, nil)
	} else {
		log.Println("No dataset found, training intent model on demo samples")
		result, err = hybrid.Train(nlu.DemoExamples())
	}
	metrics.RecordTraining(result.OK)

	switch {
	case err == nil:
		log.Println(result.Message)
	case errors.Is(err, nlu.ErrColumnsNotFound):
		log.Printf("WARNING: %s", result.Message)
	default:
		log.Printf("WARNING: intent model training failed: %v", err)
	}
}

// logAvailableEndpoints logs all registered routes
func logAvailableEndpoints(router *gin.Engine) {
	log.Println("\nAvailable endpoints:")
	routes := router.Routes()
	for _, route := range routes {
		log.Printf("  %s %s", route.Method, route.Path)
	}
	log.Println("")
}
