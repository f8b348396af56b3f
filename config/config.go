package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Call log database
	Database DatabaseConfig

	// Intent classification
	NLU NLUConfig

	// Flat-file calendar and CRM
	Storage StorageConfig

	// SMS Service
	SMS SMSConfig

	// Security
	Security SecurityConfig
}

type DatabaseConfig struct {
	Type     string // "none" or "mongodb"
	URI      string
	Name     string
	Host     string
	Port     string
	Username string
	Password string

	// Connection pool settings
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
}

type NLUConfig struct {
	ModelPath      string
	VectorizerPath string
	DatasetPath    string
	RulesFile      string
	RuleConfidence float64
	MaxFeatures    int
	MaxIter        int
	TrainOnStart   bool
}

type StorageConfig struct {
	CalendarPath string
	CRMPath      string
}

type SMSConfig struct {
	Provider  string // only "vonage" is implemented
	APIKey    string
	APISecret string
	From      string
	BaseURL   string
	Timeout   time.Duration
}

type SecurityConfig struct {
	AllowedOrigins []string
	WebhookSecret  string
}

var cfg *Config

// Load initializes the configuration
func Load() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg = fromEnv()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	return nil
}

// Get returns the loaded configuration
func Get() *Config {
	if cfg == nil {
		log.Fatal("Configuration not loaded. Call Load() first")
	}
	return cfg
}

func fromEnv() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		Database: DatabaseConfig{
			Type:     getEnv("DB_TYPE", "none"),
			URI:      getEnv("DATABASE_URL", ""),
			Name:     getEnv("DB_NAME", "ai_receptionist"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "27017"),
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),

			MaxConnections: getEnvAsInt("DB_MAX_CONNECTIONS", 100),
			MinConnections: getEnvAsInt("DB_MIN_CONNECTIONS", 10),
			MaxIdleTime:    getEnvAsDuration("DB_MAX_IDLE_TIME", "30m"),
		},

		NLU: NLUConfig{
			ModelPath:      getEnv("NLU_MODEL_PATH", "nlp_model.json"),
			VectorizerPath: getEnv("NLU_VECTORIZER_PATH", "tfidf_vect.json"),
			DatasetPath:    getEnv("NLU_DATASET_PATH", "data/Real_Estate_Customer_Care.csv"),
			RulesFile:      getEnv("NLU_RULES_FILE", "intent_rules.yaml"),
			RuleConfidence: getEnvAsFloat("NLU_RULE_CONFIDENCE", 0.9),
			MaxFeatures:    getEnvAsInt("NLU_MAX_FEATURES", 5000),
			MaxIter:        getEnvAsInt("NLU_MAX_ITER", 1000),
			TrainOnStart:   getEnvAsBool("NLU_TRAIN_ON_START", true),
		},

		Storage: StorageConfig{
			CalendarPath: getEnv("CALENDAR_PATH", "calendar_db.json"),
			CRMPath:      getEnv("CRM_PATH", "crm_leads.csv"),
		},

		SMS: SMSConfig{
			Provider:  getEnv("SMS_PROVIDER", "vonage"),
			APIKey:    getEnv("VONAGE_API_KEY", ""),
			APISecret: getEnv("VONAGE_API_SECRET", ""),
			From:      getEnv("VONAGE_FROM", "RE-Office"),
			BaseURL:   getEnv("VONAGE_BASE_URL", "https://rest.nexmo.com"),
			Timeout:   getEnvAsDuration("SMS_TIMEOUT", "15s"),
		},

		Security: SecurityConfig{
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8501"}),
			WebhookSecret:  getEnv("VOICE_WEBHOOK_SECRET", ""),
		},
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the values that would otherwise fail at first use.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "none", "":
	case "mongodb":
		if c.Database.URI == "" && (c.Database.Host == "" || c.Database.Port == "") {
			return fmt.Errorf("database URI or host/port must be provided")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.NLU.RuleConfidence <= 0 || c.NLU.RuleConfidence > 1 {
		return fmt.Errorf("NLU rule confidence must be in (0, 1], got %v", c.NLU.RuleConfidence)
	}

	if (c.NLU.ModelPath == "") != (c.NLU.VectorizerPath == "") {
		return fmt.Errorf("NLU model and vectorizer paths must be set together")
	}

	if c.SMS.Provider != "vonage" {
		return fmt.Errorf("unsupported SMS provider: %s", c.SMS.Provider)
	}

	return nil
}

// SMSConfigured reports whether SMS credentials are present.
func (c *Config) SMSConfigured() bool {
	return c.SMS.APIKey != "" && c.SMS.APISecret != ""
}

// BuildDatabaseURI constructs the database URI if not provided
func (c *Config) BuildDatabaseURI() string {
	if c.Database.URI != "" {
		return c.Database.URI
	}

	if c.Database.Username != "" && c.Database.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s",
			c.Database.Username,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Name,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}
