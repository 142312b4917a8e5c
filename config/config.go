package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisDedupDB   int    `mapstructure:"REDIS_DEDUP_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Session lifecycle.
	SessionTTLMinutes int `mapstructure:"SESSION_TTL_MINUTES"`

	// Intent classification.
	GeminiAPIKey            string  `mapstructure:"GEMINI_API_KEY"`
	IntentConfidenceDefault float64 `mapstructure:"INTENT_CONFIDENCE_THRESHOLD"`

	// Calendar defaults applied when a tenant has no overrides.
	DefaultOpenHour   int    `mapstructure:"DEFAULT_OPEN_HOUR"`
	DefaultCloseHour  int    `mapstructure:"DEFAULT_CLOSE_HOUR"`
	DefaultClosedDays string `mapstructure:"DEFAULT_CLOSED_DAYS"`

	// Tenant defaults.
	DefaultLanguageCode string `mapstructure:"DEFAULT_LANGUAGE_CODE"`
	DefaultVertical     string `mapstructure:"DEFAULT_VERTICAL"`
	DefaultBusinessName string `mapstructure:"DEFAULT_BUSINESS_NAME"`

	// Billing.
	StripeKey             string `mapstructure:"STRIPE_KEY"`
	EnforceSubscription   bool   `mapstructure:"ENFORCE_SUBSCRIPTION"`
	SubscriptionGraceDays int    `mapstructure:"SUBSCRIPTION_GRACE_DAYS"`

	// Firebase service account for owner push notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_DEDUP_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("SESSION_TTL_MINUTES", 60)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("INTENT_CONFIDENCE_THRESHOLD", 0.35)
	viper.SetDefault("DEFAULT_OPEN_HOUR", 8)
	viper.SetDefault("DEFAULT_CLOSE_HOUR", 17)
	viper.SetDefault("DEFAULT_CLOSED_DAYS", "")
	viper.SetDefault("DEFAULT_LANGUAGE_CODE", "en")
	viper.SetDefault("DEFAULT_VERTICAL", "plumbing")
	viper.SetDefault("DEFAULT_BUSINESS_NAME", "Bristol Plumbing")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("ENFORCE_SUBSCRIPTION", false)
	viper.SetDefault("SUBSCRIPTION_GRACE_DAYS", 5)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
