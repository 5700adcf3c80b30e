package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// JWT
	JWTSecret string

	// AMQP (notification publisher; optional, disabled when empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Billing defaults applied when a card has no configured days
	DefaultClosingDay int
	DefaultDueDay     int

	// ForecastMonths is how many future months ListWithForecast projects
	ForecastMonths int

	// JobAPIKey guards the internal scheduler endpoints
	JobAPIKey string

	// Rate limiting (requests per second, burst)
	RateLimitRPS   float64
	RateLimitBurst int
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "centavo.events"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "centavo.notifications"),

		DefaultClosingDay: getEnvInt("DEFAULT_CLOSING_DAY", 1),
		DefaultDueDay:     getEnvInt("DEFAULT_DUE_DAY", 10),
		ForecastMonths:    getEnvInt("FORECAST_MONTHS", 6),

		JobAPIKey: getEnv("JOB_API_KEY", ""),

		RateLimitRPS:   float64(getEnvInt("RATE_LIMIT_RPS", 10)),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 30),
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}
