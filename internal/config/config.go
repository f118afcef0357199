package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/eztechnick/exam-portal/internal/gasclient"
)

type Config struct {
	Port        string
	Environment string

	// ScriptURL is the Apps Script deployment that owns all persistence.
	ScriptURL string

	AdminJWTSecret string
	AdminTokenTTL  time.Duration

	ConfirmWindow time.Duration

	Cache  CacheConfig
	Events EventConfig
}

type CacheConfig struct {
	Enabled  bool
	RedisURL string
	TTL      time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is optional outside development.
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		ScriptURL:      getEnv("SCRIPT_URL", gasclient.DefaultScriptURL),
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", "supersecretkey"),
		AdminTokenTTL:  getDuration("ADMIN_TOKEN_TTL", 12*time.Hour),
		ConfirmWindow:  getDuration("CONFIRM_WINDOW", 5*time.Second),
		Cache: CacheConfig{
			Enabled:  getBool("CACHE_ENABLED", false),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
			TTL:      getDuration("CACHE_TTL", 5*time.Minute),
		},
		Events: EventConfig{
			Enabled:      getBool("EVENTS_ENABLED", false),
			Publisher:    getEnv("EVENTS_PUBLISHER", "mock"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			Topic:        getEnv("EXAM_EVENTS_TOPIC", "exam-events"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
