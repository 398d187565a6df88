package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port           string
		Env            string
		Timeout        time.Duration
		AllowedOrigins []string
		TrustedProxies []string
	}

	// Text generation gateway configuration
	Generation struct {
		APIKey  string
		Model   string
		BaseURL string
		Timeout time.Duration
	}

	// Dialogue engine configuration
	Dialogue struct {
		// HistoryWindow bounds how many recent turns feed the prompt,
		// regardless of conversation length.
		HistoryWindow int
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8080")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)
		instance.Server.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})
		instance.Server.TrustedProxies = getEnvStringSlice("TRUSTED_PROXIES", []string{"127.0.0.1"})

		// Generation config
		instance.Generation.APIKey = getEnvString("OPENAI_API_KEY", "")
		instance.Generation.Model = getEnvString("GENERATION_MODEL", "gpt-4o")
		instance.Generation.BaseURL = getEnvString("GENERATION_BASE_URL", "")
		instance.Generation.Timeout = getEnvDuration("GENERATION_TIMEOUT", 30*time.Second)

		// Dialogue config
		instance.Dialogue.HistoryWindow = getEnvInt("HISTORY_WINDOW", 5)

		// Security config
		instance.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 5))
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
