package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	EngineURL             string        `env:"ENGINE_URL" envDefault:"http://127.0.0.1:5001"`
	EnginePath            string        `env:"ENGINE_PATH" envDefault:"/api/backtest"`
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60"` // seconds
	EngineRequestsPerSec  int           `env:"ENGINE_REQUESTS_PER_SEC" envDefault:"5"`
	EngineMaxRetries      int           `env:"ENGINE_MAX_RETRIES" envDefault:"2"`
	EngineMaxRetryTimeout time.Duration `env:"ENGINE_MAX_RETRY_TIMEOUT" envDefault:"30"` // seconds
	HTTPHost              string        `env:"HTTP_HOST" envDefault:"127.0.0.1"`
	HTTPPort              int           `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel              string        `env:"LOG_LEVEL" envDefault:"info"`
	PresetsFile           string        `env:"PRESETS_FILE"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.EngineURL = getEnvWithDefault("ENGINE_URL", "http://127.0.0.1:5001")
	cfg.EnginePath = getEnvWithDefault("ENGINE_PATH", "/api/backtest")
	cfg.RequestTimeout = time.Duration(getEnvIntWithDefault("REQUEST_TIMEOUT", 60)) * time.Second
	cfg.EngineRequestsPerSec = getEnvIntWithDefault("ENGINE_REQUESTS_PER_SEC", 5)
	cfg.EngineMaxRetries = getEnvIntWithDefault("ENGINE_MAX_RETRIES", 2)
	cfg.EngineMaxRetryTimeout = time.Duration(getEnvIntWithDefault("ENGINE_MAX_RETRY_TIMEOUT", 30)) * time.Second
	cfg.HTTPHost = getEnvWithDefault("HTTP_HOST", "127.0.0.1")
	cfg.HTTPPort = getEnvIntWithDefault("HTTP_PORT", 8080)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.PresetsFile = os.Getenv("PRESETS_FILE")

	return &cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
