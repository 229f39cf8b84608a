package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	DBPath      string
	// Generative text API
	GeminiAPIKey string
	GeminiModel  string
	// Ingestion
	ChunkBudget int // max characters per knowledge chunk
	// Autosave
	AutosaveDebounce time.Duration // reset-on-edit delay
	AutosaveInterval time.Duration // fixed-period safety net
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "dev"),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		DBPath:           getEnv("DB_PATH", "data/minuta.db"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", ""),
		ChunkBudget:      getEnvInt("CHUNK_BUDGET", 1200),
		AutosaveDebounce: getEnvDuration("AUTOSAVE_DEBOUNCE", 2*time.Second),
		AutosaveInterval: getEnvDuration("AUTOSAVE_INTERVAL", 30*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
