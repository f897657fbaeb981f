package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	// Storage
	DBDriver    string // "postgres" or "sqlite"
	DatabaseURL string
	SQLitePath  string
	TablePrefix string
	// Caller authentication: JWKS for production, shared HMAC secret for local/dev
	JWKSURL        string
	AuthHMACSecret string
	// Action tokens (per-action anti-replay credentials)
	ActionTokenSecret string
	ActionTokenTTL    time.Duration
	CORSOrigins       string
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool // Enables debug-level logging
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       env,
		DBDriver:          getEnv("DB_DRIVER", getDefaultDriver(env)),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SQLitePath:        getEnv("SQLITE_PATH", "binder.db"),
		TablePrefix:       getTablePrefix(env),
		JWKSURL:           getEnv("JWKS_URL", ""),
		AuthHMACSecret:    getEnv("AUTH_HMAC_SECRET", ""),
		ActionTokenSecret: getEnv("ACTION_TOKEN_SECRET", ""),
		ActionTokenTTL:    getDuration("ACTION_TOKEN_TTL", 12*time.Hour),
		CORSOrigins:       getEnv("CORS_ORIGINS", "http://localhost:3000"),
		LogDir:            getEnv("LOG_DIR", ""),
		LogMaxFiles:       getInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDriver returns the storage driver used when DB_DRIVER is unset
func getDefaultDriver(env string) string {
	if env == "prod" {
		return "postgres"
	}
	return "sqlite"
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
