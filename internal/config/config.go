package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Form server
	HTTPHost    string
	HTTPPort    int
	CORSOrigins []string

	// Prediction service
	PredictorURL     string
	PredictorTimeout time.Duration
	PredictorRate    float64

	// Roster catalog; empty means the embedded default
	CatalogPath string

	// Sessions
	SessionMax int
	SessionTTL time.Duration

	// History: sqlite path or postgres:// DSN, empty disables
	HistoryDSN string

	// Discord
	DiscordWebhookURL string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPHost:    envStr("FORM_HTTP_HOST", "0.0.0.0"),
		HTTPPort:    envInt("FORM_HTTP_PORT", 8080),
		CORSOrigins: envList("CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),

		// The browser build used VITE_API_URL for the same value.
		PredictorURL:     envStr("PREDICTOR_API_URL", envStr("VITE_API_URL", "http://127.0.0.1:8000")),
		PredictorTimeout: time.Duration(envInt("PREDICTOR_TIMEOUT_SEC", 30)) * time.Second,
		PredictorRate:    envFloat("PREDICTOR_RATE_PER_SEC", 5),

		CatalogPath: envStr("CATALOG_PATH", ""),

		SessionMax: envInt("SESSION_MAX", 1024),
		SessionTTL: time.Duration(envInt("SESSION_TTL_MIN", 120)) * time.Minute,

		HistoryDSN: envStrAllowEmpty("HISTORY_DSN", "data/predictions.db"),

		DiscordWebhookURL: envStr("DISCORD_WEBHOOK_URL", ""),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envStrAllowEmpty distinguishes "unset" from "set to empty" so a feature
// with a default can still be switched off.
func envStrAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
