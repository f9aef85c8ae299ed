package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the gate process. Policy
// lives in the gates file (see gates.go); the environment only says where
// things are and how to serve.
type Config struct {
	Port string

	// Database shared by the gate service and the operator CLI.
	DBPath string

	// Path to the gates policy file.
	GatesPath string

	// Auth
	JWTSecret string

	// Market data
	UseSyntheticFeed bool
	FeedSymbols      []string
	FeedIntervalMs   int

	// Paper executor tuning
	PaperSlippageBps float64

	// Alerting: "log" is the only in-repo sink.
	AlertSink string
}

// Load reads environment variables (optionally via .env) into Config.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	dbPath := getEnv("DB_PATH", "")
	if dbPath == "" {
		dbPath = getEnv("DATABASE_PATH", "./data/gate.db")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DBPath:           dbPath,
		GatesPath:        getEnv("GATES_CONFIG", "./gates.yaml"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret"),
		UseSyntheticFeed: getEnv("USE_SYNTHETIC_FEED", "true") == "true",
		FeedSymbols:      splitAndTrim(getEnv("FEED_SYMBOLS", "BTCUSDT,ETHUSDT")),
		FeedIntervalMs:   getEnvInt("FEED_INTERVAL_MS", 1000),
		PaperSlippageBps: getEnvFloat("PAPER_SLIPPAGE_BPS", 2),
		AlertSink:        getEnv("ALERT_SINK", "log"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
