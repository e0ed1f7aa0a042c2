package config

import (
	"os"
	"strconv"
)

type Config struct {
	PORT string

	DB_USERNAME string
	DB_PASSWORD string
	DB_HOST     string
	DB_PORT     string
	DB_NAME     string
	DISABLE_TLS string

	// Server-side fallback credential for the generative AI provider.
	// Callers may override it per-request with the x-api-key header.
	GEMINI_API_KEY string

	// Redis for distributed rate limiting. Empty means in-memory limiting.
	REDIS_ADDR     string
	REDIS_PASSWORD string

	RATE_LIMIT_WINDOW_SECONDS int
	RATE_LIMIT_MAX_REQUESTS   int

	TELEMETRY_ENABLED bool

	// ClickHouse sink for generation telemetry events
	CLICKHOUSE_HOST     string
	CLICKHOUSE_PORT     int
	CLICKHOUSE_DATABASE string
	CLICKHOUSE_USERNAME string
	CLICKHOUSE_PASSWORD string
	CLICKHOUSE_USE_TLS  bool

	VIDEO_POLL_INTERVAL_SECONDS int
	VIDEO_POLL_TIMEOUT_SECONDS  int

	ASSET_DATA_PATH string

	// Otel
	OTEL_EXPORTER_OTLP_ENDPOINT string
}

func ReadConfig() *Config {
	// Default to HTTP port 8123 (more compatible than native port 9000)
	clickhousePort := 8123
	if portStr := os.Getenv("CLICKHOUSE_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			clickhousePort = port
		}
	}

	return &Config{
		PORT: GetEnvOrDefault("PORT", "6060"),

		DB_USERNAME: os.Getenv("DB_USERNAME"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_NAME:     os.Getenv("DB_NAME"),
		DISABLE_TLS: os.Getenv("DISABLE_TLS"),

		GEMINI_API_KEY: os.Getenv("GEMINI_API_KEY"),

		REDIS_ADDR:     os.Getenv("REDIS_ADDR"),
		REDIS_PASSWORD: os.Getenv("REDIS_PASSWORD"),

		RATE_LIMIT_WINDOW_SECONDS: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RATE_LIMIT_MAX_REQUESTS:   getEnvInt("RATE_LIMIT_MAX_REQUESTS", 30),

		TELEMETRY_ENABLED: GetEnvOrDefault("TELEMETRY_ENABLED", "true") == "true",

		CLICKHOUSE_HOST:     os.Getenv("CLICKHOUSE_HOST"),
		CLICKHOUSE_PORT:     clickhousePort,
		CLICKHOUSE_DATABASE: GetEnvOrDefault("CLICKHOUSE_DATABASE", "scenecraft"),
		CLICKHOUSE_USERNAME: GetEnvOrDefault("CLICKHOUSE_USERNAME", "default"),
		CLICKHOUSE_PASSWORD: os.Getenv("CLICKHOUSE_PASSWORD"),
		CLICKHOUSE_USE_TLS:  os.Getenv("CLICKHOUSE_USE_TLS") == "true",

		VIDEO_POLL_INTERVAL_SECONDS: getEnvInt("VIDEO_POLL_INTERVAL_SECONDS", 10),
		VIDEO_POLL_TIMEOUT_SECONDS:  getEnvInt("VIDEO_POLL_TIMEOUT_SECONDS", 600),

		ASSET_DATA_PATH: GetEnvOrDefault("ASSET_DATA_PATH", "./data/assets"),

		OTEL_EXPORTER_OTLP_ENDPOINT: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

func GetEnvOrDefault(key, defaultValue string) string {
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
