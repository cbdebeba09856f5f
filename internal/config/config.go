package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// PlacesConfig holds the place-search provider credentials and endpoint.
type PlacesConfig struct {
	APIKey  string
	BaseURL string
	QPS     float64
}

// DirectoryConfig points at the directory-search provider.
type DirectoryConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ScanConfig tunes the website fetcher.
type ScanConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// LogConfig selects the zap logger level and encoding.
type LogConfig struct {
	Level  string
	Format string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL   string
	Port          string
	AutoMigrate   bool
	RateLimitScan RateLimitConfig
	Places        PlacesConfig
	Directory     DirectoryConfig
	Scan          ScanConfig
	Log           LogConfig
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        port,
		AutoMigrate: parseBool(getEnv("AUTO_MIGRATE", "true"), true),
		Places: PlacesConfig{
			APIKey:  os.Getenv("GOOGLE_MAPS_API_KEY"),
			BaseURL: getEnv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
			QPS:     parseFloat(getEnv("PLACES_QPS", "10"), 10),
		},
		Directory: DirectoryConfig{
			BaseURL: getEnv("DIRECTORY_BASE_URL", "http://localhost:"+port+"/dummy/local-ch"),
			Timeout: parseDuration(getEnv("DIRECTORY_TIMEOUT", "10s"), 10*time.Second),
		},
		Scan: ScanConfig{
			Timeout:   parseDuration(getEnv("SCAN_TIMEOUT", "10s"), 10*time.Second),
			UserAgent: getEnv("SCAN_USER_AGENT", defaultUserAgent),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SCAN", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SCAN value: %w", err)
	}
	cfg.RateLimitScan = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseBool(input string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(input))
	if err != nil {
		return fallback
	}
	return b
}

func parseFloat(input string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}
