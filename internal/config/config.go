package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	ListenAddr          string        // HTTP listen address, built from HOST and PORT
	LogLevel            string        // debug, info, warn or error
	LogFormat           string        // text or json
	SeedFile            string        // Optional YAML seed file; built-in seed when empty
	CORSOrigins         []string      // Allowed CORS origins
	UniqueEmailOnUpdate bool          // Reject updates that reuse another user's email
	EnableAdmin         bool          // Mount the /admin routes
	ShutdownTimeout     time.Duration // Graceful shutdown budget
}

// Load reads configuration from environment variables, falling back to defaults.
func Load() *Config {
	return &Config{
		ListenAddr:          net.JoinHostPort(os.Getenv("HOST"), envOrDefault("PORT", "3000")),
		LogLevel:            envOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envOrDefault("LOG_FORMAT", "text"),
		SeedFile:            os.Getenv("SEED_FILE"),
		CORSOrigins:         envOrDefaultList("CORS_ORIGINS", []string{"*"}),
		UniqueEmailOnUpdate: envOrDefaultBool("UNIQUE_EMAIL_ON_UPDATE", false),
		EnableAdmin:         envOrDefaultBool("ENABLE_ADMIN", false),
		ShutdownTimeout:     envOrDefaultDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envOrDefaultList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
