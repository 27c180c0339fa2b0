package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// USchedule vendor API
	USStagingHost    string
	USProductionHost string
	USAlias          string
	USAppKey         string
	USTimeout        time.Duration

	// Card vault storage
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	CardVaultTTL  time.Duration

	// Booking sessions
	SessionIdleTimeout time.Duration

	// HTTP surface
	CORSAllowedOrigins []string
	AuthRateLimitBurst int
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		USStagingHost:    getEnv("USCHEDULE_STAGING_HOST", "https://beta.uschedule.com"),
		USProductionHost: getEnv("USCHEDULE_PRODUCTION_HOST", "https://clients.uschedule.com"),
		USAlias:          getEnv("USCHEDULE_ALIAS", ""),
		USAppKey:         getEnv("USCHEDULE_APP_KEY", ""),
		USTimeout:        getEnvAsDuration("USCHEDULE_TIMEOUT", 20*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		CardVaultTTL:  getEnvAsDuration("CARD_VAULT_TTL", 0),

		SessionIdleTimeout: getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		AuthRateLimitBurst: getEnvAsInt("AUTH_RATE_LIMIT_BURST", 5),
	}
}

// Hosts returns the vendor hosts in authentication fallback order:
// staging first, production second.
func (c *Config) Hosts() []string {
	hosts := make([]string, 0, 2)
	for _, h := range []string{c.USStagingHost, c.USProductionHost} {
		h = strings.TrimRight(strings.TrimSpace(h), "/")
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
