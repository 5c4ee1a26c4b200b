package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production, test

	// Storage backend: postgres or memory
	Store string

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Limits   RateLimitConfig
	Periods  PeriodConfig
	Reports  ReportConfig
	Audit    AuditConfig

	// Scheduler timezone (IANA name)
	Timezone string

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// AuthConfig holds bearer token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig bounds requests per client in a sliding window
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// PeriodConfig holds period lifecycle policy
type PeriodConfig struct {
	// SingleOpen rejects a second OPEN period for the same sector
	SingleOpen bool
}

// ReportConfig holds report cache settings
type ReportConfig struct {
	CacheTTL time.Duration
}

// AuditConfig holds the external audit sink target
type AuditConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only entry point that reads the environment
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads envFile into the environment first. An empty path
// falls back to the .env search of Load.
func LoadFrom(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else {
		loadEnvFile()
	}

	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Env:   getEnv("ENV", "development"),
		Store: getEnv("STORE", StorePostgres),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TTL", "8h"),
			Issuer:    getEnv("JWT_ISSUER", "douglas-api"),
		},

		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},

		Limits: RateLimitConfig{
			Enabled:  getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Requests: getEnvAsInt("RATE_LIMIT_REQUESTS", 120),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
		},

		Periods: PeriodConfig{
			SingleOpen: getEnvAsBool("PERIOD_SINGLE_OPEN", false),
		},

		Reports: ReportConfig{
			CacheTTL: getEnvAsDuration("REPORT_CACHE_TTL", "2m"),
		},

		Audit: AuditConfig{
			WebhookURL: getEnv("AUDIT_WEBHOOK_URL", ""),
		},

		Timezone: getEnv("TIMEZONE", "America/Sao_Paulo"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	switch c.Store {
	case StorePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE=%s", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE must be one of: %s, %s", StorePostgres, StoreMemory)
	}

	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	if c.Auth.JWTSecret == "" {
		if c.Env == "staging" || c.Env == "production" {
			return fmt.Errorf("JWT_SECRET is required in %s", c.Env)
		}
		c.Auth.JWTSecret = "dev-secret-change-me"
	}

	if c.Limits.Enabled && (c.Limits.Requests <= 0 || c.Limits.Window <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}

	return nil
}

// Location returns the configured scheduler timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
