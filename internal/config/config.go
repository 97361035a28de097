package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // embedded zone database so TIMEZONE resolves on slim images

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Record store configuration
	Database DatabaseConfig

	// Tracker business rules
	Tracker TrackerConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error

	EnableRequestLog bool
	EnableMetrics    bool
}

// DatabaseConfig holds record store configuration
type DatabaseConfig struct {
	Driver             string // sqlite, postgres or memory
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// TrackerConfig holds the tunable business constants
type TrackerConfig struct {
	WeeklyTarget      int    // promotions per salesperson per week
	FollowUpAfterDays int    // unordered leaders older than this need follow-up
	RecentWeeks       int    // entries in the dashboard week picker
	Timezone          string // IANA zone used for "today" and week boundaries
	FollowUpSchedule  string // cron spec with seconds for the follow-up sweep
	ExportDir         string // where the CLI writes export files
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	driver := strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite))
	defaultURL := ""
	if driver == DriverSQLite {
		defaultURL = "file:sgl-tracker.db"
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),

			EnableRequestLog: getEnvAsBool("ENABLE_REQUEST_LOG", true),
			EnableMetrics:    getEnvAsBool("ENABLE_METRICS", true),
		},
		Database: DatabaseConfig{
			Driver:             driver,
			URL:                getEnv("DATABASE_URL", defaultURL),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Tracker: TrackerConfig{
			WeeklyTarget:      getEnvAsInt("WEEKLY_TARGET", 6),
			FollowUpAfterDays: getEnvAsInt("FOLLOW_UP_AFTER_DAYS", 3),
			RecentWeeks:       getEnvAsInt("RECENT_WEEKS", 12),
			Timezone:          getEnv("TIMEZONE", "Africa/Addis_Ababa"),
			FollowUpSchedule:  getEnv("FOLLOW_UP_SCHEDULE", "0 0 8 * * *"),
			ExportDir:         getEnv("EXPORT_DIR", "."),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept"}),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER: %s (must be 'sqlite', 'postgres' or 'memory')", c.Database.Driver)
	}

	if c.Tracker.WeeklyTarget <= 0 {
		return fmt.Errorf("WEEKLY_TARGET must be positive, got %d", c.Tracker.WeeklyTarget)
	}

	if c.Tracker.FollowUpAfterDays < 0 {
		return fmt.Errorf("FOLLOW_UP_AFTER_DAYS cannot be negative, got %d", c.Tracker.FollowUpAfterDays)
	}

	if c.Tracker.RecentWeeks <= 0 {
		return fmt.Errorf("RECENT_WEEKS must be positive, got %d", c.Tracker.RecentWeeks)
	}

	if _, err := time.LoadLocation(c.Tracker.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Tracker.Timezone, err)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Tracker.FollowUpSchedule); err != nil {
		return fmt.Errorf("invalid FOLLOW_UP_SCHEDULE %q: %w", c.Tracker.FollowUpSchedule, err)
	}

	return nil
}

// Location returns the configured time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Tracker.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
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
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
