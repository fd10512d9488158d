package common

import (
	"os"
	"strconv"
	"time"

	"github.com/kodjo-amani/dossier-check/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Ingest   IngestConfig
	Checks   ChecksConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// IngestConfig holds dossier inbox configuration
type IngestConfig struct {
	InboxDir     string
	PollInterval time.Duration
	VisaType     constants.VisaType
}

// ChecksConfig holds the coherence validation thresholds
type ChecksConfig struct {
	NameSimilarity      float64
	HotelToleranceDays  int
	PaymentValidityDays int
	UrgentTravelDays    int
	LongStayNights      int
	RulesFile           string // optional workflow rule set (JSON)
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	visaType, _ := constants.CanonicalizeVisaType(getEnv("VISA_TYPE", "COURT_SEJOUR"))
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Ingest: IngestConfig{
			InboxDir:     getEnv("INBOX_DIR", "./inbox"),
			PollInterval: getEnvAsDuration("INBOX_POLL_INTERVAL", 5*time.Second),
			VisaType:     visaType,
		},
		Checks: ChecksConfig{
			NameSimilarity:      getEnvAsFloat64("NAME_SIMILARITY", 0.80),
			HotelToleranceDays:  getEnvAsInt("HOTEL_TOLERANCE_DAYS", 1),
			PaymentValidityDays: getEnvAsInt("PAYMENT_VALIDITY_DAYS", 30),
			UrgentTravelDays:    getEnvAsInt("URGENT_TRAVEL_DAYS", 5),
			LongStayNights:      getEnvAsInt("LONG_STAY_NIGHTS", 90),
			RulesFile:           getEnv("RULES_FILE", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	return NewValidator().
		Field("GRPC_ADDR", c.Server.GRPCAddr, Required).
		Field("INBOX_DIR", c.Ingest.InboxDir, Required).
		Field("NAME_SIMILARITY", c.Checks.NameSimilarity, InRange(0, 1)).
		Field("PAYMENT_VALIDITY_DAYS", c.Checks.PaymentValidityDays, Positive).
		Field("LONG_STAY_NIGHTS", c.Checks.LongStayNights, Positive).
		Error()
}
