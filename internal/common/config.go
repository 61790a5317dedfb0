package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Worker   WorkerConfig
	Company  CompanyConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr       string
	HTTPAddr       string
	UploadMaxBytes int64
}

// OCRConfig holds text acquisition configuration
type OCRConfig struct {
	WrapperURL   string
	Timeout      time.Duration
	PDFToText    string
	DisableProxy bool
}

// WorkerConfig sizes the ingest queue
type WorkerConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
	WatchDebounce  time.Duration
}

// CompanyConfig points at an optional YAML company profile
type CompanyConfig struct {
	ProfileFile string
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string
	Format string
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return &Config{
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			DSN:             getEnv("DB_URL", "file:invoices.db?_pragma=busy_timeout(5000)"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			PingTimeout:     getEnvAsDuration("DB_PING_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr:       getEnv("GRPC_ADDR", ":8080"),
			HTTPAddr:       getEnv("HTTP_ADDR", ":3001"),
			UploadMaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
		OCR: OCRConfig{
			WrapperURL:   getEnv("OCR_WRAPPER_URL", ""),
			Timeout:      getEnvAsDuration("OCR_TIMEOUT", 10*time.Second),
			PDFToText:    getEnv("PDFTOTEXT_PATH", "pdftotext"),
			DisableProxy: getEnvAsBool("OCR_DISABLE_WRAPPER", false),
		},
		Worker: WorkerConfig{
			Workers:        getEnvAsInt("WORKERS", 4),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 2*time.Minute),
			WatchDebounce:  getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
		},
		Company: CompanyConfig{
			ProfileFile: getEnv("COMPANY_PROFILE_FILE", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}, nil
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return NewAppError(CodeInvalidArgument, fmt.Sprintf("unsupported DB_DRIVER %q", c.Database.Driver), ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError(CodeInvalidArgument, "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" && c.Server.HTTPAddr == "" {
		return NewAppError(CodeInvalidArgument, "GRPC_ADDR or HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.UploadMaxBytes <= 0 {
		return NewAppError(CodeInvalidArgument, "UPLOAD_MAX_BYTES must be positive", ErrInvalidInput)
	}
	if c.Worker.Workers <= 0 || c.Worker.QueueSize <= 0 {
		return NewAppError(CodeInvalidArgument, "WORKERS and QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	return nil
}
