// Package config provides configuration loading for the market agent
// service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the service.
type Config struct {
	// Server configuration
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	ShutdownGrace time.Duration

	// Model configuration
	GeminiAPIKey      string
	ModelName         string
	ModelBaseURL      string
	RequestsPerMinute int
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RetryMaxDelay     time.Duration

	// State store configuration
	StateStoreType string // "file", "memory" or "redis"
	StateDir       string
	RedisURL       string
	RedisTTL       time.Duration

	// Data and output directories
	DataDir     string
	ReportsDir  string
	PendingDir  string
	ApprovedDir string

	// Retention
	ReportMaxFiles   int
	SnapshotMaxFiles int

	// Report archive backend
	ArchiveBackend string // "local" or "s3"
	S3Endpoint     string
	S3Bucket       string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3UseSSL       bool
	S3PathPrefix   string

	// Mail configuration
	MailEnabled  bool
	MailTestMode bool
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailTo       []string

	// OIDC configuration
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCEnabled      bool

	// CORS configuration
	CORSOrigins []string

	// Rate limiting for the HTTP surface
	RateLimitRPS   float64
	RateLimitBurst int

	// Tracing
	TracingEnabled bool
	OTLPEndpoint   string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		// Server
		Port:          getEnv("PORT", "8080"),
		ReadTimeout:   getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:  getDuration("WRITE_TIMEOUT", 10*time.Minute), // model calls are slow
		ShutdownGrace: getDuration("SHUTDOWN_GRACE", 10*time.Second),

		// Model
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		ModelName:         getEnv("MODEL_NAME", "gemini-2.0-flash"),
		ModelBaseURL:      getEnv("MODEL_BASE_URL", ""),
		RequestsPerMinute: getInt("MODEL_RPM", 10),
		MaxRetries:        getInt("MODEL_MAX_RETRIES", 3),
		RetryBaseDelay:    getDuration("MODEL_RETRY_BASE_DELAY", 2*time.Second),
		RetryMaxDelay:     getDuration("MODEL_RETRY_MAX_DELAY", 60*time.Second),

		// State store
		StateStoreType: getEnv("STATE_STORE", "file"),
		StateDir:       getEnv("STATE_DIR", "./state"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		RedisTTL:       getDuration("REDIS_TTL", 0),

		// Directories
		DataDir:     getEnv("DATA_DIR", "./data"),
		ReportsDir:  getEnv("REPORTS_DIR", "./reports"),
		PendingDir:  getEnv("PENDING_DIR", "./drafts/pending"),
		ApprovedDir: getEnv("APPROVED_DIR", "./drafts/approved"),

		// Retention
		ReportMaxFiles:   getInt("REPORT_MAX_FILES", 30),
		SnapshotMaxFiles: getInt("SNAPSHOT_MAX_FILES", 24),

		// Archive backend
		ArchiveBackend: getEnv("ARCHIVE_BACKEND", "local"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3Bucket:       getEnv("S3_BUCKET", "market-agent"),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		S3UseSSL:       getBool("S3_USE_SSL", true),
		S3PathPrefix:   getEnv("S3_PATH_PREFIX", "reports"),

		// Mail
		MailEnabled:  getBool("MAIL_ENABLED", false),
		MailTestMode: getBool("MAIL_TEST_MODE", false),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),
		MailTo:       getStringSlice("MAIL_TO", nil),

		// OIDC
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCEnabled:      getBool("OIDC_ENABLED", false),

		// CORS
		CORSOrigins: getStringSlice("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),

		// Rate limiting
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 50.0),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 100),

		// Tracing
		TracingEnabled: getBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		return strings.Split(val, ",")
	}
	return defaultVal
}
