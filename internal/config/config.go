// Package config loads the service configuration from environment
// variables, applies defaults and validates everything on startup so a
// misconfigured deployment fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Report   ReportConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout bounds reading a request including uploaded files (default: 60s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	// WriteTimeout bounds writing a response (default: 120s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"120s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is how long shutdown waits for running jobs (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 120s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"120s"`
}

// StoreConfig selects and tunes the report store.
type StoreConfig struct {
	// Driver is "sqlite" (embedded file) or "postgres" (default: sqlite)
	Driver string `env:"STORE_DRIVER" default:"sqlite"`

	// DatabaseURL is the PostgreSQL connection string, required for postgres
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// SQLitePath is the database file for the sqlite driver (default: reports.db)
	SQLitePath string `env:"SQLITE_PATH" default:"reports.db"`

	// MaxConns is the maximum number of pooled connections (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime closes connections idle for longer (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// RetryDelay is the pause before retrying a failed store call (default: 200ms)
	RetryDelay time.Duration `env:"STORE_RETRY_DELAY" default:"200ms"`
}

// UploadConfig limits what a single request may submit and how many jobs
// run at once.
type UploadConfig struct {
	// MaxFileSize is the maximum size of one uploaded file in bytes (default: 50MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`

	// MaxFiles is the maximum number of files in one merge (default: 20)
	MaxFiles int `env:"UPLOAD_MAX_FILES" default:"20"`

	// MaxConcurrent is the maximum number of parallel jobs (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a job waits for a free slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the general limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for file processing endpoints (default: 20)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ReportConfig holds report rendering settings.
type ReportConfig struct {
	// PreviewLimit caps values per column in the inline merge report (default: 1000)
	PreviewLimit int `env:"REPORT_PREVIEW_LIMIT" default:"1000"`

	// DefaultLanguage is used when a request names none: ru or uz (default: ru)
	DefaultLanguage string `env:"REPORT_DEFAULT_LANGUAGE" default:"ru"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
