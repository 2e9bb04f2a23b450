package config

import (
	"slices"
	"time"
)

// Storage drivers for the per-session backing store.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Lookup    LookupConfig    `yaml:"lookup"`
	Session   SessionConfig   `yaml:"session"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings. Credentials may only be allowed for an
// explicit origin list, never together with "*".
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LookupConfig holds settings for the remote dictionary service.
// A zero Timeout means the HTTP client never gives up on its own.
type LookupConfig struct {
	BaseURL    string        `yaml:"base_url"    env:"LOOKUP_BASE_URL"    env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	Timeout    time.Duration `yaml:"timeout"     env:"LOOKUP_TIMEOUT"     env-default:"10s"`
	Retries    int           `yaml:"retries"     env:"LOOKUP_RETRIES"     env-default:"0"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"LOOKUP_RETRY_DELAY" env-default:"500ms"`
}

// SessionConfig holds browser-session settings. The cookie carries no
// expiry, so the browser drops it when the session ends.
type SessionConfig struct {
	CookieName      string        `yaml:"cookie_name"      env:"SESSION_COOKIE_NAME"      env-default:"wordbook_session"`
	CookieSecure    bool          `yaml:"cookie_secure"    env:"SESSION_COOKIE_SECURE"    env-default:"false"`
	IdleTTL         time.Duration `yaml:"idle_ttl"         env:"SESSION_IDLE_TTL"         env-default:"24h"`
	JanitorInterval time.Duration `yaml:"janitor_interval" env:"SESSION_JANITOR_INTERVAL" env-default:"5m"`
}

// StorageConfig selects and tunes the per-session backing store.
type StorageConfig struct {
	Driver       string `yaml:"driver"        env:"STORAGE_DRIVER"        env-default:"memory"`
	FavoritesKey string `yaml:"favorites_key" env:"STORAGE_FAVORITES_KEY" env-default:"savedWords"`
	AutoMigrate  bool   `yaml:"auto_migrate"  env:"STORAGE_AUTO_MIGRATE"  env-default:"true"`
}

// DatabaseConfig holds PostgreSQL connection settings. Only used by the
// postgres driver.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// SQLiteConfig holds settings for the sqlite driver.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"./wordbook.db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig bounds how often one client may hit the lookup endpoint.
// SearchPerMinute of 0 disables the limiter.
type RateLimitConfig struct {
	SearchPerMinute int           `yaml:"search_per_minute" env:"RATE_LIMIT_SEARCH_PER_MINUTE" env-default:"60"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"  env:"RATE_LIMIT_CLEANUP_INTERVAL"  env-default:"5m"`
}

// Drivers returns the supported storage driver names.
func Drivers() []string {
	return []string{DriverMemory, DriverPostgres, DriverSQLite}
}

// IsDriverSupported reports whether name is a known storage driver.
func IsDriverSupported(name string) bool {
	return slices.Contains(Drivers(), name)
}
