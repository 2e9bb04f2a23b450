package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for the %s driver", DriverPostgres)
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			return fmt.Errorf("sqlite.path is required for the %s driver", DriverSQLite)
		}
	}

	if err := c.Lookup.validate(); err != nil {
		return fmt.Errorf("lookup: %w", err)
	}

	if err := c.Session.validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	if err := c.CORS.validate(); err != nil {
		return fmt.Errorf("cors: %w", err)
	}

	if c.RateLimit.SearchPerMinute < 0 {
		return fmt.Errorf("rate_limit.search_per_minute must be >= 0 (got %d)", c.RateLimit.SearchPerMinute)
	}

	return nil
}

func (s *StorageConfig) validate() error {
	if !IsDriverSupported(s.Driver) {
		return fmt.Errorf("driver must be one of %v (got %q)", Drivers(), s.Driver)
	}
	if strings.TrimSpace(s.FavoritesKey) == "" {
		return fmt.Errorf("favorites_key must not be empty")
	}
	return nil
}

func (l *LookupConfig) validate() error {
	u, err := url.Parse(l.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be an http(s) URL (got %q)", l.BaseURL)
	}
	if l.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0 (got %v)", l.Timeout)
	}
	if l.Retries < 0 {
		return fmt.Errorf("retries must be >= 0 (got %d)", l.Retries)
	}
	if l.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must be >= 0 (got %v)", l.RetryDelay)
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if strings.TrimSpace(s.CookieName) == "" {
		return fmt.Errorf("cookie_name must not be empty")
	}
	if s.IdleTTL <= 0 {
		return fmt.Errorf("idle_ttl must be > 0 (got %v)", s.IdleTTL)
	}
	if s.JanitorInterval <= 0 {
		return fmt.Errorf("janitor_interval must be > 0 (got %v)", s.JanitorInterval)
	}
	return nil
}

func (c *CORSConfig) validate() error {
	if !c.AllowCredentials {
		return nil
	}
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if strings.TrimSpace(o) == "*" {
			return fmt.Errorf("allow_credentials requires explicit allowed_origins, not %q", "*")
		}
	}
	return nil
}
