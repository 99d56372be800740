package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Tracking  TrackingConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	PoolMin        int
	PoolMax        int
	MigrateOnStart bool
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// AuthConfig describes how bearer tokens issued by the hosted auth service are verified.
// Either JWTSecret (HS256) or JWKSURL must be set for authenticated routes to work.
type AuthConfig struct {
	JWTSecret string
	JWKSURL   string
	Audience  string
}

// Configured reports whether any token verification method is available.
func (a AuthConfig) Configured() bool {
	return a.JWTSecret != "" || a.JWKSURL != ""
}

// StorageConfig holds S3-compatible object store configuration.
type StorageConfig struct {
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	Bucket     string
	CDNURL     string
	PublicRead bool
	UseSSL     bool
}

// Configured reports whether the object store can be reached.
func (s StorageConfig) Configured() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != "" && s.Bucket != ""
}

// TrackingConfig holds the windows used by the session and visit trackers.
type TrackingConfig struct {
	SessionTimeout   time.Duration
	VisitDedupWindow time.Duration
	RecorderDelay    time.Duration
	CookieSecret     string
	CookieSecure     bool
}

// ReportingConfig holds settings for the analytics dashboards.
type ReportingConfig struct {
	Timezone string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("DB_MIGRATE_ON_START", false)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_PUBLIC_READ", false)
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("TRACKING_SESSION_TIMEOUT", "30m")
	v.SetDefault("TRACKING_VISIT_DEDUP_WINDOW", "5m")
	v.SetDefault("TRACKING_RECORDER_DELAY", "100ms")
	v.SetDefault("REPORTING_TIMEZONE", "Africa/Blantyre")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			Name:           v.GetString("DB_NAME"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			PoolMin:        v.GetInt("DB_POOL_MIN"),
			PoolMax:        v.GetInt("DB_POOL_MAX"),
			MigrateOnStart: v.GetBool("DB_MIGRATE_ON_START"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("AUTH_JWT_SECRET"),
			JWKSURL:   v.GetString("AUTH_JWKS_URL"),
			Audience:  v.GetString("AUTH_AUDIENCE"),
		},
		Storage: StorageConfig{
			Endpoint:   v.GetString("STORAGE_ENDPOINT"),
			Region:     v.GetString("STORAGE_REGION"),
			AccessKey:  v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:  v.GetString("STORAGE_SECRET_KEY"),
			Bucket:     v.GetString("STORAGE_BUCKET"),
			CDNURL:     strings.TrimRight(v.GetString("STORAGE_CDN_URL"), "/"),
			PublicRead: v.GetBool("STORAGE_PUBLIC_READ"),
			UseSSL:     v.GetBool("STORAGE_USE_SSL"),
		},
		Tracking: TrackingConfig{
			SessionTimeout:   v.GetDuration("TRACKING_SESSION_TIMEOUT"),
			VisitDedupWindow: v.GetDuration("TRACKING_VISIT_DEDUP_WINDOW"),
			RecorderDelay:    v.GetDuration("TRACKING_RECORDER_DELAY"),
			CookieSecret:     v.GetString("TRACKING_COOKIE_SECRET"),
		},
		Reporting: ReportingConfig{
			Timezone: v.GetString("REPORTING_TIMEZONE"),
		},
	}
	cfg.Tracking.CookieSecure = cfg.Server.Env == "production"

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
// Credentials for the hosted auth service and the object store are not
// checked here; see Warnings.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if c.Tracking.SessionTimeout <= 0 {
		return fmt.Errorf("TRACKING_SESSION_TIMEOUT must be positive")
	}
	if c.Tracking.VisitDedupWindow <= 0 {
		return fmt.Errorf("TRACKING_VISIT_DEDUP_WINDOW must be positive")
	}
	if c.Tracking.RecorderDelay < 0 {
		return fmt.Errorf("TRACKING_RECORDER_DELAY must be non-negative")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("REPORTING_TIMEZONE is invalid: %w", err)
	}

	return nil
}

// Warnings lists optional settings whose absence leaves part of the API
// degraded. Startup continues; the affected routes report a configuration error.
func (c *Config) Warnings() []string {
	var warnings []string

	if !c.Auth.Configured() {
		warnings = append(warnings, "AUTH_JWT_SECRET or AUTH_JWKS_URL is not set; authenticated routes will be unavailable")
	}

	missing := []string{}
	if c.Storage.Endpoint == "" {
		missing = append(missing, "STORAGE_ENDPOINT")
	}
	if c.Storage.AccessKey == "" {
		missing = append(missing, "STORAGE_ACCESS_KEY")
	}
	if c.Storage.SecretKey == "" {
		missing = append(missing, "STORAGE_SECRET_KEY")
	}
	if c.Storage.Bucket == "" {
		missing = append(missing, "STORAGE_BUCKET")
	}
	if len(missing) > 0 {
		warnings = append(warnings, fmt.Sprintf("%s not set; image upload and delete will fail", strings.Join(missing, ", ")))
	}

	if c.Tracking.CookieSecret == "" {
		warnings = append(warnings, "TRACKING_COOKIE_SECRET is not set; using an ephemeral key, tracking cookies will not survive restarts")
	}

	return warnings
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
