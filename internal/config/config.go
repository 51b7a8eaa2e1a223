// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package config loads Launchpad configuration from struct defaults, an
// optional YAML file and environment variables (in that order of priority),
// using koanf. A .env file in the working directory is read first so local
// development does not need exported variables.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Payments PaymentsConfig `koanf:"payments"`
	Email    EmailConfig    `koanf:"email"`
	Outbox   OutboxConfig   `koanf:"outbox"`
	Upload   UploadConfig   `koanf:"upload"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	BaseURL         string        `koanf:"base_url"`
	DashboardDir    string        `koanf:"dashboard_dir"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Database drivers.
const (
	DriverMongo  = "mongo"
	DriverBadger = "badger"
)

// DatabaseConfig selects and configures the document store.
//
// Driver "mongo" is the production store. Driver "badger" keeps users, posts
// and contact messages in an embedded badger database (BadgerPath, or memory
// when empty) and is meant for local development and demos.
type DatabaseConfig struct {
	Driver         string        `koanf:"driver"`
	URI            string        `koanf:"uri"`
	Name           string        `koanf:"name"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	BadgerPath     string        `koanf:"badger_path"`
}

// SecurityConfig holds user session, admin gate and federated sign-in settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTTL        time.Duration `koanf:"session_ttl"`
	SessionCookie     string        `koanf:"session_cookie"`
	CookieSecure      bool          `koanf:"cookie_secure"`
	AdminEmail        string        `koanf:"admin_email"`
	AdminPassword     string        `koanf:"admin_password"`
	AdminTokenSecret  string        `koanf:"admin_token_secret"`
	AdminTTL          time.Duration `koanf:"admin_ttl"`
	AdminLoginPath    string        `koanf:"admin_login_path"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	AuthzPolicyPath   string        `koanf:"authz_policy_path"`
	Lockout           LockoutConfig `koanf:"lockout"`
	OIDC              OIDCConfig    `koanf:"oidc"`
}

// AdminConfigured reports whether the shared admin credential pair is set.
func (s SecurityConfig) AdminConfigured() bool {
	return s.AdminEmail != "" && s.AdminPassword != ""
}

// AdminSigningKey returns the admin token key, falling back to the JWT secret.
func (s SecurityConfig) AdminSigningKey() string {
	if s.AdminTokenSecret != "" {
		return s.AdminTokenSecret
	}
	return s.JWTSecret
}

// LockoutConfig configures failed sign-in lockout.
type LockoutConfig struct {
	Enabled     bool          `koanf:"enabled"`
	MaxAttempts int           `koanf:"max_attempts"`
	Window      time.Duration `koanf:"window"`
	Duration    time.Duration `koanf:"duration"`
}

// OIDCConfig configures the federated identity provider.
type OIDCConfig struct {
	Enabled      bool     `koanf:"enabled"`
	IssuerURL    string   `koanf:"issuer_url"`
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	RedirectURL  string   `koanf:"redirect_url"`
	Scopes       []string `koanf:"scopes"`
}

// PaymentsConfig configures the Stripe-compatible payment processor.
type PaymentsConfig struct {
	Enabled          bool          `koanf:"enabled"`
	SecretKey        string        `koanf:"secret_key"`
	WebhookSecret    string        `koanf:"webhook_secret"`
	APIBase          string        `koanf:"api_base"`
	Timeout          time.Duration `koanf:"timeout"`
	WebhookTolerance time.Duration `koanf:"webhook_tolerance"`
	Currency         string        `koanf:"currency"`
	SuccessPath      string        `koanf:"success_path"`
	CancelPath       string        `koanf:"cancel_path"`
	CacheTTL         time.Duration `koanf:"cache_ttl"`
}

// EmailConfig configures outbound SMTP.
type EmailConfig struct {
	Enabled     bool          `koanf:"enabled"`
	SMTPHost    string        `koanf:"smtp_host"`
	SMTPPort    int           `koanf:"smtp_port"`
	Username    string        `koanf:"username"`
	Password    string        `koanf:"password"`
	From        string        `koanf:"from"`
	FromName    string        `koanf:"from_name"`
	UseTLS      bool          `koanf:"use_tls"`
	Timeout     time.Duration `koanf:"timeout"`
	NotifyAdmin bool          `koanf:"notify_admin"`
}

// OutboxConfig configures the persistent email outbox.
type OutboxConfig struct {
	Path            string        `koanf:"path"`
	PollInterval    time.Duration `koanf:"poll_interval"`
	BatchSize       int           `koanf:"batch_size"`
	MaxAttempts     int           `koanf:"max_attempts"`
	BaseDelay       time.Duration `koanf:"base_delay"`
	MaxDelay        time.Duration `koanf:"max_delay"`
	RatePerSecond   float64       `koanf:"rate_per_second"`
	JanitorSchedule string        `koanf:"janitor_schedule"`
	Retention       time.Duration `koanf:"retention"`
	StaleAfter      time.Duration `koanf:"stale_after"`
}

// Upload backends.
const (
	UploadLocal = "local"
	UploadS3    = "s3"
)

// UploadConfig configures where inline post images are written.
type UploadConfig struct {
	Backend     string   `koanf:"backend"`
	PublicDir   string   `koanf:"public_dir"`
	URLPrefix   string   `koanf:"url_prefix"`
	Placeholder string   `koanf:"placeholder"`
	S3          S3Config `koanf:"s3"`
}

// S3Config configures an S3-compatible bucket (AWS, MinIO, R2).
type S3Config struct {
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	PublicURL string `koanf:"public_url"`
	KeyPrefix string `koanf:"key_prefix"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// String is used in startup logs; secrets are never included.
func (c *Config) String() string {
	return fmt.Sprintf("addr=%s db=%s payments=%t email=%t upload=%s oidc=%t",
		c.Server.Addr(), c.Database.Driver, c.Payments.Enabled, c.Email.Enabled,
		c.Upload.Backend, c.Security.OIDC.Enabled)
}
