// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/launchpad/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env location.
const DotEnvPathEnvVar = "DOTENV_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3857,
			BaseURL:         "http://localhost:3857",
			DashboardDir:    "web/dashboard",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    8 << 20,
		},
		Database: DatabaseConfig{
			Driver:         DriverMongo,
			Name:           "launchpad",
			ConnectTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			SessionTTL:     30 * 24 * time.Hour,
			SessionCookie:  "session-token",
			CookieSecure:   true,
			AdminTTL:       24 * time.Hour,
			AdminLoginPath: "/admin/login",
			CORSOrigins:    []string{"http://localhost:3000"},
			Lockout: LockoutConfig{
				Enabled:     true,
				MaxAttempts: 5,
				Window:      15 * time.Minute,
				Duration:    15 * time.Minute,
			},
			OIDC: OIDCConfig{
				Scopes: []string{"openid", "profile", "email"},
			},
		},
		Payments: PaymentsConfig{
			APIBase:          "https://api.stripe.com",
			Timeout:          15 * time.Second,
			WebhookTolerance: 5 * time.Minute,
			Currency:         "usd",
			SuccessPath:      "/checkout/success",
			CancelPath:       "/checkout/cancel",
			CacheTTL:         time.Minute,
		},
		Email: EmailConfig{
			SMTPPort:    587,
			FromName:    "Launchpad",
			UseTLS:      true,
			Timeout:     30 * time.Second,
			NotifyAdmin: true,
		},
		Outbox: OutboxConfig{
			PollInterval:    5 * time.Second,
			BatchSize:       20,
			MaxAttempts:     5,
			BaseDelay:       30 * time.Second,
			MaxDelay:        30 * time.Minute,
			RatePerSecond:   2,
			JanitorSchedule: "@every 1h",
			Retention:       7 * 24 * time.Hour,
			StaleAfter:      10 * time.Minute,
		},
		Upload: UploadConfig{
			Backend:     UploadLocal,
			PublicDir:   "public",
			URLPrefix:   "/uploads",
			Placeholder: "/images/placeholder.png",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads .env (if present), then layers defaults, the YAML file and
// environment variables, and validates the result.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads a .env file without overriding variables already set in
// the process environment. A missing file is not an error.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.oidc.scopes",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Names follow the variables the site has always used (MONGODB_URI,
// STRIPE_SECRET_KEY, ADMIN_EMAIL, ...) rather than a mechanical prefix scheme.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"port":                  "server.port",
	"base_url":              "server.base_url",
	"app_url":               "server.base_url",
	"dashboard_dir":         "server.dashboard_dir",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"max_body_bytes":        "server.max_body_bytes",

	"database_driver":      "database.driver",
	"mongodb_uri":          "database.uri",
	"mongodb_database":     "database.name",
	"mongodb_timeout":      "database.connect_timeout",
	"badger_path":          "database.badger_path",
	"database_badger_path": "database.badger_path",

	"jwt_secret":          "security.jwt_secret",
	"auth_secret":         "security.jwt_secret",
	"session_ttl":         "security.session_ttl",
	"session_cookie_name": "security.session_cookie",
	"cookie_secure":       "security.cookie_secure",
	"admin_email":         "security.admin_email",
	"admin_password":      "security.admin_password",
	"admin_token_secret":  "security.admin_token_secret",
	"admin_session_ttl":   "security.admin_ttl",
	"admin_login_path":    "security.admin_login_path",
	"cors_origins":        "security.cors_origins",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"authz_policy_path":   "security.authz_policy_path",
	"lockout_enabled":     "security.lockout.enabled",
	"lockout_attempts":    "security.lockout.max_attempts",
	"lockout_window":      "security.lockout.window",
	"lockout_duration":    "security.lockout.duration",

	"oidc_enabled":       "security.oidc.enabled",
	"oidc_issuer_url":    "security.oidc.issuer_url",
	"oidc_client_id":     "security.oidc.client_id",
	"oidc_client_secret": "security.oidc.client_secret",
	"oidc_redirect_url":  "security.oidc.redirect_url",
	"oidc_scopes":        "security.oidc.scopes",

	"stripe_enabled":           "payments.enabled",
	"stripe_secret_key":        "payments.secret_key",
	"stripe_webhook_secret":    "payments.webhook_secret",
	"stripe_api_base":          "payments.api_base",
	"stripe_timeout":           "payments.timeout",
	"stripe_webhook_tolerance": "payments.webhook_tolerance",
	"stripe_currency":          "payments.currency",
	"stripe_cache_ttl":         "payments.cache_ttl",

	"email_enabled":      "email.enabled",
	"smtp_host":          "email.smtp_host",
	"smtp_port":          "email.smtp_port",
	"smtp_username":      "email.username",
	"smtp_password":      "email.password",
	"smtp_from":          "email.from",
	"smtp_from_name":     "email.from_name",
	"smtp_use_tls":       "email.use_tls",
	"email_notify_admin": "email.notify_admin",

	"outbox_path":             "outbox.path",
	"outbox_poll_interval":    "outbox.poll_interval",
	"outbox_max_attempts":     "outbox.max_attempts",
	"outbox_rate_per_second":  "outbox.rate_per_second",
	"outbox_janitor_schedule": "outbox.janitor_schedule",
	"outbox_retention":        "outbox.retention",

	"upload_backend":       "upload.backend",
	"upload_dir":           "upload.public_dir",
	"upload_url_prefix":    "upload.url_prefix",
	"upload_placeholder":   "upload.placeholder",
	"s3_bucket":            "upload.s3.bucket",
	"s3_region":            "upload.s3.region",
	"s3_endpoint":          "upload.s3.endpoint",
	"s3_access_key":        "upload.s3.access_key",
	"s3_secret_key":        "upload.s3.secret_key",
	"s3_public_url":        "upload.s3.public_url",
	"s3_key_prefix":        "upload.s3.key_prefix",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc returns "" for variables Launchpad does not read, which
// makes koanf skip them.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
