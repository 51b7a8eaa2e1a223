// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/launchpad/internal/logging"
)

// MinJWTSecretLength is the shortest accepted HMAC secret.
const MinJWTSecretLength = 32

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateSecurity,
		c.validateOIDC,
		c.validatePayments,
		c.validateEmail,
		c.validateOutbox,
		c.validateUpload,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if err := validateHTTPURL(c.Server.BaseURL, "BASE_URL"); err != nil {
		return err
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	return nil
}

// validateDatabase does not require MONGODB_URI: a missing URI surfaces as a
// configuration error on first use, so the public site can still boot.
func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.Name == "" {
			return fmt.Errorf("MONGODB_DATABASE must not be empty")
		}
	case DriverBadger:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverMongo, DriverBadger, c.Database.Driver)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if len(s.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET is required and must be at least %d characters", MinJWTSecretLength)
	}
	if s.AdminTokenSecret != "" && len(s.AdminTokenSecret) < MinJWTSecretLength {
		return fmt.Errorf("ADMIN_TOKEN_SECRET must be at least %d characters", MinJWTSecretLength)
	}
	if (s.AdminEmail == "") != (s.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if s.AdminEmail != "" {
		if _, err := mail.ParseAddress(s.AdminEmail); err != nil {
			return fmt.Errorf("ADMIN_EMAIL is invalid: %w", err)
		}
	}
	if !strings.HasPrefix(s.AdminLoginPath, "/") {
		return fmt.Errorf("ADMIN_LOGIN_PATH must be an absolute path")
	}
	if s.SessionTTL <= 0 || s.AdminTTL <= 0 {
		return fmt.Errorf("SESSION_TTL and ADMIN_SESSION_TTL must be positive")
	}
	if s.Lockout.Enabled && s.Lockout.MaxAttempts < 1 {
		return fmt.Errorf("LOCKOUT_ATTEMPTS must be at least 1")
	}
	for _, origin := range s.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("CORS_ORIGINS contains '*': credentialed requests from any origin will be rejected by browsers")
		}
	}
	return nil
}

func (c *Config) validateOIDC() error {
	o := c.Security.OIDC
	if !o.Enabled {
		return nil
	}
	if o.ClientID == "" || o.ClientSecret == "" {
		return fmt.Errorf("OIDC_CLIENT_ID and OIDC_CLIENT_SECRET are required when OIDC_ENABLED=true")
	}
	if err := validateHTTPURL(o.IssuerURL, "OIDC_ISSUER_URL"); err != nil {
		return err
	}
	return validateHTTPURL(o.RedirectURL, "OIDC_REDIRECT_URL")
}

func (c *Config) validatePayments() error {
	p := c.Payments
	if !p.Enabled {
		return nil
	}
	if p.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required when STRIPE_ENABLED=true")
	}
	if p.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when STRIPE_ENABLED=true")
	}
	if p.WebhookTolerance <= 0 {
		return fmt.Errorf("STRIPE_WEBHOOK_TOLERANCE must be positive")
	}
	return validateHTTPURL(p.APIBase, "STRIPE_API_BASE")
}

func (c *Config) validateEmail() error {
	e := c.Email
	if !e.Enabled {
		return nil
	}
	if e.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required when EMAIL_ENABLED=true")
	}
	if e.SMTPPort < 1 || e.SMTPPort > 65535 {
		return fmt.Errorf("SMTP_PORT must be between 1 and 65535")
	}
	if _, err := mail.ParseAddress(e.From); err != nil {
		return fmt.Errorf("SMTP_FROM is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateOutbox() error {
	o := c.Outbox
	if o.MaxAttempts < 1 {
		return fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be at least 1")
	}
	if o.PollInterval <= 0 || o.BaseDelay <= 0 || o.MaxDelay < o.BaseDelay {
		return fmt.Errorf("outbox intervals are invalid: poll=%s base=%s max=%s", o.PollInterval, o.BaseDelay, o.MaxDelay)
	}
	if o.RatePerSecond <= 0 {
		return fmt.Errorf("OUTBOX_RATE_PER_SECOND must be positive")
	}
	if _, err := cron.ParseStandard(o.JanitorSchedule); err != nil {
		return fmt.Errorf("OUTBOX_JANITOR_SCHEDULE is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateUpload() error {
	u := c.Upload
	switch u.Backend {
	case UploadLocal:
		if u.PublicDir == "" {
			return fmt.Errorf("UPLOAD_DIR must not be empty")
		}
	case UploadS3:
		if u.S3.Bucket == "" || u.S3.Region == "" {
			return fmt.Errorf("S3_BUCKET and S3_REGION are required when UPLOAD_BACKEND=s3")
		}
		if u.S3.Endpoint != "" {
			if err := validateHTTPURL(u.S3.Endpoint, "S3_ENDPOINT"); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("UPLOAD_BACKEND must be %q or %q, got %q", UploadLocal, UploadS3, u.Backend)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if f := c.Logging.Format; f != "json" && f != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", f)
	}
	return nil
}

func validateHTTPURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", field)
	}
	return nil
}
