// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package upload stores inline base64 images attached to posts.
//
// SaveBase64 never fails: any decode or storage error yields the placeholder
// image path so a post is still created with a usable featured image.
package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
)

// DefaultPlaceholder is returned when an image cannot be stored.
const DefaultPlaceholder = "/images/placeholder.png"

// DefaultExtension is used when the data URI header is missing or unknown.
const DefaultExtension = "png"

// Backend persists one object and returns the path or URL clients use to
// fetch it.
type Backend interface {
	Name() string
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Uploader decodes data URIs and writes them through a Backend.
type Uploader struct {
	backend     Backend
	placeholder string
}

// New returns an uploader. An empty placeholder selects DefaultPlaceholder.
func New(backend Backend, placeholder string) *Uploader {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Uploader{backend: backend, placeholder: placeholder}
}

// NewFromConfig builds the configured backend.
func NewFromConfig(ctx context.Context, cfg config.UploadConfig) (*Uploader, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Backend {
	case config.UploadS3:
		backend, err = NewS3Backend(ctx, cfg.S3)
	default:
		backend = NewLocalBackend(cfg.PublicDir, cfg.URLPrefix)
	}
	if err != nil {
		return nil, err
	}
	return New(backend, cfg.Placeholder), nil
}

// Placeholder returns the fallback image path.
func (u *Uploader) Placeholder() string { return u.placeholder }

// SaveBase64 stores data (a data URI or bare base64) as <name>.<ext> and
// returns its public path, or the placeholder on any failure.
func (u *Uploader) SaveBase64(ctx context.Context, data, name string) string {
	log := logging.Ctx(ctx)
	ext, payload := ParseDataURI(data)

	raw, err := decodeBase64(payload)
	if err != nil || len(raw) == 0 {
		metrics.Uploads.WithLabelValues(u.backend.Name(), "decode_error").Inc()
		log.Warn().Err(err).Msg("Image upload: invalid base64, using placeholder")
		return u.placeholder
	}

	key := SafeName(name) + "." + ext
	path, err := u.backend.Put(ctx, key, raw, ContentType(ext))
	if err != nil {
		metrics.Uploads.WithLabelValues(u.backend.Name(), "store_error").Inc()
		log.Error().Err(err).Str("key", key).Msg("Image upload failed, using placeholder")
		return u.placeholder
	}

	metrics.Uploads.WithLabelValues(u.backend.Name(), "success").Inc()
	log.Debug().Str("path", path).Int("bytes", len(raw)).Msg("Image stored")
	return path
}

var dataURIPattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9.+-]+);base64,`)

// ParseDataURI splits "data:image/<type>;base64,<payload>" into an extension
// and payload. Without a recognizable header the whole input is the payload
// and the extension is png.
func ParseDataURI(data string) (ext, payload string) {
	data = strings.TrimSpace(data)
	m := dataURIPattern.FindStringSubmatch(data)
	if m == nil {
		if i := strings.Index(data, ","); i >= 0 && strings.HasPrefix(data, "data:") {
			return DefaultExtension, data[i+1:]
		}
		return DefaultExtension, data
	}
	return normalizeExtension(m[1]), data[len(m[0]):]
}

func normalizeExtension(mime string) string {
	switch strings.ToLower(mime) {
	case "jpeg", "jpg", "pjpeg":
		return "jpg"
	case "png":
		return "png"
	case "gif":
		return "gif"
	case "webp":
		return "webp"
	case "avif":
		return "avif"
	case "svg+xml", "svg":
		return "svg"
	default:
		return DefaultExtension
	}
}

// ContentType maps an extension back to a MIME type.
func ContentType(ext string) string {
	switch ext {
	case "jpg":
		return "image/jpeg"
	case "svg":
		return "image/svg+xml"
	default:
		return "image/" + ext
	}
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return b, nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// SafeName reduces name to [a-zA-Z0-9_-]. An empty result becomes a UUID.
func SafeName(name string) string {
	name = unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "-")
	name = strings.Trim(name, "-")
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		return uuid.NewString()
	}
	return name
}
