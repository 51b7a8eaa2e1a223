// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend writes files under a directory served as static content.
type LocalBackend struct {
	dir       string
	urlPrefix string
}

// NewLocalBackend writes into dir and returns paths under urlPrefix.
func NewLocalBackend(dir, urlPrefix string) *LocalBackend {
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	return &LocalBackend{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Name implements Backend.
func (b *LocalBackend) Name() string { return "local" }

// Put implements Backend. The directory tree is created if absent.
func (b *LocalBackend) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	target := filepath.Join(b.dir, filepath.Base(key))
	if err := os.WriteFile(target, data, 0o644); err != nil { //nolint:gosec // public static asset
		return "", fmt.Errorf("write upload: %w", err)
	}
	return b.urlPrefix + "/" + filepath.Base(key), nil
}
