// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/launchpad/internal/config"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestParseDataURI(t *testing.T) {
	t.Parallel()

	payload := base64.StdEncoding.EncodeToString(pngBytes)
	tests := []struct {
		name    string
		in      string
		wantExt string
	}{
		{"png header", "data:image/png;base64," + payload, "png"},
		{"jpeg maps to jpg", "data:image/jpeg;base64," + payload, "jpg"},
		{"uppercase", "data:image/WEBP;base64," + payload, "webp"},
		{"svg", "data:image/svg+xml;base64," + payload, "svg"},
		{"no header", payload, "png"},
		{"unknown type", "data:image/x-unknown;base64," + payload, "png"},
		{"malformed header", "data:image;base64," + payload, "png"},
	}
	for _, tt := range tests {
		ext, got := ParseDataURI(tt.in)
		assert.Equal(t, tt.wantExt, ext, tt.name)
		assert.Equal(t, payload, got, tt.name)
	}
}

func TestSaveBase64_Local(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "public", "uploads")
	u := New(NewLocalBackend(dir, "/uploads"), "")
	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)

	got := u.SaveBase64(context.Background(), data, "launch-banner")
	assert.Equal(t, "/uploads/launch-banner.png", got)

	written, err := os.ReadFile(filepath.Join(dir, "launch-banner.png"))
	require.NoError(t, err, "directory tree should be created")
	assert.Equal(t, pngBytes, written)

	jpg := u.SaveBase64(context.Background(), "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(pngBytes), "photo")
	assert.Equal(t, "/uploads/photo.jpg", jpg)

	bare := u.SaveBase64(context.Background(), base64.StdEncoding.EncodeToString(pngBytes), "bare")
	assert.True(t, strings.HasSuffix(bare, ".png"))
}

func TestSaveBase64_FailuresReturnPlaceholder(t *testing.T) {
	t.Parallel()

	u := New(NewLocalBackend(t.TempDir(), "/uploads"), "")
	assert.Equal(t, DefaultPlaceholder, u.SaveBase64(context.Background(), "data:image/png;base64,@@@not-base64@@@", "x"))
	assert.Equal(t, DefaultPlaceholder, u.SaveBase64(context.Background(), "", "x"))

	// A regular file where the directory should be makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	broken := New(NewLocalBackend(filepath.Join(blocker, "uploads"), "/uploads"), "/images/fallback.png")
	got := broken.SaveBase64(context.Background(), base64.StdEncoding.EncodeToString(pngBytes), "x")
	assert.Equal(t, "/images/fallback.png", got)
}

func TestSafeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "my-post-title", SafeName("  my post/title "))
	assert.Equal(t, "etc-passwd", SafeName("../../etc/passwd"))
	assert.Len(t, SafeName(""), 36)
	assert.Len(t, SafeName(strings.Repeat("a", 300)), 100)
}

type fakePutter struct {
	in  *s3.PutObjectInput
	err error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Backend_Put(t *testing.T) {
	t.Parallel()

	fake := &fakePutter{}
	b := newS3Backend(fake, config.S3Config{Bucket: "assets", Region: "eu-west-1", KeyPrefix: "/posts/"})
	u := New(b, "")

	got := u.SaveBase64(context.Background(), "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(pngBytes), "hero")
	assert.Equal(t, "https://assets.s3.eu-west-1.amazonaws.com/posts/hero.jpg", got)
	require.NotNil(t, fake.in)
	assert.Equal(t, "posts/hero.jpg", *fake.in.Key)
	assert.Equal(t, "image/jpeg", *fake.in.ContentType)
	body, _ := io.ReadAll(fake.in.Body)
	assert.Equal(t, pngBytes, body)
}

func TestS3Backend_CustomEndpointAndFailure(t *testing.T) {
	t.Parallel()

	fake := &fakePutter{err: errors.New("access denied")}
	b := newS3Backend(fake, config.S3Config{Bucket: "assets", Endpoint: "http://minio:9000/"})
	assert.Equal(t, "http://minio:9000/assets", b.publicURL)

	got := New(b, "").SaveBase64(context.Background(), base64.StdEncoding.EncodeToString(pngBytes), "x")
	assert.Equal(t, DefaultPlaceholder, got)
}
