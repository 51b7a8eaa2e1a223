// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package upload

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tomtom215/launchpad/internal/config"
)

// ObjectPutter is the subset of *s3.Client the backend needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Backend stores uploads in an S3-compatible bucket.
type S3Backend struct {
	client    ObjectPutter
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Backend builds a client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
// A custom endpoint (MinIO, R2) switches to path-style addressing.
func NewS3Backend(ctx context.Context, cfg config.S3Config) (*S3Backend, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Backend(client, cfg), nil
}

func newS3Backend(client ObjectPutter, cfg config.S3Config) *S3Backend {
	publicURL := cfg.PublicURL
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3Backend{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.KeyPrefix, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Name implements Backend.
func (b *S3Backend) Name() string { return "s3" }

// Put implements Backend and returns the object's public URL.
func (b *S3Backend) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	objectKey := key
	if b.prefix != "" {
		objectKey = path.Join(b.prefix, key)
	}
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s/%s: %w", b.bucket, objectKey, err)
	}
	return b.publicURL + "/" + objectKey, nil
}
