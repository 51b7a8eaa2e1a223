// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMongoImage is pinned to the major version production runs.
	DefaultMongoImage = "mongo:7"

	mongoPort = "27017/tcp"
)

// MongoContainer is a running single-node MongoDB.
type MongoContainer struct {
	testcontainers.Container
	// URI is a mongodb:// connection string reachable from the test process.
	URI string
}

// MongoOption configures NewMongoContainer.
type MongoOption func(*mongoConfig)

type mongoConfig struct {
	image        string
	startTimeout time.Duration
}

// WithMongoImage overrides DefaultMongoImage.
func WithMongoImage(image string) MongoOption {
	return func(c *mongoConfig) { c.image = image }
}

// WithMongoStartTimeout overrides the 60s startup wait.
func WithMongoStartTimeout(d time.Duration) MongoOption {
	return func(c *mongoConfig) { c.startTimeout = d }
}

// NewMongoContainer starts MongoDB and waits until it accepts connections.
func NewMongoContainer(ctx context.Context, opts ...MongoOption) (*MongoContainer, error) {
	cfg := &mongoConfig{
		image:        DefaultMongoImage,
		startTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{mongoPort},
		WaitingFor: wait.ForAll(
			wait.ForLog("Waiting for connections"),
			wait.ForListeningPort(mongoPort),
		).WithStartupTimeout(cfg.startTimeout),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create mongo container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		c.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("mongo container host: %w", err)
	}
	port, err := c.MappedPort(ctx, mongoPort)
	if err != nil {
		c.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("mongo container port: %w", err)
	}

	return &MongoContainer{
		Container: c,
		URI:       fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port()),
	}, nil
}
