// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/launchpad/internal/logging"
)

// Closer is a resource released on shutdown. *database.Pool satisfies it.
type Closer interface {
	Close(ctx context.Context) error
}

// CloseFunc adapts a plain Close() error (badger, for instance) to Closer.
type CloseFunc func() error

// Close implements Closer.
func (f CloseFunc) Close(context.Context) error { return f() }

// CloserService holds a resource open for the lifetime of the tree and closes
// it when the supervisor stops.
type CloserService struct {
	closer  Closer
	timeout time.Duration
	name    string
}

// NewCloserService returns a service named name that closes c on shutdown.
func NewCloserService(name string, c Closer, timeout time.Duration) *CloserService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CloserService{closer: c, timeout: timeout, name: name}
}

// Serve implements suture.Service.
func (s *CloserService) Serve(ctx context.Context) error {
	<-ctx.Done()

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.closer.Close(closeCtx); err != nil {
		logging.Error().Err(err).Str("service", s.name).Msg("Close failed")
		return fmt.Errorf("%s close: %w", s.name, err)
	}
	logging.Info().Str("service", s.name).Msg("Closed")
	return ctx.Err()
}

// String implements fmt.Stringer.
func (s *CloserService) String() string {
	return s.name
}
