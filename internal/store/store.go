// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package store declares the repositories the HTTP layer depends on.
//
// Implementations live in mongostore (production) and badgerstore (embedded,
// for local development and tests). Both return errors wrapping the apperr
// sentinels: ErrNotFound for a missing entity, ErrConflict for a duplicate
// email, ErrConfiguration/ErrConnectivity when the database is not usable.
package store

import (
	"context"

	"github.com/tomtom215/launchpad/internal/models"
)

// Users persists site accounts.
type Users interface {
	// Create inserts u, assigning ID and timestamps. Returns ErrConflict when
	// the email is already registered.
	Create(ctx context.Context, u *models.User) error
	// FindByEmail returns ErrNotFound when no account has the email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// Posts persists blog posts.
type Posts interface {
	Create(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error)
	List(ctx context.Context, opts models.PostListOptions) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
}

// Contacts persists contact form messages.
type Contacts interface {
	Create(ctx context.Context, m *models.ContactMessage) error
	List(ctx context.Context, opts models.ContactListOptions) ([]*models.ContactMessage, error)
	// UpdateStatus returns ErrNotFound for an unknown id.
	UpdateStatus(ctx context.Context, id, status string) (*models.ContactMessage, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// Store bundles the repositories and the backend's lifecycle.
type Store interface {
	Users() Users
	Posts() Posts
	Contacts() Contacts
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
