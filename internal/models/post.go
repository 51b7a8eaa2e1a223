// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import "time"

// Post statuses.
const (
	PostDraft     = "draft"
	PostPublished = "published"
)

// Field limits enforced on create and update.
const (
	MaxPostTitleLen   = 150
	MaxPostExcerptLen = 500
)

// Post is a blog entry.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt,omitempty"`
	FeaturedImage string    `json:"featuredImage,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PostUpdate carries the fields a partial update may change. Nil means
// unchanged.
type PostUpdate struct {
	Title         *string
	Content       *string
	Excerpt       *string
	FeaturedImage *string
	Status        *string
}

// Apply copies the set fields onto p and bumps UpdatedAt.
func (u PostUpdate) Apply(p *Post, now time.Time) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Excerpt != nil {
		p.Excerpt = *u.Excerpt
	}
	if u.FeaturedImage != nil {
		p.FeaturedImage = *u.FeaturedImage
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	p.UpdatedAt = now
}

// PostListOptions filters post listings.
type PostListOptions struct {
	Status string
	Limit  int
	Offset int
}
