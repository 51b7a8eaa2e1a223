// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package cache provides a small thread-safe TTL cache.
//
// The admin dashboard polls payment and stats endpoints that proxy the payment
// processor; caching those responses for a short TTL keeps the dashboard
// responsive and bounds upstream calls. The authorization layer also caches
// enforcement decisions here.
//
//	c := cache.New(time.Minute)
//	defer c.Close()
//
//	stats, err := cache.GetOrLoad(c, "stats", func() (*models.Stats, error) {
//	    return buildStats(ctx)
//	})
package cache
