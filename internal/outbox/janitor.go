// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
)

// Janitor purges finished jobs and requeues stuck ones on a cron schedule.
// It implements suture.Service.
type Janitor struct {
	store      *BadgerStore
	schedule   string
	retention  time.Duration
	staleAfter time.Duration
	now        func() time.Time
	extra      []func(ctx context.Context)
}

// NewJanitor returns a janitor for store.
func NewJanitor(store *BadgerStore, cfg config.OutboxConfig) *Janitor {
	schedule := cfg.JanitorSchedule
	if schedule == "" {
		schedule = "@every 1h"
	}
	return &Janitor{
		store:      store,
		schedule:   schedule,
		retention:  orDefault(cfg.Retention, 7*24*time.Hour),
		staleAfter: orDefault(cfg.StaleAfter, 10*time.Minute),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Also runs fn on every janitor tick. Used for other housekeeping such as
// expiring lockout entries.
func (j *Janitor) Also(fn func(ctx context.Context)) {
	j.extra = append(j.extra, fn)
}

// Serve implements suture.Service.
func (j *Janitor) Serve(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(j.schedule, func() { j.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", j.schedule, err)
	}
	c.Start()
	logging.Info().Str("schedule", j.schedule).Msg("Outbox janitor started")

	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// String implements fmt.Stringer for suture logs.
func (j *Janitor) String() string { return "outbox-janitor" }

// RunOnce performs one cleanup pass.
func (j *Janitor) RunOnce(ctx context.Context) {
	now := j.now()

	purged, err := j.store.Purge(ctx, now.Add(-j.retention))
	if err != nil {
		logging.Error().Err(err).Msg("Outbox purge failed")
	}
	requeued, err := j.store.RequeueStale(ctx, now.Add(-j.staleAfter))
	if err != nil {
		logging.Error().Err(err).Msg("Outbox requeue failed")
	}
	if purged > 0 || requeued > 0 {
		logging.Info().Int("purged", purged).Int("requeued", requeued).Msg("Outbox janitor pass")
	}

	for _, fn := range j.extra {
		fn(ctx)
	}
}
