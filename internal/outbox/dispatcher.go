// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package outbox

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/models"
)

// Dispatcher delivers due jobs. It implements suture.Service.
type Dispatcher struct {
	store   *BadgerStore
	sender  Sender
	limiter *rate.Limiter
	now     func() time.Time

	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
	baseDelay    time.Duration
	maxDelay     time.Duration

	wake     chan struct{}
	onUpdate func(models.OutboxJob)
}

// NewDispatcher returns a dispatcher and subscribes it to new enqueues so
// fresh jobs do not wait for the next poll.
func NewDispatcher(store *BadgerStore, sender Sender, cfg config.OutboxConfig) *Dispatcher {
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	d := &Dispatcher{
		store:        store,
		sender:       sender,
		limiter:      rate.NewLimiter(rate.Limit(rps), burst),
		now:          func() time.Time { return time.Now().UTC() },
		pollInterval: orDefault(cfg.PollInterval, 5*time.Second),
		batchSize:    cfg.BatchSize,
		maxAttempts:  cfg.MaxAttempts,
		baseDelay:    orDefault(cfg.BaseDelay, 30*time.Second),
		maxDelay:     orDefault(cfg.MaxDelay, 30*time.Minute),
		wake:         make(chan struct{}, 1),
	}
	if d.batchSize <= 0 {
		d.batchSize = 20
	}
	if d.maxAttempts <= 0 {
		d.maxAttempts = 5
	}
	store.OnEnqueue(d.Wake)
	return d
}

// OnUpdate registers fn to observe every job state change.
func (d *Dispatcher) OnUpdate(fn func(models.OutboxJob)) {
	d.onUpdate = fn
}

// Wake triggers a dispatch cycle without waiting for the poll interval.
func (d *Dispatcher) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Serve implements suture.Service.
func (d *Dispatcher) Serve(ctx context.Context) error {
	logging.Info().Dur("poll_interval", d.pollInterval).Msg("Outbox dispatcher started")

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := d.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Outbox dispatch cycle failed")
		}
		select {
		case <-ctx.Done():
			logging.Info().Msg("Outbox dispatcher stopped")
			return ctx.Err()
		case <-ticker.C:
		case <-d.wake:
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (d *Dispatcher) String() string { return "outbox-dispatcher" }

// RunOnce makes one delivery attempt for each due job and returns how many
// jobs were attempted.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	due, err := d.store.Due(ctx, d.now(), d.batchSize)
	if err != nil {
		return 0, err
	}

	attempted := 0
	for i := range due {
		if err := d.limiter.Wait(ctx); err != nil {
			return attempted, err
		}
		job, err := d.store.Claim(ctx, due[i].ID)
		if errors.Is(err, ErrNotClaimable) {
			continue
		}
		if err != nil {
			return attempted, err
		}
		d.deliver(ctx, job)
		attempted++
	}

	d.recordDepth(ctx)
	return attempted, nil
}

func (d *Dispatcher) deliver(ctx context.Context, job *models.OutboxJob) {
	log := logging.Ctx(ctx).With().
		Str("outbox_id", job.ID).
		Str("kind", job.Kind).
		Str("to", logging.SanitizeEmail(job.To)).
		Logger()

	job.Attempts++
	err := d.sender.Send(ctx, &Message{
		ID:       job.ID,
		To:       job.To,
		Subject:  job.Subject,
		TextBody: job.TextBody,
		HTMLBody: job.HTMLBody,
	})

	now := d.now()
	outcome := "sent"
	switch {
	case err == nil:
		job.Status = models.OutboxSent
		job.LastError = ""
		job.SentAt = &now
		log.Info().Int("attempt", job.Attempts).Msg("Outbox email sent")
	case IsTransient(err) && job.Attempts < d.maxAttempts:
		outcome = "retry"
		delay := Backoff(d.baseDelay, d.maxDelay, job.Attempts)
		job.Status = models.OutboxPending
		job.LastError = err.Error()
		job.NextAttemptAt = now.Add(delay)
		log.Warn().Err(err).Int("attempt", job.Attempts).Dur("retry_in", delay).Msg("Outbox delivery failed, will retry")
	default:
		outcome = "failed"
		job.Status = models.OutboxFailed
		job.LastError = err.Error()
		log.Error().Err(err).Int("attempt", job.Attempts).Msg("Outbox delivery failed permanently")
	}
	metrics.OutboxDeliveries.WithLabelValues(job.Kind, outcome).Inc()

	// A cancelled context must not lose the result of a send that happened.
	if uerr := d.store.Update(context.WithoutCancel(ctx), job); uerr != nil {
		log.Error().Err(uerr).Msg("Failed to record outbox delivery result")
		return
	}
	if d.onUpdate != nil {
		d.onUpdate(*job)
	}
}

func (d *Dispatcher) recordDepth(ctx context.Context) {
	counts, err := d.store.CountByStatus(ctx)
	if err != nil {
		return
	}
	for status, n := range counts {
		metrics.OutboxQueueDepth.WithLabelValues(string(status)).Set(float64(n))
	}
}

// Backoff returns base * 2^(attempt-1), capped at max.
func Backoff(base, maxDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxDelay {
			return maxDelay
		}
	}
	if d > maxDelay {
		return maxDelay
	}
	return d
}

func orDefault(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
