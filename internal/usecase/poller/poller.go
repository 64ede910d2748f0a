// Package poller actively queries providers for payments whose webhook has
// not arrived, and for refunds still pending at the provider.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/metrics"
	paymentdto "github.com/LavaJover/shvark-payments-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/reconcile"
)

type Settings struct {
	Interval      time.Duration
	BatchSize     int
	Lease         time.Duration
	InitialDelay  time.Duration
	MaxInterval   time.Duration
	Multiplier    float64
	RefundPollAge time.Duration
}

// Backoff is min(initial * multiplier^attempt, max).
func (s Settings) Backoff(attempt int) time.Duration {
	d := float64(s.InitialDelay) * math.Pow(s.Multiplier, float64(attempt))
	if d > float64(s.MaxInterval) || math.IsInf(d, 1) {
		return s.MaxInterval
	}
	return time.Duration(d)
}

type RefundSyncer interface {
	SyncRefund(ctx context.Context, tenantID, refundID string) (*paymentdto.RefundOutput, error)
}

type Poller struct {
	store      domain.Store
	adapters   domain.AdapterFactory
	reconciler *reconcile.Reconciler
	refunds    RefundSyncer
	metrics    *metrics.PaymentMetrics
	logger     *slog.Logger
	settings   Settings
}

func NewPoller(
	store domain.Store,
	adapters domain.AdapterFactory,
	reconciler *reconcile.Reconciler,
	refunds RefundSyncer,
	m *metrics.PaymentMetrics,
	logger *slog.Logger,
	settings Settings,
) *Poller {
	return &Poller{
		store:      store,
		adapters:   adapters,
		reconciler: reconciler,
		refunds:    refunds,
		metrics:    m,
		logger:     logger,
		settings:   settings,
	}
}

type Stats struct {
	Polled    int
	Resolved  int
	Pending   int
	Errors    int
	Expired   int
	Refunds   int
	Completed int
}

// Start ticks until ctx is cancelled. A failed tick is logged and the loop
// carries on.
func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.settings.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				p.logger.Error("poll tick failed", "error", err)
			}
		}
	}
}

// RunOnce expires overdue jobs, polls the due ones and syncs stale refunds.
func (p *Poller) RunOnce(ctx context.Context) (Stats, error) {
	var stats Stats
	started := time.Now()
	defer func() { p.metrics.ObservePollTick(time.Since(started)) }()

	now := p.reconciler.Now()
	if err := p.expireOverdue(ctx, now, &stats); err != nil {
		return stats, fmt.Errorf("failed to expire polling jobs: %w", err)
	}

	jobs, err := p.store.PollingJobs().ClaimDue(ctx, now, p.settings.Lease, p.settings.BatchSize)
	if err != nil {
		return stats, fmt.Errorf("failed to claim polling jobs: %w", err)
	}
	for _, job := range jobs {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.Polled++
		if err := p.poll(ctx, job, &stats); err != nil {
			stats.Errors++
			p.logger.Error("poll failed",
				"tenant", job.TenantID, "payment_id", job.PaymentID, "attempt", job.Attempt, "error", err)
		}
	}

	if err := p.syncRefunds(ctx, now, &stats); err != nil {
		return stats, fmt.Errorf("failed to sync refunds: %w", err)
	}
	if stats.Polled > 0 || stats.Expired > 0 || stats.Refunds > 0 {
		p.logger.Debug("poll tick done",
			"polled", stats.Polled, "resolved", stats.Resolved, "pending", stats.Pending,
			"expired", stats.Expired, "errors", stats.Errors, "refunds", stats.Refunds)
	}
	return stats, nil
}

func (p *Poller) poll(ctx context.Context, job *domain.PollingJob, stats *Stats) error {
	payment, err := p.store.Payments().Get(ctx, job.TenantID, job.PaymentID)
	if err != nil {
		return err
	}
	if payment.Status.IsTerminal() {
		stats.Completed++
		return p.closeJob(ctx, job, domain.PollingCompleted, payment.ProviderStatus, "")
	}

	adapter, err := p.adapter(ctx, job)
	if err != nil {
		p.metrics.RecordPollTick(job.Provider, "error")
		return p.reschedule(ctx, job, nil, err)
	}
	st, err := adapter.GetStatus(ctx, job.MerchantTransactionID)
	if err != nil {
		p.metrics.RecordPollTick(job.Provider, "error")
		return p.reschedule(ctx, job, nil, err)
	}
	if !st.Definitive {
		stats.Pending++
		p.metrics.RecordPollTick(job.Provider, "pending")
		return p.reschedule(ctx, job, st, nil)
	}

	res, err := p.reconciler.Transition(ctx, reconcile.EvidenceFromStatus(payment, st, true, reconcile.SourcePoll))
	if err != nil {
		p.metrics.RecordPollTick(job.Provider, "error")
		return p.reschedule(ctx, job, st, err)
	}
	p.metrics.RecordPollTick(job.Provider, "resolved")
	if res.Payment.Status.IsTerminal() {
		stats.Resolved++
		return p.closeJob(ctx, job, domain.PollingCompleted, st.ProviderStatus, st.ResponseCode)
	}
	stats.Pending++
	return p.reschedule(ctx, job, st, nil)
}

func (p *Poller) adapter(ctx context.Context, job *domain.PollingJob) (domain.Adapter, error) {
	cfg, err := p.store.ProviderConfigs().GetEnabled(ctx, job.TenantID, job.Provider)
	if err != nil {
		return nil, err
	}
	return p.adapters.Adapter(cfg)
}
