package poller

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/google/uuid"
)

// lockedJob re-reads the job under the payment row lock, the same lock the
// reconciler holds when it completes a job. fn is skipped once the job is no
// longer active.
func (p *Poller) lockedJob(ctx context.Context, job *domain.PollingJob, fn func(tx domain.Store, current *domain.PollingJob) error) error {
	return p.store.WithinTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Payments().GetForUpdate(ctx, job.TenantID, job.PaymentID); err != nil {
			return err
		}
		current, err := tx.PollingJobs().GetByPayment(ctx, job.TenantID, job.PaymentID)
		if err != nil {
			return err
		}
		if current.Status != domain.PollingActive {
			return nil
		}
		return fn(tx, current)
	})
}

// reschedule records what the provider said and pushes the next poll out by
// the backoff schedule, never past the job's expiry.
func (p *Poller) reschedule(ctx context.Context, job *domain.PollingJob, st *domain.ProviderStatus, cause error) error {
	now := p.reconciler.Now()
	var event *domain.PaymentEvent
	err := p.lockedJob(ctx, job, func(tx domain.Store, current *domain.PollingJob) error {
		current.Attempt++
		next := now.Add(p.settings.Backoff(current.Attempt))
		if next.After(current.ExpireAt) {
			next = current.ExpireAt
		}
		current.NextPollAt = next
		current.LastError = ""
		if st != nil {
			current.LastProviderStatus = st.ProviderStatus
			current.LastResponseCode = st.ResponseCode
		}
		if cause != nil {
			current.LastError = cause.Error()
		}
		current.UpdatedAt = now
		if err := tx.PollingJobs().Update(ctx, current); err != nil {
			return err
		}
		event = &domain.PaymentEvent{
			ID:        uuid.NewString(),
			TenantID:  current.TenantID,
			PaymentID: current.PaymentID,
			Provider:  current.Provider,
			Type:      domain.EventPollRescheduled,
			Payload: map[string]any{
				"attempt":         current.Attempt,
				"next_poll_at":    next.Format(time.RFC3339),
				"provider_status": current.LastProviderStatus,
				"response_code":   current.LastResponseCode,
				"error":           current.LastError,
			},
			CreatedAt: now,
		}
		return tx.Events().Append(ctx, event)
	})
	if err != nil {
		return err
	}
	if event != nil {
		p.reconciler.Publish(ctx, []domain.PaymentEvent{*event})
	}
	return cause
}

func (p *Poller) closeJob(ctx context.Context, job *domain.PollingJob, status domain.PollingJobStatus, providerStatus, responseCode string) error {
	now := p.reconciler.Now()
	return p.lockedJob(ctx, job, func(tx domain.Store, current *domain.PollingJob) error {
		current.Status = status
		if providerStatus != "" {
			current.LastProviderStatus = providerStatus
		}
		if responseCode != "" {
			current.LastResponseCode = responseCode
		}
		current.UpdatedAt = now
		return tx.PollingJobs().Update(ctx, current)
	})
}

// expireOverdue gives up on jobs past expireAt. The payment keeps its last
// known status; an expired poll is not evidence of failure.
func (p *Poller) expireOverdue(ctx context.Context, now time.Time, stats *Stats) error {
	jobs, err := p.store.PollingJobs().ListExpired(ctx, now, p.settings.BatchSize)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		var (
			expired *domain.PollingJob
			event   *domain.PaymentEvent
		)
		err := p.lockedJob(ctx, job, func(tx domain.Store, current *domain.PollingJob) error {
			if !current.IsExpired(now) {
				return nil
			}
			current.Status = domain.PollingExpired
			current.UpdatedAt = now
			if err := tx.PollingJobs().Update(ctx, current); err != nil {
				return err
			}
			expired = current
			event = &domain.PaymentEvent{
				ID:        uuid.NewString(),
				TenantID:  current.TenantID,
				PaymentID: current.PaymentID,
				Provider:  current.Provider,
				Type:      domain.EventPollExpired,
				Payload: map[string]any{
					"attempt":         current.Attempt,
					"provider_status": current.LastProviderStatus,
					"response_code":   current.LastResponseCode,
					"error":           current.LastError,
				},
				CreatedAt: now,
			}
			return tx.Events().Append(ctx, event)
		})
		if err != nil {
			p.logger.Error("failed to expire polling job", "payment_id", job.PaymentID, "error", err)
			continue
		}
		if expired != nil {
			p.reconciler.Publish(ctx, []domain.PaymentEvent{*event})
			stats.Expired++
			p.metrics.RecordPollExpired(expired.Provider)
			p.logger.Info("polling job expired",
				"tenant", expired.TenantID, "payment_id", expired.PaymentID,
				"attempt", expired.Attempt, "last_provider_status", expired.LastProviderStatus)
		}
	}
	return nil
}

func (p *Poller) syncRefunds(ctx context.Context, now time.Time, stats *Stats) error {
	if p.refunds == nil {
		return nil
	}
	refunds, err := p.store.Refunds().ListPendingBefore(ctx, now.Add(-p.settings.RefundPollAge), p.settings.BatchSize)
	if err != nil {
		return err
	}
	for _, rf := range refunds {
		stats.Refunds++
		if _, err := p.refunds.SyncRefund(ctx, rf.TenantID, rf.ID); err != nil {
			p.logger.Warn("refund sync failed", "refund_id", rf.ID, "error", err)
		}
	}
	return nil
}
