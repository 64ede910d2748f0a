// Package webhook receives provider callbacks: dedupe, verify, record, then
// hand verified evidence to the reconciler.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/reconcile"
	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeProcessed        Outcome = "processed"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeIgnored          Outcome = "ignored"
	OutcomeUnauthorized     Outcome = "unauthorized"
	OutcomeForbidden        Outcome = "forbidden"
)

// claimTimeout bounds how long a crashed delivery blocks its redelivery.
const claimTimeout = time.Minute

type Request struct {
	TenantID   string
	Provider   string
	Headers    http.Header
	Body       []byte
	RemoteAddr string
}

type Result struct {
	Outcome   Outcome
	Reason    string
	PaymentID string
}

type Router struct {
	store      domain.Store
	adapters   domain.AdapterFactory
	reconciler *reconcile.Reconciler
	publisher  domain.EventPublisher
	metrics    *metrics.PaymentMetrics
	logger     *slog.Logger
	security   *slog.Logger
}

func NewRouter(
	store domain.Store,
	adapters domain.AdapterFactory,
	reconciler *reconcile.Reconciler,
	publisher domain.EventPublisher,
	m *metrics.PaymentMetrics,
	log *slog.Logger,
) *Router {
	return &Router{
		store:      store,
		adapters:   adapters,
		reconciler: reconciler,
		publisher:  publisher,
		metrics:    m,
		logger:     log,
		security:   logger.Security(log),
	}
}

// Handle runs one inbound callback through dedupe, verification and dispatch.
// Only unexpected failures are returned as errors; verification outcomes are
// reported in Result.
func (r *Router) Handle(ctx context.Context, req Request) (*Result, error) {
	cfg, err := r.store.ProviderConfigs().GetEnabled(ctx, req.TenantID, req.Provider)
	if err != nil {
		return nil, err
	}
	adapter, err := r.adapters.Adapter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s adapter: %w", cfg.Provider, err)
	}

	dedupeKey, keyErr := adapter.WebhookDedupeKey(req.Headers, req.Body)
	if keyErr == nil {
		existing, err := r.store.Inbox().FindByDedupeKey(ctx, req.Provider, dedupeKey)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return nil, err
		case existing.ProcessedAt != nil:
			return r.replayed(ctx, req, existing)
		}
	}

	verification, err := r.verify(ctx, adapter, req, keyErr)
	if err != nil {
		return nil, err
	}

	entry := r.inboxEntry(req, dedupeKey, verification)
	if err := r.store.Inbox().Insert(ctx, entry); err != nil {
		switch {
		case !errors.Is(err, domain.ErrDuplicate):
			return nil, fmt.Errorf("failed to store webhook: %w", err)
		case verification.Verified:
			existing, findErr := r.store.Inbox().FindByDedupeKey(ctx, req.Provider, dedupeKey)
			if findErr != nil {
				return nil, findErr
			}
			if existing.ProcessedAt != nil {
				return r.replayed(ctx, req, existing)
			}
			now := r.reconciler.Now()
			claimed, err := r.store.Inbox().Claim(ctx, existing.ID, now, now.Add(-claimTimeout))
			if err != nil {
				return nil, fmt.Errorf("failed to claim webhook: %w", err)
			}
			if !claimed {
				return r.replayed(ctx, req, existing)
			}
			// A previous delivery was stored but never finished processing.
			entry = existing
		}
	}

	switch {
	case verification.AuthFailure:
		return r.rejectForbidden(ctx, req, entry, verification), nil
	case !verification.Verified:
		return r.rejectUnauthorized(ctx, req, entry, verification)
	}

	res, err := r.dispatch(ctx, req, verification.Event)
	if err != nil {
		if relErr := r.store.Inbox().ReleaseClaim(context.WithoutCancel(ctx), entry.ID); relErr != nil {
			r.logger.Warn("failed to release webhook claim", "inbox_id", entry.ID, "error", relErr)
		}
		r.metrics.RecordWebhook(req.Provider, "error")
		return nil, err
	}
	if err := r.store.Inbox().MarkProcessed(ctx, entry.ID, r.reconciler.Now()); err != nil {
		return nil, fmt.Errorf("failed to mark webhook processed: %w", err)
	}
	if err := r.reconciler.Record(ctx, domain.PaymentEvent{
		TenantID:  req.TenantID,
		PaymentID: res.PaymentID,
		Provider:  req.Provider,
		Type:      domain.EventWebhookProcessed,
		Payload: map[string]any{
			"dedupe_key": entry.DedupeKey,
			"event_type": verification.Event.Type,
			"outcome":    string(res.Outcome),
		},
	}); err != nil {
		r.logger.Warn("failed to record webhook audit event", "error", err)
	}
	r.metrics.RecordWebhook(req.Provider, string(res.Outcome))
	return res, nil
}

// verify asks the adapter to check the payload. A payload whose dedupe key
// cannot even be extracted is unverifiable.
func (r *Router) verify(ctx context.Context, adapter domain.Adapter, req Request, keyErr error) (*domain.WebhookVerification, error) {
	if keyErr != nil {
		return &domain.WebhookVerification{Reason: keyErr.Error()}, nil
	}
	v, err := adapter.VerifyWebhook(ctx, req.Headers, req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to verify webhook: %w", err)
	}
	if v.Verified && v.Event == nil {
		return &domain.WebhookVerification{Reason: "verified payload carries no event"}, nil
	}
	return v, nil
}

// inboxEntry builds the audit row. Rejected deliveries are keyed by body
// digest so they can never shadow a genuine delivery with the same key.
func (r *Router) inboxEntry(req Request, dedupeKey string, v *domain.WebhookVerification) *domain.WebhookInboxEntry {
	key := dedupeKey
	if !v.Verified {
		digest := domain.HashParts(string(req.Body))[:16]
		if key == "" {
			key = "unparsed"
		}
		key = key + ":rejected:" + digest
	}
	entry := &domain.WebhookInboxEntry{
		ID:                uuid.NewString(),
		TenantID:          req.TenantID,
		Provider:          req.Provider,
		DedupeKey:         key,
		Headers:           flattenHeaders(req.Headers),
		Body:              string(req.Body),
		Verified:          v.Verified,
		VerificationError: v.Reason,
		ReceivedAt:        r.reconciler.Now(),
	}
	if v.Verified {
		entry.ClaimedAt = &entry.ReceivedAt
	}
	return entry
}

var redactedHeaders = map[string]bool{
	"Authorization": true,
	"Cookie":        true,
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		name = http.CanonicalHeaderKey(name)
		if redactedHeaders[name] {
			out[name] = "[redacted]"
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func (r *Router) replayed(ctx context.Context, req Request, existing *domain.WebhookInboxEntry) (*Result, error) {
	r.metrics.RecordWebhook(req.Provider, string(OutcomeAlreadyProcessed))
	r.logger.Info("webhook already processed",
		"tenant", req.TenantID, "provider", req.Provider, "dedupe_key", existing.DedupeKey)
	err := r.reconciler.Record(ctx, domain.PaymentEvent{
		TenantID: req.TenantID,
		Provider: req.Provider,
		Type:     domain.EventWebhookReplayed,
		Payload: map[string]any{
			"dedupe_key":        existing.DedupeKey,
			"first_received_at": existing.ReceivedAt.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, err
	}
	return &Result{Outcome: OutcomeAlreadyProcessed}, nil
}

func (r *Router) rejectForbidden(ctx context.Context, req Request, entry *domain.WebhookInboxEntry, v *domain.WebhookVerification) *Result {
	event := domain.SecurityEvent{
		TenantID:  req.TenantID,
		Provider:  req.Provider,
		Type:      domain.SecurityWebhookAuthFailed,
		Reason:    v.Reason,
		DedupeKey: entry.DedupeKey,
		Remote:    req.RemoteAddr,
		CreatedAt: r.reconciler.Now(),
	}
	r.security.Warn("webhook authorization failed",
		"tenant", req.TenantID, "provider", req.Provider,
		"reason", v.Reason, "remote", req.RemoteAddr, "inbox_id", entry.ID)
	if r.publisher != nil {
		if err := r.publisher.PublishSecurityEvent(ctx, event); err != nil {
			r.logger.Warn("failed to publish security event", "error", err)
		}
	}
	r.metrics.RecordSecurityEvent(req.TenantID, req.Provider, event.Type)
	r.metrics.RecordWebhook(req.Provider, string(OutcomeForbidden))
	return &Result{Outcome: OutcomeForbidden, Reason: v.Reason}
}

func (r *Router) rejectUnauthorized(ctx context.Context, req Request, entry *domain.WebhookInboxEntry, v *domain.WebhookVerification) (*Result, error) {
	r.logger.Warn("webhook not verified",
		"tenant", req.TenantID, "provider", req.Provider, "reason", v.Reason)
	err := r.reconciler.Record(ctx, domain.PaymentEvent{
		TenantID: req.TenantID,
		Provider: req.Provider,
		Type:     domain.EventWebhookSignatureFail,
		Payload: map[string]any{
			"inbox_id": entry.ID,
			"reason":   v.Reason,
		},
	})
	if err != nil {
		return nil, err
	}
	r.metrics.RecordWebhook(req.Provider, string(OutcomeUnauthorized))
	return &Result{Outcome: OutcomeUnauthorized, Reason: v.Reason}, nil
}
