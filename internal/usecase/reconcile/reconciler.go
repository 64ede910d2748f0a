// Package reconcile owns every mutation of payment, refund and order status.
// All writers (webhooks, poller, browser returns, the facade) go through it so
// that concurrent signals serialize on the payment row lock.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

type Source string

const (
	SourceWebhook Source = "webhook"
	SourcePoll    Source = "poll"
	SourceReturn  Source = "return"
	SourceAPI     Source = "api"
)

type Reconciler struct {
	store     domain.Store
	publisher domain.EventPublisher
	metrics   *metrics.PaymentMetrics
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Reconciler)

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func NewReconciler(
	store domain.Store,
	publisher domain.EventPublisher,
	m *metrics.PaymentMetrics,
	logger *slog.Logger,
	opts ...Option,
) *Reconciler {
	r := &Reconciler{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) Now() time.Time {
	return r.now()
}

// eventLog collects audit events written inside a transaction so they can be
// published once it commits.
type eventLog struct {
	events []domain.PaymentEvent
}

func (l *eventLog) add(ctx context.Context, tx domain.Store, e domain.PaymentEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := tx.Events().Append(ctx, &e); err != nil {
		return err
	}
	l.events = append(l.events, e)
	return nil
}

// Record appends a standalone audit event and publishes it.
func (r *Reconciler) Record(ctx context.Context, e domain.PaymentEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}
	var log eventLog
	if err := log.add(ctx, r.store, e); err != nil {
		return err
	}
	r.publish(ctx, log.events)
	return nil
}

func (r *Reconciler) publish(ctx context.Context, events []domain.PaymentEvent) {
	if len(events) == 0 || r.publisher == nil {
		return
	}
	if err := r.publisher.PublishPaymentEvents(ctx, events...); err != nil {
		r.logger.Warn("failed to publish payment events", "count", len(events), "error", err)
	}
}

// Publish sends events that a caller committed in its own transaction.
func (r *Reconciler) Publish(ctx context.Context, events []domain.PaymentEvent) {
	r.publish(ctx, events)
}
