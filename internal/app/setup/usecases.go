package setup

import (
	"github.com/LavaJover/shvark-payments-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/payment"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/poller"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/reconcile"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/webhook"
)

type UseCases struct {
	Reconciler *reconcile.Reconciler
	Payments   *payment.DefaultPaymentUsecase
	Webhooks   *webhook.Router
	Poller     *poller.Poller
	Health     *grpcapi.HealthHandler
}

func InitializeUseCases(deps *Dependencies) *UseCases {
	cfg := deps.Config
	audit := logger.Audit(deps.Logger)

	reconciler := reconcile.NewReconciler(deps.Store, deps.Publisher, deps.Metrics, audit)

	payments := payment.NewDefaultPaymentUsecase(
		deps.Store,
		deps.Adapters,
		reconciler,
		deps.Cache,
		deps.Metrics,
		deps.Logger.With("component", "payments"),
		payment.Settings{
			PollInitialDelay: cfg.Poller.InitialDelay,
			PollExpireAfter:  cfg.Poller.ExpireAfter,
			IdempotencyTTL:   cfg.Idempotency.TTL,
		},
	)

	webhooks := webhook.NewRouter(
		deps.Store,
		deps.Adapters,
		reconciler,
		deps.Publisher,
		deps.Metrics,
		deps.Logger.With("component", "webhooks"),
	)

	statusPoller := poller.NewPoller(
		deps.Store,
		deps.Adapters,
		reconciler,
		payments,
		deps.Metrics,
		deps.Logger.With("component", "poller"),
		poller.Settings{
			Interval:      cfg.Poller.Interval,
			BatchSize:     cfg.Poller.BatchSize,
			Lease:         cfg.Poller.Lease,
			InitialDelay:  cfg.Poller.InitialDelay,
			MaxInterval:   cfg.Poller.MaxInterval,
			Multiplier:    cfg.Poller.Multiplier,
			RefundPollAge: cfg.Poller.RefundPollAge,
		},
	)

	health := grpcapi.NewHealthHandler(
		deps.Store,
		deps.Adapters,
		deps.Metrics,
		deps.Logger.With("component", "health"),
		cfg.Poller.HealthInterval/2,
	)

	return &UseCases{
		Reconciler: reconciler,
		Payments:   payments,
		Webhooks:   webhooks,
		Poller:     statusPoller,
		Health:     health,
	}
}
