package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/poller"
)

type BackgroundTasks struct {
	Poller         *poller.Poller
	Health         *grpcapi.HealthHandler
	HealthInterval time.Duration
	Logger         *slog.Logger

	wg sync.WaitGroup
}

func NewBackgroundTasks(p *poller.Poller, health *grpcapi.HealthHandler, healthInterval time.Duration, logger *slog.Logger) *BackgroundTasks {
	return &BackgroundTasks{
		Poller:         p,
		Health:         health,
		HealthInterval: healthInterval,
		Logger:         logger,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	bt.wg.Add(2)
	go func() {
		defer bt.wg.Done()
		bt.Poller.Start(ctx)
	}()
	go func() {
		defer bt.wg.Done()
		bt.startProviderHealthCheck(ctx)
	}()
}

// Wait blocks until every task has returned after ctx was cancelled.
func (bt *BackgroundTasks) Wait() {
	bt.wg.Wait()
}

func (bt *BackgroundTasks) startProviderHealthCheck(ctx context.Context) {
	bt.checkProviders(ctx)

	ticker := time.NewTicker(bt.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.checkProviders(ctx)
		}
	}
}

func (bt *BackgroundTasks) checkProviders(ctx context.Context) {
	down, err := bt.Health.CheckProviders(ctx)
	if err != nil {
		bt.Logger.Error("provider health check error", "error", err)
		return
	}
	if down > 0 {
		bt.Logger.Warn("providers unhealthy", "count", down)
	}
}
