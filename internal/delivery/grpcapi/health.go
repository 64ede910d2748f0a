package grpcapi

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the overall status reported by the health server.
const ServiceName = "payments"

func ProviderService(tenantID, provider string) string {
	return fmt.Sprintf("%s.%s.%s", ServiceName, tenantID, provider)
}

// HealthHandler feeds grpc.health.v1 with the result of provider health
// checks. The service itself stays SERVING while any provider is down.
type HealthHandler struct {
	server   *health.Server
	store    domain.Store
	adapters domain.AdapterFactory
	metrics  *metrics.PaymentMetrics
	logger   *slog.Logger
	timeout  time.Duration
}

func NewHealthHandler(store domain.Store, adapters domain.AdapterFactory, m *metrics.PaymentMetrics, logger *slog.Logger, timeout time.Duration) *HealthHandler {
	srv := health.NewServer()
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return &HealthHandler{
		server:   srv,
		store:    store,
		adapters: adapters,
		metrics:  m,
		logger:   logger,
		timeout:  timeout,
	}
}

func (h *HealthHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

func (h *HealthHandler) Server() healthpb.HealthServer {
	return h.server
}

// CheckProviders runs HealthCheck on every enabled provider configuration and
// returns how many were unhealthy.
func (h *HealthHandler) CheckProviders(ctx context.Context) (int, error) {
	cfgs, err := h.store.ProviderConfigs().ListEnabled(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list provider configs: %w", err)
	}

	down := 0
	for _, cfg := range cfgs {
		if err := h.check(ctx, cfg); err != nil {
			down++
			h.logger.Warn("provider health check failed",
				"tenant", cfg.TenantID, "provider", cfg.Provider, "error", err)
		}
	}
	return down, nil
}

func (h *HealthHandler) check(ctx context.Context, cfg *domain.ProviderConfig) error {
	service := ProviderService(cfg.TenantID, cfg.Provider)

	adapter, err := h.adapters.Adapter(cfg)
	if err == nil {
		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err = adapter.HealthCheck(checkCtx)
		cancel()
	}

	status := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus(service, status)
	h.metrics.SetProviderUp(cfg.TenantID, cfg.Provider, err == nil)
	return err
}

func (h *HealthHandler) Shutdown() {
	h.server.Shutdown()
}
