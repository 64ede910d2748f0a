package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/providers/phonepe"
)

// Builder constructs an adapter for one tenant's provider configuration.
type Builder func(cfg *domain.ProviderConfig) (domain.Adapter, error)

// Registry resolves a ProviderConfig to its adapter. Built adapters are cached
// per config row and rebuilt when the row changes.
type Registry struct {
	builders map[string]Builder
	metrics  *metrics.PaymentMetrics

	mu      sync.RWMutex
	adapter map[string]cachedAdapter
}

type cachedAdapter struct {
	adapter   domain.Adapter
	updatedAt time.Time
}

func NewRegistry(m *metrics.PaymentMetrics) *Registry {
	return &Registry{
		builders: make(map[string]Builder),
		metrics:  m,
		adapter:  make(map[string]cachedAdapter),
	}
}

// NewDefaultRegistry registers every adapter shipped with the service.
func NewDefaultRegistry(client *http.Client, logger *slog.Logger, m *metrics.PaymentMetrics) *Registry {
	r := NewRegistry(m)
	r.Register(phonepe.Name, func(cfg *domain.ProviderConfig) (domain.Adapter, error) {
		return phonepe.New(cfg, phonepe.Options{HTTPClient: client, Logger: logger})
	})
	return r
}

func (r *Registry) Register(name string, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = b
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for n := range r.builders {
		names = append(names, n)
	}
	return names
}

func (r *Registry) Adapter(cfg *domain.ProviderConfig) (domain.Adapter, error) {
	cacheKey := cfg.TenantID + "/" + cfg.Provider

	r.mu.RLock()
	cached, ok := r.adapter[cacheKey]
	b, known := r.builders[cfg.Provider]
	r.mu.RUnlock()
	if ok && cached.updatedAt.Equal(cfg.UpdatedAt) {
		return cached.adapter, nil
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, cfg.Provider)
	}

	a, err := b(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s adapter: %w", cfg.Provider, err)
	}
	a = &instrumented{Adapter: a, metrics: r.metrics}

	r.mu.Lock()
	r.adapter[cacheKey] = cachedAdapter{adapter: a, updatedAt: cfg.UpdatedAt}
	r.mu.Unlock()
	return a, nil
}

// instrumented records call latency for every outbound provider operation.
type instrumented struct {
	domain.Adapter
	metrics *metrics.PaymentMetrics
}

func (i *instrumented) CreatePayment(ctx context.Context, req domain.ProviderPaymentRequest) (*domain.ProviderPaymentResult, error) {
	start := time.Now()
	res, err := i.Adapter.CreatePayment(ctx, req)
	i.metrics.ObserveProviderCall(i.Name(), "create_payment", time.Since(start), err)
	return res, err
}

func (i *instrumented) GetStatus(ctx context.Context, merchantTransactionID string) (*domain.ProviderStatus, error) {
	start := time.Now()
	res, err := i.Adapter.GetStatus(ctx, merchantTransactionID)
	i.metrics.ObserveProviderCall(i.Name(), "get_status", time.Since(start), err)
	return res, err
}

func (i *instrumented) CreateRefund(ctx context.Context, req domain.ProviderRefundRequest) (*domain.ProviderRefundResult, error) {
	start := time.Now()
	res, err := i.Adapter.CreateRefund(ctx, req)
	i.metrics.ObserveProviderCall(i.Name(), "create_refund", time.Since(start), err)
	return res, err
}

func (i *instrumented) GetRefundStatus(ctx context.Context, merchantRefundID string) (*domain.ProviderRefundResult, error) {
	start := time.Now()
	res, err := i.Adapter.GetRefundStatus(ctx, merchantRefundID)
	i.metrics.ObserveProviderCall(i.Name(), "get_refund_status", time.Since(start), err)
	return res, err
}

func (i *instrumented) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := i.Adapter.HealthCheck(ctx)
	i.metrics.ObserveProviderCall(i.Name(), "health", time.Since(start), err)
	return err
}
