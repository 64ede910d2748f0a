// Package testkit holds fixtures shared by the usecase tests: a SQLite-backed
// store, seed helpers, a recording event publisher and a mock adapter.
package testkit

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	Tenant   = "acme"
	Provider = "mockpay"
)

var T0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{now: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func NewStore(t *testing.T) *repository.DefaultStore {
	return repository.NewDefaultStore(testdb.Open(t))
}

func SeedOrder(t *testing.T, store domain.Store, id string, amountMinor int64) *domain.Order {
	t.Helper()
	order := &domain.Order{
		ID:            id,
		TenantID:      Tenant,
		Currency:      "INR",
		SubtotalMinor: amountMinor,
		AmountMinor:   amountMinor,
		Status:        domain.OrderPending,
		PaymentStatus: domain.OrderPaymentPending,
		CreatedAt:     T0,
		UpdatedAt:     T0,
	}
	require.NoError(t, store.Orders().Create(context.Background(), order))
	return order
}

func SeedPayment(t *testing.T, store domain.Store, orderID string, amountMinor int64, status domain.PaymentStatus) *domain.Payment {
	t.Helper()
	p := &domain.Payment{
		ID:                    uuid.NewString(),
		TenantID:              Tenant,
		OrderID:               orderID,
		Provider:              Provider,
		Environment:           domain.EnvironmentTest,
		MerchantTransactionID: domain.NewMerchantTransactionID(),
		Status:                status,
		Currency:              "INR",
		AmountMinor:           amountMinor,
		MethodKind:            domain.MethodUPI,
		CreatedAt:             T0,
		UpdatedAt:             T0,
	}
	if status == domain.PaymentCaptured {
		p.AmountAuthorizedMinor = amountMinor
		p.AmountCapturedMinor = amountMinor
	}
	require.NoError(t, store.Payments().Create(context.Background(), p))
	return p
}

func SeedProviderConfig(t *testing.T, store domain.Store) *domain.ProviderConfig {
	t.Helper()
	cfg := &domain.ProviderConfig{
		ID:          uuid.NewString(),
		TenantID:    Tenant,
		Provider:    Provider,
		Environment: domain.EnvironmentTest,
		Enabled:     true,
		IsDefault:   true,
		MerchantID:  "MID",
		CreatedAt:   T0,
		UpdatedAt:   T0,
	}
	require.NoError(t, store.ProviderConfigs().Upsert(context.Background(), cfg))
	return cfg
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu       sync.Mutex
	Events   []domain.PaymentEvent
	Security []domain.SecurityEvent
}

func (p *RecordingPublisher) PublishPaymentEvents(_ context.Context, events ...domain.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, events...)
	return nil
}

func (p *RecordingPublisher) PublishSecurityEvent(_ context.Context, e domain.SecurityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Security = append(p.Security, e)
	return nil
}

func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, e.Type)
	}
	return out
}

// MockAdapter is a testify mock of domain.Adapter.
type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) Name() string { return Provider }

func (m *MockAdapter) CreatePayment(ctx context.Context, req domain.ProviderPaymentRequest) (*domain.ProviderPaymentResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*domain.ProviderPaymentResult)
	return res, args.Error(1)
}

func (m *MockAdapter) WebhookDedupeKey(headers http.Header, body []byte) (string, error) {
	args := m.Called(headers, body)
	return args.String(0), args.Error(1)
}

func (m *MockAdapter) VerifyWebhook(ctx context.Context, headers http.Header, body []byte) (*domain.WebhookVerification, error) {
	args := m.Called(ctx, headers, body)
	res, _ := args.Get(0).(*domain.WebhookVerification)
	return res, args.Error(1)
}

func (m *MockAdapter) GetStatus(ctx context.Context, merchantTransactionID string) (*domain.ProviderStatus, error) {
	args := m.Called(ctx, merchantTransactionID)
	res, _ := args.Get(0).(*domain.ProviderStatus)
	return res, args.Error(1)
}

func (m *MockAdapter) CreateRefund(ctx context.Context, req domain.ProviderRefundRequest) (*domain.ProviderRefundResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*domain.ProviderRefundResult)
	return res, args.Error(1)
}

func (m *MockAdapter) GetRefundStatus(ctx context.Context, merchantRefundID string) (*domain.ProviderRefundResult, error) {
	args := m.Called(ctx, merchantRefundID)
	res, _ := args.Get(0).(*domain.ProviderRefundResult)
	return res, args.Error(1)
}

func (m *MockAdapter) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// StaticFactory returns the same adapter for every configuration.
type StaticFactory struct {
	A domain.Adapter
}

func (f StaticFactory) Adapter(cfg *domain.ProviderConfig) (domain.Adapter, error) {
	if cfg.Provider != f.A.Name() {
		return nil, domain.ErrUnknownProvider
	}
	return f.A, nil
}

// MemoryCache is an in-process domain.ResponseCache.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]domain.CachedResponse
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]domain.CachedResponse)}
}

func (c *MemoryCache) Get(_ context.Context, tenantID, scope, key string) (*domain.CachedResponse, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	resp, ok := c.items[tenantID+"|"+scope+"|"+key]
	if !ok {
		return nil, false, nil
	}
	return &resp, true, nil
}

func (c *MemoryCache) Set(_ context.Context, tenantID, scope, key string, resp *domain.CachedResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[tenantID+"|"+scope+"|"+key] = *resp
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, tenantID, scope, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, tenantID+"|"+scope+"|"+key)
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
