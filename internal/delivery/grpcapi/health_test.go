package grpcapi_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func status(t *testing.T, h *grpcapi.HealthHandler, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestProviderHealthIsReported(t *testing.T) {
	store := testkit.NewStore(t)
	testkit.SeedProviderConfig(t, store)
	adapter := &testkit.MockAdapter{}
	adapter.On("HealthCheck", mock.Anything).Return(nil).Once()
	adapter.On("HealthCheck", mock.Anything).Return(errors.New("503 from gateway")).Once()

	h := grpcapi.NewHealthHandler(store, testkit.StaticFactory{A: adapter}, nil, logger.Discard(), time.Second)
	service := grpcapi.ProviderService(testkit.Tenant, testkit.Provider)
	assert.Equal(t, "payments.acme.mockpay", service)

	down, err := h.CheckProviders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, down)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h, service))

	down, err = h.CheckProviders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, down)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h, service))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h, grpcapi.ServiceName))
}

func TestUnknownAdapterIsNotServing(t *testing.T) {
	store := testkit.NewStore(t)
	cfg := testkit.SeedProviderConfig(t, store)
	cfg.Provider = "other"
	cfg.ID = "cfg-2"
	cfg.IsDefault = false
	require.NoError(t, store.ProviderConfigs().Upsert(context.Background(), cfg))

	adapter := &testkit.MockAdapter{}
	adapter.On("HealthCheck", mock.Anything).Return(nil)
	h := grpcapi.NewHealthHandler(store, testkit.StaticFactory{A: adapter}, nil, logger.Discard(), time.Second)

	down, err := h.CheckProviders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, down)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h, grpcapi.ProviderService(testkit.Tenant, "other")))
}
