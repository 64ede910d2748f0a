package payment

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
)

// resolveAdapter picks the tenant's enabled configuration for provider, or the
// tenant default when provider is empty.
func (uc *DefaultPaymentUsecase) resolveAdapter(ctx context.Context, tenantID, provider string) (*domain.ProviderConfig, domain.Adapter, error) {
	var (
		cfg *domain.ProviderConfig
		err error
	)
	if provider != "" {
		cfg, err = uc.store.ProviderConfigs().GetEnabled(ctx, tenantID, provider)
	} else {
		cfg, err = uc.store.ProviderConfigs().GetDefault(ctx, tenantID)
	}
	if err != nil {
		return nil, nil, err
	}
	adapter, err := uc.adapters.Adapter(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build %s adapter: %w", cfg.Provider, err)
	}
	return cfg, adapter, nil
}

// adapterFor returns the adapter of the configuration a payment was created with.
func (uc *DefaultPaymentUsecase) adapterFor(ctx context.Context, p *domain.Payment) (domain.Adapter, error) {
	_, adapter, err := uc.resolveAdapter(ctx, p.TenantID, p.Provider)
	return adapter, err
}
