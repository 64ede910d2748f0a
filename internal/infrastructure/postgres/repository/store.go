package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"gorm.io/gorm"
)

// DefaultStore hands out repositories bound to one *gorm.DB, which is either
// the pool or an open transaction.
type DefaultStore struct {
	DB *gorm.DB
}

func NewDefaultStore(db *gorm.DB) *DefaultStore {
	return &DefaultStore{DB: db}
}

func (s *DefaultStore) Orders() domain.OrderRepository {
	return NewDefaultOrderRepository(s.DB)
}

func (s *DefaultStore) Payments() domain.PaymentRepository {
	return NewDefaultPaymentRepository(s.DB)
}

func (s *DefaultStore) Refunds() domain.RefundRepository {
	return NewDefaultRefundRepository(s.DB)
}

func (s *DefaultStore) Events() domain.EventRepository {
	return NewDefaultEventRepository(s.DB)
}

func (s *DefaultStore) Inbox() domain.WebhookInboxRepository {
	return NewDefaultWebhookInboxRepository(s.DB)
}

func (s *DefaultStore) PollingJobs() domain.PollingJobRepository {
	return NewDefaultPollingJobRepository(s.DB)
}

func (s *DefaultStore) Idempotency() domain.IdempotencyRepository {
	return NewDefaultIdempotencyRepository(s.DB)
}

func (s *DefaultStore) ProviderConfigs() domain.ProviderConfigRepository {
	return NewDefaultProviderConfigRepository(s.DB)
}

func (s *DefaultStore) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewDefaultStore(tx))
	})
}

func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicate
	default:
		return err
	}
}
