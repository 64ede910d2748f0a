package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	paymentdto "github.com/LavaJover/shvark-payments-service/internal/usecase/dto/payment"
	"github.com/google/uuid"
)

type idempotentCall struct {
	tenantID    string
	scope       string
	key         string
	requestHash string
}

func requestHash(parts ...any) (string, error) {
	raw, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint request: %w", err)
	}
	return domain.HashParts(string(raw)), nil
}

// TokenURLKey is the server-derived idempotency key of a token-url checkout.
func TokenURLKey(tenantID, orderID string, amountMinor int64, currency string) string {
	return domain.HashParts(tenantID, orderID, strconv.FormatInt(amountMinor, 10), currency)
}

// claim either replays a completed response or reserves the key for the
// caller, who must then complete or release the returned record.
func (uc *DefaultPaymentUsecase) claim(ctx context.Context, call idempotentCall) (*paymentdto.IdempotentOutput, *domain.IdempotencyRecord, error) {
	if cached, ok := uc.cacheGet(ctx, call); ok {
		if cached.RequestHash != call.requestHash {
			return nil, nil, domain.ErrIdempotencyKeyReused
		}
		uc.metrics.RecordIdempotency(call.scope, "cache_hit")
		return &paymentdto.IdempotentOutput{Body: cached.Body, PaymentID: cached.PaymentID, Replayed: true}, nil, nil
	}

	record, existing, err := uc.reserve(ctx, call)
	if err != nil {
		return nil, nil, err
	}
	if record != nil {
		uc.metrics.RecordIdempotency(call.scope, "miss")
		return nil, record, nil
	}

	if existing.RequestHash != call.requestHash {
		return nil, nil, domain.ErrIdempotencyKeyReused
	}
	if existing.Status != domain.IdempotencyCompleted {
		uc.metrics.RecordIdempotency(call.scope, "in_flight")
		return nil, nil, domain.ErrRequestInFlight
	}
	uc.metrics.RecordIdempotency(call.scope, "ledger_hit")
	uc.cacheSet(ctx, call, existing)
	return &paymentdto.IdempotentOutput{Body: existing.ResponseBody, PaymentID: existing.PaymentID, Replayed: true}, nil, nil
}

// reserve inserts a pending ledger row. A row past its retention window is
// dropped and the insert retried once.
func (uc *DefaultPaymentUsecase) reserve(ctx context.Context, call idempotentCall) (*domain.IdempotencyRecord, *domain.IdempotencyRecord, error) {
	for attempt := 0; ; attempt++ {
		now := uc.now()
		expiresAt := now.Add(uc.settings.IdempotencyTTL)
		record := &domain.IdempotencyRecord{
			ID:          uuid.NewString(),
			TenantID:    call.tenantID,
			Scope:       call.scope,
			Key:         call.key,
			RequestHash: call.requestHash,
			Status:      domain.IdempotencyPending,
			ExpiresAt:   &expiresAt,
			CreatedAt:   now,
		}
		existing, created, err := uc.store.Idempotency().Reserve(ctx, record)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
		}
		if created {
			return record, nil, nil
		}
		if attempt > 0 || existing.ExpiresAt == nil || now.Before(*existing.ExpiresAt) {
			return nil, existing, nil
		}
		if err := uc.store.Idempotency().Delete(ctx, call.tenantID, call.scope, call.key); err != nil {
			return nil, nil, err
		}
	}
}

// complete stores the response on the reserved record within tx.
func (uc *DefaultPaymentUsecase) complete(ctx context.Context, tx domain.Store, record *domain.IdempotencyRecord, body []byte, paymentID string) error {
	now := uc.now()
	record.Status = domain.IdempotencyCompleted
	record.ResponseBody = body
	record.PaymentID = paymentID
	record.CompletedAt = &now
	return tx.Idempotency().Complete(ctx, record)
}

func (uc *DefaultPaymentUsecase) release(ctx context.Context, record *domain.IdempotencyRecord) {
	if err := uc.store.Idempotency().Delete(context.WithoutCancel(ctx), record.TenantID, record.Scope, record.Key); err != nil {
		uc.logger.Error("failed to release idempotency key",
			"tenant", record.TenantID, "scope", record.Scope, "error", err)
	}
}

// invalidate drops both the ledger row and its cached copy.
func (uc *DefaultPaymentUsecase) invalidate(ctx context.Context, call idempotentCall) error {
	if err := uc.store.Idempotency().Delete(ctx, call.tenantID, call.scope, call.key); err != nil {
		return fmt.Errorf("failed to invalidate idempotency key: %w", err)
	}
	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, call.tenantID, call.scope, call.key); err != nil {
			uc.logger.Warn("failed to drop cached response", "scope", call.scope, "error", err)
		}
	}
	return nil
}

func (uc *DefaultPaymentUsecase) cacheGet(ctx context.Context, call idempotentCall) (*domain.CachedResponse, bool) {
	if uc.cache == nil {
		return nil, false
	}
	cached, ok, err := uc.cache.Get(ctx, call.tenantID, call.scope, call.key)
	if err != nil {
		uc.logger.Warn("response cache unavailable, using ledger", "scope", call.scope, "error", err)
		return nil, false
	}
	return cached, ok
}

func (uc *DefaultPaymentUsecase) cacheSet(ctx context.Context, call idempotentCall, record *domain.IdempotencyRecord) {
	if uc.cache == nil {
		return
	}
	err := uc.cache.Set(ctx, call.tenantID, call.scope, call.key, &domain.CachedResponse{
		RequestHash: record.RequestHash,
		PaymentID:   record.PaymentID,
		Body:        record.ResponseBody,
	})
	if err != nil {
		uc.logger.Warn("failed to cache response", "scope", call.scope, "error", err)
	}
}

// finish completes the ledger outside of any other transaction and returns
// the fresh response.
func (uc *DefaultPaymentUsecase) finish(ctx context.Context, call idempotentCall, record *domain.IdempotencyRecord, body []byte, paymentID string) (*paymentdto.IdempotentOutput, error) {
	if err := uc.complete(ctx, uc.store, record, body, paymentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("idempotency record vanished before completion", "scope", call.scope)
		} else {
			return nil, fmt.Errorf("failed to complete idempotency key: %w", err)
		}
	} else {
		uc.cacheSet(ctx, call, record)
	}
	return &paymentdto.IdempotentOutput{Body: body, PaymentID: paymentID}, nil
}
