package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrOrderNotFound          = fmt.Errorf("order %w", ErrNotFound)
	ErrPaymentNotFound        = fmt.Errorf("payment %w", ErrNotFound)
	ErrRefundNotFound         = fmt.Errorf("refund %w", ErrNotFound)
	ErrPollingJobNotFound     = fmt.Errorf("polling job %w", ErrNotFound)
	ErrProviderNotConfigured  = fmt.Errorf("provider configuration %w", ErrNotFound)
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyKeyReused   = errors.New("idempotency key reused with a different request")
	ErrRequestInFlight        = errors.New("request with this idempotency key is still in progress")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidRequest         = errors.New("invalid request")
	ErrAmountMismatch         = errors.New("amount does not match order total")
	ErrOrderAlreadyPaid       = errors.New("order is already paid")
	ErrOrderNotPayable        = errors.New("order is not payable")
	ErrPaymentNotCaptured     = errors.New("payment is not captured")
	ErrPaymentAlreadyCaptured = errors.New("payment is already captured")
	ErrPaymentTerminal        = errors.New("payment is in a terminal state")
	ErrRefundExceedsCaptured  = errors.New("refund amount exceeds refundable balance")
	ErrUnknownProvider        = errors.New("unknown provider")
	ErrDuplicate              = errors.New("duplicate record")
)

// ProviderError keeps the gateway failure intact so callers can surface it.
type ProviderError struct {
	Provider  string
	Op        string
	Code      string
	Message   string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Provider, e.Op)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsTransient reports whether err leaves the provider-side outcome unknown:
// a transient provider error or a deadline hit mid-call.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Transient {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
