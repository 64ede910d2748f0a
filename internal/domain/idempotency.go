package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

type IdempotencyStatus string

const (
	IdempotencyPending   IdempotencyStatus = "pending"
	IdempotencyCompleted IdempotencyStatus = "completed"
)

const (
	ScopeCreatePayment = "payments.create"
	ScopeTokenURL      = "payments.token_url"
	ScopeCancelPayment = "payments.cancel"
	ScopeCreateRefund  = "payments.refund"
)

type IdempotencyRecord struct {
	ID           string
	TenantID     string
	Scope        string
	Key          string
	RequestHash  string
	Status       IdempotencyStatus
	ResponseBody []byte
	PaymentID    string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// HashParts is the content hash used for request fingerprints and derived keys.
func HashParts(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// CachedResponse is the completed ledger entry as held by a ResponseCache.
type CachedResponse struct {
	RequestHash string `json:"request_hash"`
	PaymentID   string `json:"payment_id,omitempty"`
	Body        []byte `json:"body"`
}

// ResponseCache sits in front of the idempotency ledger. The ledger stays
// authoritative; a cache miss or error always falls back to it.
type ResponseCache interface {
	Get(ctx context.Context, tenantID, scope, key string) (*CachedResponse, bool, error)
	Set(ctx context.Context, tenantID, scope, key string, resp *CachedResponse) error
	Delete(ctx context.Context, tenantID, scope, key string) error
}
