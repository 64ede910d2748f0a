package phonepe

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
)

// WebhookDedupeKey reads the callback without verifying it. Redeliveries of
// the same gateway event produce the same key.
func (a *Adapter) WebhookDedupeKey(_ http.Header, body []byte) (string, error) {
	_, resp, err := decodeWebhook(body)
	if err != nil {
		return "", err
	}
	parts := []string{resp.Data.MerchantTransactionID, resp.Code}
	if resp.Data.TransactionID != "" {
		parts = append(parts, resp.Data.TransactionID)
	}
	return strings.Join(parts, ":"), nil
}

func (a *Adapter) VerifyWebhook(_ context.Context, headers http.Header, body []byte) (*domain.WebhookVerification, error) {
	if a.cfg.WebhookUsername != "" {
		expected := sha256.Sum256([]byte(a.cfg.WebhookUsername + ":" + a.cfg.WebhookPassword))
		got := strings.TrimSpace(strings.TrimPrefix(headers.Get(headerAuth), "SHA256"))
		if got == "" {
			return &domain.WebhookVerification{Reason: "missing authorization header"}, nil
		}
		if !equalHex(got, hex.EncodeToString(expected[:])) {
			return &domain.WebhookVerification{AuthFailure: true, Reason: "authorization mismatch"}, nil
		}
	}

	signature := headers.Get(headerVerify)
	if signature == "" {
		return &domain.WebhookVerification{Reason: "missing X-VERIFY header"}, nil
	}
	env, resp, err := decodeWebhook(body)
	if err != nil {
		return &domain.WebhookVerification{Reason: err.Error()}, nil
	}

	hash, index, ok := strings.Cut(signature, "###")
	if !ok || hash == "" {
		return &domain.WebhookVerification{Reason: "malformed X-VERIFY header"}, nil
	}
	if index != a.cfg.SaltIndex {
		return &domain.WebhookVerification{AuthFailure: true, Reason: fmt.Sprintf("unknown salt index %q", index)}, nil
	}
	expected := sha256.Sum256([]byte(env.Response + a.cfg.SaltKey))
	if !equalHex(hash, hex.EncodeToString(expected[:])) {
		return &domain.WebhookVerification{AuthFailure: true, Reason: "checksum mismatch"}, nil
	}

	return &domain.WebhookVerification{Verified: true, Event: toEvent(resp)}, nil
}

func equalHex(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(a)), []byte(strings.ToLower(b))) == 1
}

func toEvent(resp *apiResponse) *domain.WebhookEvent {
	mtid := resp.Data.MerchantTransactionID
	if domain.IsMerchantRefundID(mtid) {
		return &domain.WebhookEvent{
			Kind:             domain.WebhookRefund,
			Type:             resp.Code,
			MerchantRefundID: mtid,
			Refund:           normalizeRefund(mtid, resp),
		}
	}
	return &domain.WebhookEvent{
		Kind:                  domain.WebhookPayment,
		Type:                  resp.Code,
		MerchantTransactionID: mtid,
		Payment:               normalizePayment(resp),
	}
}
