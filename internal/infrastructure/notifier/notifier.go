package notifier

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
)

const SignatureHeader = "X-Signature"

type Options struct {
	// URLs maps tenant id to the merchant endpoint. Tenants without an entry
	// get no callbacks.
	URLs        map[string]string
	Secret      string
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
	HTTPClient  *http.Client
}

// CallbackPublisher forwards every event to next and, for order projection
// events, posts the new order status to the tenant's callback URL.
type CallbackPublisher struct {
	next   domain.EventPublisher
	opts   Options
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewCallbackPublisher(next domain.EventPublisher, opts Options, logger *slog.Logger) *CallbackPublisher {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return &CallbackPublisher{next: next, opts: opts, logger: logger}
}

func (p *CallbackPublisher) PublishPaymentEvents(ctx context.Context, events ...domain.PaymentEvent) error {
	err := p.next.PublishPaymentEvents(ctx, events...)
	for _, e := range events {
		if e.Type != domain.EventOrderProjected {
			continue
		}
		url, ok := p.opts.URLs[e.TenantID]
		if !ok || url == "" {
			continue
		}
		p.SendCallback(url, payloadFor(e))
	}
	return err
}

func (p *CallbackPublisher) PublishSecurityEvent(ctx context.Context, event domain.SecurityEvent) error {
	return p.next.PublishSecurityEvent(ctx, event)
}

// SendCallback delivers in the background. Failed deliveries are retried
// with a growing delay and then dropped; the event stays in the audit log.
func (p *CallbackPublisher) SendCallback(callbackURL string, payload CallbackPayload) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		body, err := json.Marshal(payload)
		if err != nil {
			p.logger.Error("failed to marshal callback", "order_id", payload.OrderID, "error", err)
			return
		}

		delay := p.opts.Backoff
		for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
			err = p.post(callbackURL, body)
			if err == nil {
				p.logger.Debug("callback delivered", "tenant", payload.TenantID, "order_id", payload.OrderID, "status", payload.Status)
				return
			}
			if attempt < p.opts.MaxAttempts {
				time.Sleep(delay)
				delay *= 2
			}
		}
		p.logger.Warn("callback failed",
			"tenant", payload.TenantID, "order_id", payload.OrderID, "attempts", p.opts.MaxAttempts, "error", err)
	}()
}

// Wait blocks until in-flight callbacks finish.
func (p *CallbackPublisher) Wait() {
	p.wg.Wait()
}

func (p *CallbackPublisher) post(callbackURL string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.opts.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(p.opts.Secret, body))
	}

	resp, err := p.opts.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned %d", resp.StatusCode)
	}
	return nil
}

// Sign is the hex HMAC-SHA256 of body, sent in X-Signature.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func payloadFor(e domain.PaymentEvent) CallbackPayload {
	str := func(k string) string {
		s, _ := e.Payload[k].(string)
		return s
	}
	return CallbackPayload{
		EventID:               e.ID,
		TenantID:              e.TenantID,
		OrderID:               e.OrderID,
		PaymentID:             e.PaymentID,
		Status:                str("status_to"),
		PaymentStatus:         str("payment_status_to"),
		PreviousStatus:        str("status_from"),
		PreviousPaymentStatus: str("payment_status_from"),
		ChangedAt:             e.CreatedAt,
	}
}
