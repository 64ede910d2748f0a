// Package phonepe is the reference UPI adapter. It speaks the PhonePe PG v1
// API: base64 JSON payloads signed with the merchant salt.
package phonepe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
)

const Name = "phonepe"

const (
	defaultMaxRetries = 3
	defaultPayLinkTTL = 15 * time.Minute
)

type Options struct {
	HTTPClient     *http.Client
	Logger         *slog.Logger
	Now            func() time.Time
	PayLinkTTL     time.Duration
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

func (o *Options) withDefaults() {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.PayLinkTTL <= 0 {
		o.PayLinkTTL = defaultPayLinkTTL
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 200 * time.Millisecond
	}
	if o.RetryMaxDelay <= 0 {
		o.RetryMaxDelay = 2 * time.Second
	}
}

type Adapter struct {
	cfg        *domain.ProviderConfig
	client     *http.Client
	logger     *slog.Logger
	opts       Options
	maxRetries int
}

func New(cfg *domain.ProviderConfig, opts Options) (*Adapter, error) {
	if cfg.MerchantID == "" || cfg.SaltKey == "" || cfg.SaltIndex == "" || cfg.BaseURL == "" {
		return nil, fmt.Errorf("phonepe config for tenant %s is incomplete", cfg.TenantID)
	}
	opts.withDefaults()
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Adapter{
		cfg:        cfg,
		client:     opts.HTTPClient,
		logger:     opts.Logger.With("provider", Name, "tenant", cfg.TenantID),
		opts:       opts,
		maxRetries: maxRetries,
	}, nil
}

func (a *Adapter) Name() string {
	return Name
}

func instrumentFor(flow domain.PaymentFlow) paymentInstrument {
	switch flow {
	case domain.FlowIntent:
		return paymentInstrument{Type: "UPI_INTENT"}
	case domain.FlowQR:
		return paymentInstrument{Type: "UPI_QR"}
	default:
		return paymentInstrument{Type: "PAY_PAGE"}
	}
}

func (a *Adapter) CreatePayment(ctx context.Context, req domain.ProviderPaymentRequest) (*domain.ProviderPaymentResult, error) {
	userID := req.Customer.ID
	if userID == "" {
		userID = "U" + domain.HashParts(a.cfg.TenantID, req.OrderID)[:20]
	}
	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = a.cfg.CallbackURL
	}
	redirectURL := req.RedirectURL
	if redirectURL == "" {
		redirectURL = a.cfg.ReturnURL
	}

	payload, err := encodePayload(payRequest{
		MerchantID:            a.cfg.MerchantID,
		MerchantTransactionID: req.MerchantTransactionID,
		MerchantUserID:        userID,
		Amount:                req.AmountMinor,
		RedirectURL:           redirectURL,
		RedirectMode:          "REDIRECT",
		CallbackURL:           callbackURL,
		MobileNumber:          req.Customer.Phone,
		PaymentInstrument:     instrumentFor(req.Flow),
	})
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(envelope{Request: payload})
	if err != nil {
		return nil, err
	}

	resp, err := a.call(ctx, "pay", http.MethodPost, payPath, checksum(payload, payPath, a.cfg.SaltKey, a.cfg.SaltIndex), body)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &domain.ProviderError{Provider: Name, Op: "pay", Code: resp.Code, Message: resp.Message}
	}

	expiresAt := a.opts.Now().Add(a.opts.PayLinkTTL)
	result := &domain.ProviderPaymentResult{
		ProviderReferenceID: resp.Data.TransactionID,
		Status:              domain.PaymentRequiresAction,
		ProviderStatus:      resp.Code,
		ExpiresAt:           &expiresAt,
		Raw: map[string]any{
			"code":                  resp.Code,
			"merchantTransactionId": resp.Data.MerchantTransactionID,
		},
	}
	if ir := resp.Data.InstrumentResponse; ir != nil {
		result.Raw["instrumentType"] = ir.Type
		result.IntentURL = ir.IntentURL
		result.QRData = ir.QRData
		if ir.RedirectInfo != nil {
			result.RedirectURL = ir.RedirectInfo.URL
		}
	}
	return result, nil
}

func (a *Adapter) statusRequest(ctx context.Context, op, merchantTxnID string) (*apiResponse, error) {
	path := fmt.Sprintf("%s/%s/%s", statusPath, a.cfg.MerchantID, merchantTxnID)
	return a.call(ctx, op, http.MethodGet, path, checksum("", path, a.cfg.SaltKey, a.cfg.SaltIndex), nil)
}

func (a *Adapter) GetStatus(ctx context.Context, merchantTransactionID string) (*domain.ProviderStatus, error) {
	resp, err := a.statusRequest(ctx, "status", merchantTransactionID)
	if err != nil {
		return nil, err
	}
	return normalizePayment(resp), nil
}

func (a *Adapter) CreateRefund(ctx context.Context, req domain.ProviderRefundRequest) (*domain.ProviderRefundResult, error) {
	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = a.cfg.CallbackURL
	}
	payload, err := encodePayload(refundRequest{
		MerchantID:            a.cfg.MerchantID,
		MerchantUserID:        "U" + domain.HashParts(a.cfg.TenantID, req.OriginalMerchantTransactionID)[:20],
		OriginalTransactionID: req.OriginalMerchantTransactionID,
		MerchantTransactionID: req.MerchantRefundID,
		Amount:                req.AmountMinor,
		CallbackURL:           callbackURL,
	})
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(envelope{Request: payload})
	if err != nil {
		return nil, err
	}

	resp, err := a.call(ctx, "refund", http.MethodPost, refundPath, checksum(payload, refundPath, a.cfg.SaltKey, a.cfg.SaltIndex), body)
	if err != nil {
		return nil, err
	}
	if !resp.Success && resp.Code != codePaymentPending {
		return nil, &domain.ProviderError{Provider: Name, Op: "refund", Code: resp.Code, Message: resp.Message}
	}
	return normalizeRefund(req.MerchantRefundID, resp), nil
}

func (a *Adapter) GetRefundStatus(ctx context.Context, merchantRefundID string) (*domain.ProviderRefundResult, error) {
	resp, err := a.statusRequest(ctx, "refund_status", merchantRefundID)
	if err != nil {
		return nil, err
	}
	return normalizeRefund(merchantRefundID, resp), nil
}

// HealthCheck queries a transaction id that never exists. Any well-formed
// answer, including TRANSACTION_NOT_FOUND, means the gateway is reachable and
// accepts our checksum.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	path := fmt.Sprintf("%s/%s/%s", statusPath, a.cfg.MerchantID, "HEALTHCHECK")
	resp, err := a.do(ctx, http.MethodGet, path, checksum("", path, a.cfg.SaltKey, a.cfg.SaltIndex), nil)
	if err != nil {
		return a.providerError("health", "", err, transient(err))
	}
	if resp.Code == codeInternalServerError || resp.Code == "AUTHORIZATION_FAILED" {
		return &domain.ProviderError{Provider: Name, Op: "health", Code: resp.Code, Message: resp.Message}
	}
	return nil
}

func decodeWebhook(body []byte) (*webhookEnvelope, *apiResponse, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, fmt.Errorf("malformed webhook body: %w", err)
	}
	if env.Response == "" {
		return nil, nil, fmt.Errorf("webhook body has no response field")
	}
	raw, err := base64.StdEncoding.DecodeString(env.Response)
	if err != nil {
		return nil, nil, fmt.Errorf("webhook response is not base64: %w", err)
	}
	var resp apiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, fmt.Errorf("webhook response is not json: %w", err)
	}
	if resp.Data.MerchantTransactionID == "" {
		return nil, nil, fmt.Errorf("webhook response has no merchantTransactionId")
	}
	return &env, &resp, nil
}
