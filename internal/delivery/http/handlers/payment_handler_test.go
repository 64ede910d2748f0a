package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LavaJover/shvark-payments-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-payments-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/logger"
	paymentdto "github.com/LavaJover/shvark-payments-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/webhook"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUsecase struct{ mock.Mock }

func (m *mockUsecase) CreatePayment(ctx context.Context, tenantID string, input *paymentdto.CreatePaymentInput, key, hint string) (*paymentdto.IdempotentOutput, error) {
	args := m.Called(ctx, tenantID, input, key, hint)
	out, _ := args.Get(0).(*paymentdto.IdempotentOutput)
	return out, args.Error(1)
}

func (m *mockUsecase) StartTokenURLFlow(ctx context.Context, tenantID string, input *paymentdto.TokenURLInput) (*paymentdto.IdempotentOutput, error) {
	args := m.Called(ctx, tenantID, input)
	out, _ := args.Get(0).(*paymentdto.IdempotentOutput)
	return out, args.Error(1)
}

func (m *mockUsecase) CancelPayment(ctx context.Context, tenantID string, input *paymentdto.CancelPaymentInput, key string) (*paymentdto.IdempotentOutput, error) {
	args := m.Called(ctx, tenantID, input, key)
	out, _ := args.Get(0).(*paymentdto.IdempotentOutput)
	return out, args.Error(1)
}

func (m *mockUsecase) CreateRefund(ctx context.Context, tenantID string, input *paymentdto.CreateRefundInput, key string) (*paymentdto.IdempotentOutput, error) {
	args := m.Called(ctx, tenantID, input, key)
	out, _ := args.Get(0).(*paymentdto.IdempotentOutput)
	return out, args.Error(1)
}

func (m *mockUsecase) SyncRefund(ctx context.Context, tenantID, refundID string) (*paymentdto.RefundOutput, error) {
	args := m.Called(ctx, tenantID, refundID)
	out, _ := args.Get(0).(*paymentdto.RefundOutput)
	return out, args.Error(1)
}

func (m *mockUsecase) GetPaymentStatus(ctx context.Context, tenantID, paymentID string) (*paymentdto.PaymentStatusOutput, error) {
	args := m.Called(ctx, tenantID, paymentID)
	out, _ := args.Get(0).(*paymentdto.PaymentStatusOutput)
	return out, args.Error(1)
}

func (m *mockUsecase) GetOrderInfo(ctx context.Context, tenantID, orderID string) (*paymentdto.OrderInfoOutput, error) {
	args := m.Called(ctx, tenantID, orderID)
	out, _ := args.Get(0).(*paymentdto.OrderInfoOutput)
	return out, args.Error(1)
}

func (m *mockUsecase) RecordReturn(ctx context.Context, tenantID, provider, mtid string) (*paymentdto.PaymentStatusOutput, error) {
	args := m.Called(ctx, tenantID, provider, mtid)
	out, _ := args.Get(0).(*paymentdto.PaymentStatusOutput)
	return out, args.Error(1)
}

type fakeWebhooks struct {
	result *webhook.Result
	err    error
	got    webhook.Request
}

func (f *fakeWebhooks) Handle(_ context.Context, req webhook.Request) (*webhook.Result, error) {
	f.got = req
	return f.result, f.err
}

func newServer(uc *mockUsecase, wh *fakeWebhooks) http.Handler {
	h := handlers.NewPaymentHandler(uc, wh, logger.Discard())
	return handlers.NewRouter(h, http.NotFoundHandler(), logger.Discard())
}

func do(t *testing.T, srv http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var out response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreatePaymentPassesHeadersAndBody(t *testing.T) {
	uc := &mockUsecase{}
	body := []byte(`{"paymentId":"pay-1","status":"created"}`)
	uc.On("CreatePayment", mock.Anything, "acme", mock.MatchedBy(func(in *paymentdto.CreatePaymentInput) bool {
		return in.OrderID == "ord-1" && in.Amount.Equal(decimal.RequireFromString("10.50")) && in.Currency == "INR"
	}), "key-1", "phonepe").Return(&paymentdto.IdempotentOutput{Body: body, PaymentID: "pay-1"}, nil)

	rec := do(t, newServer(uc, nil), http.MethodPost, "/api/payments/create",
		`{"orderId":"ord-1","amount":"10.50","currency":"INR"}`,
		map[string]string{"X-Tenant-ID": "acme", "Idempotency-Key": "key-1", "X-Payment-Provider": "phonepe"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, string(body), rec.Body.String())
	assert.Empty(t, rec.Header().Get("Idempotent-Replayed"))
	uc.AssertExpectations(t)
}

func TestReplayedResponseIsMarked(t *testing.T) {
	uc := &mockUsecase{}
	body := []byte(`{"paymentId":"pay-1"}`)
	uc.On("CreatePayment", mock.Anything, "acme", mock.Anything, "key-1", "").
		Return(&paymentdto.IdempotentOutput{Body: body, Replayed: true}, nil)

	rec := do(t, newServer(uc, nil), http.MethodPost, "/api/payments/create", `{"orderId":"ord-1","amount":10}`,
		map[string]string{"X-Tenant-ID": "acme", "Idempotency-Key": "key-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, string(body), rec.Body.String())
}

func TestMissingTenantIsRejected(t *testing.T) {
	uc := &mockUsecase{}
	rec := do(t, newServer(uc, nil), http.MethodGet, "/api/payments/status/pay-1", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec).Code)
	uc.AssertNotCalled(t, "GetPaymentStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestMalformedBodyIsRejected(t *testing.T) {
	uc := &mockUsecase{}
	rec := do(t, newServer(uc, nil), http.MethodPost, "/api/payments/create", `{"amount":`,
		map[string]string{"X-Tenant-ID": "acme", "Idempotency-Key": "k"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, newServer(uc, nil), http.MethodPost, "/api/payments/create", ``,
		map[string]string{"X-Tenant-ID": "acme", "Idempotency-Key": "k"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrIdempotencyKeyRequired, http.StatusBadRequest, "IDEMPOTENCY_KEY_REQUIRED"},
		{domain.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{domain.ErrIdempotencyKeyReused, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED"},
		{domain.ErrAmountMismatch, http.StatusUnprocessableEntity, "AMOUNT_MISMATCH"},
		{domain.ErrRequestInFlight, http.StatusConflict, "REQUEST_IN_FLIGHT"},
		{domain.ErrOrderAlreadyPaid, http.StatusConflict, "ORDER_ALREADY_PAID"},
		{domain.ErrOrderNotFound, http.StatusNotFound, "NOT_FOUND"},
		{&domain.ProviderError{Provider: "phonepe", Op: "pay", Code: "BAD_REQUEST"}, http.StatusBadGateway, "PROVIDER_ERROR"},
		{errors.New("db is gone"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			uc := &mockUsecase{}
			uc.On("CreatePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(nil, tc.err)

			rec := do(t, newServer(uc, nil), http.MethodPost, "/api/payments/create", `{"orderId":"o"}`,
				map[string]string{"X-Tenant-ID": "acme"})

			assert.Equal(t, tc.status, rec.Code)
			out := decodeError(t, rec)
			assert.Equal(t, tc.code, out.Code)
			assert.False(t, out.Success)
			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, "internal error", out.Error)
			}
		})
	}
}

func TestTokenURL(t *testing.T) {
	uc := &mockUsecase{}
	uc.On("StartTokenURLFlow", mock.Anything, "acme", mock.MatchedBy(func(in *paymentdto.TokenURLInput) bool {
		return in.OrderID == "ord-1"
	})).Return(&paymentdto.IdempotentOutput{Body: []byte(`{"tokenUrl":"https://pay"}`)}, nil)

	rec := do(t, newServer(uc, nil), http.MethodPost, "/api/payments/token-url",
		`{"orderId":"ord-1","amount":"10","currency":"INR"}`, map[string]string{"X-Tenant-ID": "acme"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tokenUrl":"https://pay"}`, rec.Body.String())
}

func TestCancelAndRefundUseIdempotencyKey(t *testing.T) {
	uc := &mockUsecase{}
	uc.On("CancelPayment", mock.Anything, "acme", mock.Anything, "c-1").
		Return(&paymentdto.IdempotentOutput{Body: []byte(`{"cancelled":true}`)}, nil)
	uc.On("CreateRefund", mock.Anything, "acme", mock.MatchedBy(func(in *paymentdto.CreateRefundInput) bool {
		return in.PaymentID == "pay-1" && in.Amount.Equal(decimal.NewFromInt(4))
	}), "r-1").Return(&paymentdto.IdempotentOutput{Body: []byte(`{"refundId":"rf-1"}`)}, nil)

	srv := newServer(uc, nil)
	rec := do(t, srv, http.MethodPost, "/api/payments/cancel", `{"paymentId":"pay-1"}`,
		map[string]string{"X-Tenant-ID": "acme", "Idempotency-Key": "c-1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/payments/refunds", `{"paymentId":"pay-1","amount":"4"}`,
		map[string]string{"X-Tenant-ID": "acme", "Idempotency-Key": "r-1"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	uc.AssertExpectations(t)
}

func TestQueries(t *testing.T) {
	uc := &mockUsecase{}
	uc.On("GetPaymentStatus", mock.Anything, "acme", "pay-1").
		Return(&paymentdto.PaymentStatusOutput{PaymentID: "pay-1", Status: domain.PaymentFailed}, nil)
	uc.On("GetOrderInfo", mock.Anything, "acme", "ord-1").
		Return(&paymentdto.OrderInfoOutput{}, nil)
	uc.On("SyncRefund", mock.Anything, "acme", "rf-1").
		Return(&paymentdto.RefundOutput{RefundID: "rf-1", Status: domain.RefundSucceeded}, nil)

	srv := newServer(uc, nil)
	hdr := map[string]string{"X-Tenant-ID": "acme"}

	rec := do(t, srv, http.MethodGet, "/api/payments/status/pay-1", "", hdr)
	require.Equal(t, http.StatusOK, rec.Code)
	var st paymentdto.PaymentStatusOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, domain.PaymentFailed, st.Status)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/payments/order-info/ord-1", "", hdr).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/payments/refunds/rf-1", "", hdr).Code)
	uc.AssertExpectations(t)
}

func TestPhonePeReturnReadsQuery(t *testing.T) {
	uc := &mockUsecase{}
	uc.On("RecordReturn", mock.Anything, "acme", "phonepe", "TX123").
		Return(&paymentdto.PaymentStatusOutput{PaymentID: "pay-1", Status: domain.PaymentProcessing}, nil)

	rec := do(t, newServer(uc, nil), http.MethodGet,
		"/api/payments/phonepe/return?tenant=acme&merchantTransactionId=TX123", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
}

func TestPhonePeReturnReadsForm(t *testing.T) {
	uc := &mockUsecase{}
	uc.On("RecordReturn", mock.Anything, "acme", "phonepe", "TX9").
		Return(&paymentdto.PaymentStatusOutput{PaymentID: "pay-1"}, nil)

	rec := do(t, newServer(uc, nil), http.MethodPost, "/api/payments/phonepe/return?tenant=acme",
		"transactionId=TX9&code=PAYMENT_SUCCESS",
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})

	assert.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
}

func TestWebhookOutcomes(t *testing.T) {
	cases := []struct {
		outcome webhook.Outcome
		status  int
	}{
		{webhook.OutcomeProcessed, http.StatusOK},
		{webhook.OutcomeAlreadyProcessed, http.StatusOK},
		{webhook.OutcomeIgnored, http.StatusOK},
		{webhook.OutcomeUnauthorized, http.StatusUnauthorized},
		{webhook.OutcomeForbidden, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(string(tc.outcome), func(t *testing.T) {
			wh := &fakeWebhooks{result: &webhook.Result{Outcome: tc.outcome}}
			rec := do(t, newServer(&mockUsecase{}, wh), http.MethodPost,
				"/api/payments/webhook/phonepe?tenant=acme", `{"response":"abc"}`,
				map[string]string{"X-VERIFY": "sig###1"})

			assert.Equal(t, tc.status, rec.Code)
			var out response.WebhookResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			assert.Equal(t, string(tc.outcome), out.Status)

			assert.Equal(t, "acme", wh.got.TenantID)
			assert.Equal(t, "phonepe", wh.got.Provider)
			assert.Equal(t, `{"response":"abc"}`, string(wh.got.Body))
			assert.Equal(t, "sig###1", wh.got.Headers.Get("X-VERIFY"))
		})
	}
}

func TestWebhookUnknownProviderConfig(t *testing.T) {
	wh := &fakeWebhooks{err: domain.ErrProviderNotConfigured}
	rec := do(t, newServer(&mockUsecase{}, wh), http.MethodPost,
		"/api/payments/webhook/nope?tenant=acme", `{}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := do(t, newServer(&mockUsecase{}, nil), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
