package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	paymentdto "github.com/LavaJover/shvark-payments-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/payment"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/webhook"
	"github.com/go-chi/chi/v5"
)

const (
	headerTenant         = "X-Tenant-ID"
	headerIdempotencyKey = "Idempotency-Key"
	headerProvider       = "X-Payment-Provider"
	headerReplayed       = "Idempotent-Replayed"

	maxBodyBytes = 1 << 20
)

// WebhookRouter is the inbound webhook state machine.
type WebhookRouter interface {
	Handle(ctx context.Context, req webhook.Request) (*webhook.Result, error)
}

type PaymentHandler struct {
	uc       payment.PaymentUsecase
	webhooks WebhookRouter
	logger   *slog.Logger
}

func NewPaymentHandler(uc payment.PaymentUsecase, webhooks WebhookRouter, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{uc: uc, webhooks: webhooks, logger: logger}
}

func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/payments", func(r chi.Router) {
		r.Post("/create", h.createPayment)
		r.Post("/token-url", h.tokenURL)
		r.Post("/cancel", h.cancelPayment)
		r.Post("/refunds", h.createRefund)
		r.Get("/refunds/{refundId}", h.syncRefund)
		r.Get("/status/{paymentId}", h.paymentStatus)
		r.Get("/order-info/{orderId}", h.orderInfo)

		// Provider-signed, so no tenant header is required.
		r.Post("/webhook/{provider}", h.webhook)
		r.Get("/phonepe/return", h.phonepeReturn)
		r.Post("/phonepe/return", h.phonepeReturn)
	})
}

func (h *PaymentHandler) createPayment(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	var input paymentdto.CreatePaymentInput
	if !h.decode(w, r, &input) {
		return
	}
	out, err := h.uc.CreatePayment(r.Context(), tenant, &input,
		r.Header.Get(headerIdempotencyKey), r.Header.Get(headerProvider))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondRaw(w, http.StatusCreated, out.Body, out.Replayed)
}

func (h *PaymentHandler) tokenURL(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	var input paymentdto.TokenURLInput
	if !h.decode(w, r, &input) {
		return
	}
	out, err := h.uc.StartTokenURLFlow(r.Context(), tenant, &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, out.Body, out.Replayed)
}

func (h *PaymentHandler) cancelPayment(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	var input paymentdto.CancelPaymentInput
	if !h.decode(w, r, &input) {
		return
	}
	out, err := h.uc.CancelPayment(r.Context(), tenant, &input, r.Header.Get(headerIdempotencyKey))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, out.Body, out.Replayed)
}

func (h *PaymentHandler) createRefund(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	var input paymentdto.CreateRefundInput
	if !h.decode(w, r, &input) {
		return
	}
	out, err := h.uc.CreateRefund(r.Context(), tenant, &input, r.Header.Get(headerIdempotencyKey))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondRaw(w, http.StatusCreated, out.Body, out.Replayed)
}

func (h *PaymentHandler) syncRefund(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	out, err := h.uc.SyncRefund(r.Context(), tenant, chi.URLParam(r, "refundId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func (h *PaymentHandler) paymentStatus(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	out, err := h.uc.GetPaymentStatus(r.Context(), tenant, chi.URLParam(r, "paymentId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func (h *PaymentHandler) orderInfo(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	out, err := h.uc.GetOrderInfo(r.Context(), tenant, chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, out)
}

// phonepeReturn only records that the buyer came back. PhonePe posts the
// redirect as a form, test setups usually send a GET.
func (h *PaymentHandler) phonepeReturn(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	mtid := r.Form.Get("merchantTransactionId")
	if mtid == "" {
		mtid = r.Form.Get("transactionId")
	}
	out, err := h.uc.RecordReturn(r.Context(), tenant, "phonepe", mtid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, out)
}

func (h *PaymentHandler) tenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenant := strings.TrimSpace(r.Header.Get(headerTenant))
	if tenant == "" {
		tenant = strings.TrimSpace(r.URL.Query().Get("tenant"))
	}
	if tenant == "" {
		writeError(w, r, h.logger, fmt.Errorf("%w: %s header is required", domain.ErrInvalidRequest, headerTenant))
		return "", false
	}
	return tenant, true
}

func (h *PaymentHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		writeError(w, r, h.logger, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return false
	}
	return true
}
