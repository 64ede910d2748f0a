package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/LavaJover/shvark-payments-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/webhook"
	"github.com/go-chi/chi/v5"
)

// webhook answers 200 for processed, replayed and ignored deliveries so the
// provider stops retrying, and 401/403 when verification fails.
func (h *PaymentHandler) webhook(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	res, err := h.webhooks.Handle(r.Context(), webhook.Request{
		TenantID:   tenant,
		Provider:   chi.URLParam(r, "provider"),
		Headers:    r.Header.Clone(),
		Body:       body,
		RemoteAddr: r.RemoteAddr,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	status := http.StatusOK
	switch res.Outcome {
	case webhook.OutcomeUnauthorized:
		status = http.StatusUnauthorized
	case webhook.OutcomeForbidden:
		status = http.StatusForbidden
	}
	respond(w, status, response.WebhookResponse{
		Status:    string(res.Outcome),
		Reason:    res.Reason,
		PaymentID: res.PaymentID,
	})
}
