package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-payments-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-payments-service/internal/domain"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Checked in order; the first errors.Is match wins.
var errorTable = []errorMapping{
	{domain.ErrIdempotencyKeyRequired, http.StatusBadRequest, "IDEMPOTENCY_KEY_REQUIRED"},
	{domain.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{domain.ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
	{domain.ErrUnknownProvider, http.StatusBadRequest, "UNKNOWN_PROVIDER"},
	{domain.ErrIdempotencyKeyReused, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED"},
	{domain.ErrAmountMismatch, http.StatusUnprocessableEntity, "AMOUNT_MISMATCH"},
	{domain.ErrRefundExceedsCaptured, http.StatusUnprocessableEntity, "REFUND_EXCEEDS_CAPTURED"},
	{domain.ErrPaymentNotCaptured, http.StatusUnprocessableEntity, "PAYMENT_NOT_CAPTURED"},
	{domain.ErrOrderNotPayable, http.StatusUnprocessableEntity, "ORDER_NOT_PAYABLE"},
	{domain.ErrRequestInFlight, http.StatusConflict, "REQUEST_IN_FLIGHT"},
	{domain.ErrOrderAlreadyPaid, http.StatusConflict, "ORDER_ALREADY_PAID"},
	{domain.ErrPaymentAlreadyCaptured, http.StatusConflict, "PAYMENT_ALREADY_CAPTURED"},
	{domain.ErrPaymentTerminal, http.StatusConflict, "PAYMENT_TERMINAL"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
}

func statusFor(err error) (int, string) {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return http.StatusBadGateway, "PROVIDER_ERROR"
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "TIMEOUT"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	} else {
		logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	respond(w, status, response.ErrorResponse{Success: false, Error: msg, Code: code})
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondRaw writes a stored idempotent response without re-encoding it.
func respondRaw(w http.ResponseWriter, status int, body []byte, replayed bool) {
	w.Header().Set("Content-Type", "application/json")
	if replayed {
		w.Header().Set(headerReplayed, "true")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
