package phonepe

import (
	"strings"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
)

// normalizePayment maps the gateway vocabulary onto PaymentStatus and masks
// UPI identifiers. Nothing unmasked leaves this function.
func normalizePayment(resp *apiResponse) *domain.ProviderStatus {
	st := &domain.ProviderStatus{
		ProviderStatus:        resp.Code,
		ResponseCode:          resp.Data.ResponseCode,
		ProviderPaymentID:     resp.Data.TransactionID,
		ProviderTransactionID: resp.Data.TransactionID,
		AmountMinor:           resp.Data.Amount,
	}

	switch resp.Code {
	case codePaymentSuccess:
		st.Status = domain.PaymentCaptured
		st.Definitive = true
	case codePaymentError, codePaymentDeclined, codeTimedOut:
		st.Status = domain.PaymentFailed
		st.Definitive = true
		st.FailureCode = resp.Data.ResponseCode
		if st.FailureCode == "" {
			st.FailureCode = resp.Code
		}
		st.FailureMessage = resp.Message
	default:
		// PAYMENT_PENDING, TRANSACTION_NOT_FOUND and anything unknown keep
		// the poller going.
		st.Status = domain.PaymentProcessing
	}

	raw := map[string]any{
		"code":         resp.Code,
		"state":        resp.Data.State,
		"responseCode": resp.Data.ResponseCode,
	}
	if in := resp.Data.PaymentInstrument; in != nil {
		st.MethodKind = methodKind(in.Type)
		if st.MethodKind == domain.MethodUPI {
			st.UPI = domain.MaskUPI(domain.UPIDetails{
				PayerVPA:   in.VPA,
				UTR:        in.UTR,
				Instrument: in.Type,
			})
			raw["utr"] = st.UPI.UTR
		}
		raw["instrumentType"] = in.Type
	}
	st.Raw = raw
	return st
}

func methodKind(instrumentType string) domain.MethodKind {
	t := strings.ToUpper(instrumentType)
	switch {
	case strings.HasPrefix(t, "UPI"):
		return domain.MethodUPI
	case t == "CARD":
		return domain.MethodCard
	case t == "NETBANKING":
		return domain.MethodNetBanking
	case t == "WALLET":
		return domain.MethodWallet
	default:
		return ""
	}
}

func normalizeRefund(merchantRefundID string, resp *apiResponse) *domain.ProviderRefundResult {
	r := &domain.ProviderRefundResult{
		MerchantRefundID: merchantRefundID,
		ProviderRefundID: resp.Data.TransactionID,
		ResponseCode:     resp.Data.ResponseCode,
	}
	switch resp.Code {
	case codePaymentSuccess:
		r.Status = domain.RefundSucceeded
		r.Definitive = true
	case codePaymentError, codePaymentDeclined, codeTimedOut:
		r.Status = domain.RefundFailed
		r.Definitive = true
		r.FailureCode = resp.Data.ResponseCode
		if r.FailureCode == "" {
			r.FailureCode = resp.Code
		}
	default:
		r.Status = domain.RefundPending
	}
	if in := resp.Data.PaymentInstrument; in != nil {
		r.UTR = domain.Mask(in.UTR)
	}
	r.Raw = map[string]any{"code": resp.Code, "state": resp.Data.State}
	return r
}
