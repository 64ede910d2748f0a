package mappers

import (
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
)

func ToGORMPayment(p *domain.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:                    p.ID,
		TenantID:              p.TenantID,
		OrderID:               p.OrderID,
		Provider:              p.Provider,
		Environment:           string(p.Environment),
		MerchantTransactionID: p.MerchantTransactionID,
		ProviderPaymentID:     nullable(p.ProviderPaymentID),
		ProviderTransactionID: p.ProviderTransactionID,
		ProviderReferenceID:   p.ProviderReferenceID,
		Status:                string(p.Status),
		ProviderStatus:        p.ProviderStatus,
		Currency:              p.Currency,
		AmountMinor:           p.AmountMinor,
		AmountAuthorizedMinor: p.AmountAuthorizedMinor,
		AmountCapturedMinor:   p.AmountCapturedMinor,
		AmountRefundedMinor:   p.AmountRefundedMinor,
		MethodKind:            string(p.MethodKind),
		UPIPayerVPA:           p.UPI.PayerVPA,
		UPIUTR:                p.UPI.UTR,
		UPIInstrument:         p.UPI.Instrument,
		RedirectURL:           p.RedirectURL,
		SuccessURL:            p.SuccessURL,
		FailureURL:            p.FailureURL,
		ExpiresAt:             p.ExpiresAt,
		FailureCode:           p.FailureCode,
		FailureMessage:        p.FailureMessage,
		ProviderData:          toJSON(p.ProviderData),
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func ToDomainPayment(m *models.PaymentModel) *domain.Payment {
	return &domain.Payment{
		ID:                    m.ID,
		TenantID:              m.TenantID,
		OrderID:               m.OrderID,
		Provider:              m.Provider,
		Environment:           domain.Environment(m.Environment),
		MerchantTransactionID: m.MerchantTransactionID,
		ProviderPaymentID:     deref(m.ProviderPaymentID),
		ProviderTransactionID: m.ProviderTransactionID,
		ProviderReferenceID:   m.ProviderReferenceID,
		Status:                domain.PaymentStatus(m.Status),
		ProviderStatus:        m.ProviderStatus,
		Currency:              m.Currency,
		AmountMinor:           m.AmountMinor,
		AmountAuthorizedMinor: m.AmountAuthorizedMinor,
		AmountCapturedMinor:   m.AmountCapturedMinor,
		AmountRefundedMinor:   m.AmountRefundedMinor,
		MethodKind:            domain.MethodKind(m.MethodKind),
		UPI: domain.UPIDetails{
			PayerVPA:   m.UPIPayerVPA,
			UTR:        m.UPIUTR,
			Instrument: m.UPIInstrument,
		},
		RedirectURL:    m.RedirectURL,
		SuccessURL:     m.SuccessURL,
		FailureURL:     m.FailureURL,
		ExpiresAt:      m.ExpiresAt,
		FailureCode:    m.FailureCode,
		FailureMessage: m.FailureMessage,
		ProviderData:   fromJSONMap(m.ProviderData),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
