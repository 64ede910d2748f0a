package mappers

import (
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
)

func ToGORMPollingJob(j *domain.PollingJob) *models.PollingJobModel {
	return &models.PollingJobModel{
		ID:                    j.ID,
		TenantID:              j.TenantID,
		PaymentID:             j.PaymentID,
		Provider:              j.Provider,
		MerchantTransactionID: j.MerchantTransactionID,
		Status:                string(j.Status),
		Attempt:               j.Attempt,
		NextPollAt:            j.NextPollAt,
		ExpireAt:              j.ExpireAt,
		LastProviderStatus:    j.LastProviderStatus,
		LastResponseCode:      j.LastResponseCode,
		LastError:             j.LastError,
		CreatedAt:             j.CreatedAt,
		UpdatedAt:             j.UpdatedAt,
	}
}

func ToDomainPollingJob(m *models.PollingJobModel) *domain.PollingJob {
	return &domain.PollingJob{
		ID:                    m.ID,
		TenantID:              m.TenantID,
		PaymentID:             m.PaymentID,
		Provider:              m.Provider,
		MerchantTransactionID: m.MerchantTransactionID,
		Status:                domain.PollingJobStatus(m.Status),
		Attempt:               m.Attempt,
		NextPollAt:            m.NextPollAt,
		ExpireAt:              m.ExpireAt,
		LastProviderStatus:    m.LastProviderStatus,
		LastResponseCode:      m.LastResponseCode,
		LastError:             m.LastError,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}
