package domain

import "time"

type PollingJobStatus string

const (
	PollingActive    PollingJobStatus = "active"
	PollingCompleted PollingJobStatus = "completed"
	PollingExpired   PollingJobStatus = "expired"
)

// PollingJob is unique per (tenant, payment). Re-registration updates it.
type PollingJob struct {
	ID                    string
	TenantID              string
	PaymentID             string
	Provider              string
	MerchantTransactionID string
	Status                PollingJobStatus
	Attempt               int
	NextPollAt            time.Time
	ExpireAt              time.Time
	LastProviderStatus    string
	LastResponseCode      string
	LastError             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (j *PollingJob) IsDue(now time.Time) bool {
	return j.Status == PollingActive && !now.Before(j.NextPollAt) && now.Before(j.ExpireAt)
}

func (j *PollingJob) IsExpired(now time.Time) bool {
	return !now.Before(j.ExpireAt)
}
