package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatusRank(t *testing.T) {
	assert.Less(t, PaymentCreated.Rank(), PaymentProcessing.Rank())
	assert.Less(t, PaymentProcessing.Rank(), PaymentCaptured.Rank())
	assert.Equal(t, -1, PaymentStatus("bogus").Rank())

	for _, s := range []PaymentStatus{PaymentCaptured, PaymentFailed, PaymentCancelled} {
		assert.True(t, s.IsTerminal(), s)
	}
	for _, s := range []PaymentStatus{PaymentCreated, PaymentRequiresAction, PaymentProcessing, PaymentAuthorized} {
		assert.False(t, s.IsTerminal(), s)
	}
}

func TestLatestPayment(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older := &Payment{ID: "a", CreatedAt: base, UpdatedAt: base.Add(5 * time.Minute)}
	newer := &Payment{ID: "b", CreatedAt: base.Add(time.Minute), UpdatedAt: base.Add(time.Minute)}
	tieCreatedLater := &Payment{ID: "c", CreatedAt: base.Add(2 * time.Minute), UpdatedAt: base.Add(5 * time.Minute)}

	assert.Nil(t, LatestPayment(nil))
	assert.Equal(t, "a", LatestPayment([]*Payment{newer, older}).ID)
	assert.Equal(t, "c", LatestPayment([]*Payment{older, tieCreatedLater, newer}).ID)
	assert.Equal(t, "c", LatestPayment([]*Payment{tieCreatedLater, older}).ID)
}

func TestPollingJobDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	job := &PollingJob{Status: PollingActive, NextPollAt: now, ExpireAt: now.Add(time.Minute)}
	assert.True(t, job.IsDue(now))
	assert.False(t, job.IsDue(now.Add(-time.Second)))
	assert.False(t, job.IsDue(now.Add(time.Minute)))

	job.Status = PollingExpired
	assert.False(t, job.IsDue(now))
}

func TestToMinorUnits(t *testing.T) {
	got, err := ToMinorUnits(decimal.RequireFromString("10.50"), "INR")
	require.NoError(t, err)
	assert.Equal(t, int64(1050), got)

	got, err = ToMinorUnits(decimal.RequireFromString("1200"), "JPY")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), got)

	_, err = ToMinorUnits(decimal.RequireFromString("10.505"), "INR")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ToMinorUnits(decimal.Zero, "INR")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, "10.00", FormatMinor(1000, "INR"))
	assert.Equal(t, "1000", FormatMinor(1000, "JPY"))
}

func TestHashPartsIsStable(t *testing.T) {
	assert.Equal(t, HashParts("t1", "o1", "1000", "INR"), HashParts("t1", "o1", "1000", "INR"))
	assert.NotEqual(t, HashParts("t1", "o1", "1000", "INR"), HashParts("t1", "o1", "1001", "INR"))
}

func TestMerchantIDs(t *testing.T) {
	tx := NewMerchantTransactionID()
	rf := NewMerchantRefundID()

	assert.Len(t, tx, 24)
	assert.False(t, IsMerchantRefundID(tx))
	assert.True(t, IsMerchantRefundID(rf))
	assert.NotEqual(t, tx, NewMerchantTransactionID())
}
