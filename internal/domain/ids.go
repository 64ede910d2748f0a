package domain

import (
	"strings"

	"github.com/jaevor/go-nanoid"
)

// Merchant-side ids sent to gateways. The prefix tells a refund callback
// apart from a payment callback.
const (
	MerchantTransactionPrefix = "TX"
	MerchantRefundPrefix      = "RF"
	merchantIDAlphabet        = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	merchantIDLength          = 22
)

var merchantID = mustGenerator()

func mustGenerator() func() string {
	gen, err := nanoid.CustomASCII(merchantIDAlphabet, merchantIDLength)
	if err != nil {
		panic(err)
	}
	return gen
}

func NewMerchantTransactionID() string {
	return MerchantTransactionPrefix + merchantID()
}

func NewMerchantRefundID() string {
	return MerchantRefundPrefix + merchantID()
}

func IsMerchantRefundID(id string) bool {
	return strings.HasPrefix(id, MerchantRefundPrefix)
}
