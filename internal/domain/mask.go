package domain

import "strings"

const (
	maskVisiblePrefix = 2
	maskVisibleSuffix = 4
)

// Mask keeps the first 2 and last 4 characters and stars the rest. Values too
// short to keep anything hidden are masked entirely.
func Mask(raw string) string {
	if raw == "" {
		return ""
	}
	r := []rune(raw)
	if len(r) <= maskVisiblePrefix+maskVisibleSuffix {
		return strings.Repeat("*", len(r))
	}
	hidden := len(r) - maskVisiblePrefix - maskVisibleSuffix
	return string(r[:maskVisiblePrefix]) + strings.Repeat("*", hidden) + string(r[len(r)-maskVisibleSuffix:])
}

// MaskUPI masks every identifier of a UPI payment.
func MaskUPI(d UPIDetails) UPIDetails {
	return UPIDetails{
		PayerVPA:   Mask(d.PayerVPA),
		UTR:        Mask(d.UTR),
		Instrument: d.Instrument,
	}
}
