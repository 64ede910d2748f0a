package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyExponent = map[string]int32{
	"INR": 2,
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"JPY": 0,
	"KWD": 3,
}

// CurrencyExponent returns the number of minor-unit digits, 2 when unknown.
func CurrencyExponent(currency string) int32 {
	if e, ok := currencyExponent[strings.ToUpper(currency)]; ok {
		return e
	}
	return 2
}

// ToMinorUnits converts a major-unit amount; fractional minor units are rejected.
func ToMinorUnits(amount decimal.Decimal, currency string) (int64, error) {
	minor := amount.Shift(CurrencyExponent(currency))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has more precision than %s allows", ErrInvalidAmount, amount.String(), currency)
	}
	if !minor.IsPositive() {
		return 0, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	return minor.IntPart(), nil
}

// FormatMinor renders minor units as a fixed-point major-unit string.
func FormatMinor(minor int64, currency string) string {
	exp := CurrencyExponent(currency)
	return decimal.New(minor, -exp).StringFixed(exp)
}
