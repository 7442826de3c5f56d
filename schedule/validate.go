package schedule

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// NUMERIC VALIDATORS
// =============================================================================

// ValidateDecimalPrecision fails if rounding v to maxPlaces fractional
// digits changes the value. The value must be exactly representable at
// that precision: 8.00 and 8.01 pass at 2 places, 8.005 does not. This
// guards against silently truncating rates the caller believes are exact.
func ValidateDecimalPrecision(v decimal.Decimal, maxPlaces int32) error {
	if !v.Equal(v.Round(maxPlaces)) {
		return ErrPrecision
	}
	return nil
}

// ValidateCurrencyCode requires exactly 3 uppercase ASCII letters.
// Format-only: "XXX" passes even though it is not a real currency.
func ValidateCurrencyCode(s string) error {
	if len(s) != 3 {
		return ErrInvalidCurrency
	}
	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return ErrInvalidCurrency
		}
	}
	return nil
}
