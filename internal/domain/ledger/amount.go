package ledger

import "github.com/shopspring/decimal"

const (
	amountMaxDigits     = 10
	amountDecimalPlaces = 2
	amountIntegerDigits = amountMaxDigits - amountDecimalPlaces
	// amountMaxScale bounds the negative exponent accepted before any rescaling.
	amountMaxScale = 2 * amountMaxDigits
)

// ValidateAmount checks a money value against the NUMERIC(10,2) column.
// Values that would need rounding are rejected. Only the exponent and digit
// count are inspected until the value is known to be small.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}
	exp := int64(amount.Exponent())
	if exp < -amountMaxScale {
		return ErrAmountFractionSize
	}
	if exp+int64(amount.NumDigits()) > amountIntegerDigits {
		return ErrAmountTooLarge
	}
	if !amount.Equal(amount.Truncate(amountDecimalPlaces)) {
		return ErrAmountFractionSize
	}
	return nil
}

// SumAmounts adds amounts exactly and returns the result at cent scale.
func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total.Round(amountDecimalPlaces)
}

// FormatAmount renders an amount with exactly two fractional digits.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(amountDecimalPlaces)
}
