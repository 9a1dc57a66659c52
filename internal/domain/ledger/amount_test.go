package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		value string
		want  error
	}{
		{"0.01", nil},
		{"40", nil},
		{"99999999.99", nil},
		{"12.50", nil},
		{"0", ErrAmountNotPositive},
		{"-0.01", ErrAmountNotPositive},
		{"1.001", ErrAmountFractionSize},
		{"100000000", ErrAmountTooLarge},
		{"40.000", nil},
		{"1.5e3", nil},
		{"1e2000000000", ErrAmountTooLarge},
		{"1e-2000000000", ErrAmountFractionSize},
	}

	for _, tc := range cases {
		err := ValidateAmount(decimal.RequireFromString(tc.value))
		if !errors.Is(err, tc.want) {
			t.Fatalf("amount %s: expected %v, got %v", tc.value, tc.want, err)
		}
	}
}

func TestSumAmountsIsExact(t *testing.T) {
	total := SumAmounts(
		decimal.RequireFromString("0.10"),
		decimal.RequireFromString("0.20"),
		decimal.RequireFromString("150.25"),
	)
	if FormatAmount(total) != "150.55" {
		t.Fatalf("expected 150.55, got %s", FormatAmount(total))
	}
	if FormatAmount(SumAmounts()) != "0.00" {
		t.Fatalf("expected 0.00 for no amounts")
	}
}
