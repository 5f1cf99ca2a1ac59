package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	AmountScale = 2
	RateScale   = 6
	// StoredScale is the scale of balance and amount columns, NUMERIC(24,8).
	StoredScale = 8
)

var (
	// maxStored bounds balances and amounts: NUMERIC(24,8) keeps 16 integer digits.
	maxStored = decimal.New(1, 16)
	// maxRate bounds exchange rates: NUMERIC(18,6) keeps 12 integer digits.
	maxRate = decimal.New(1, 12)
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
	ErrInvalidRate     = errors.New("invalid exchange rate")
)

// ParseAmount parses a non-negative amount with at most two decimal places.
func ParseAmount(input string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() || !Fits(amount) {
		return ErrInvalidAmount
	}
	if amount.Exponent() < -AmountScale && !amount.Equal(amount.Truncate(AmountScale)) {
		return ErrTooManyDecimals
	}
	return nil
}

func ValidateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() || rate.GreaterThanOrEqual(maxRate) {
		return ErrInvalidRate
	}
	if rate.Exponent() < -RateScale && !rate.Equal(rate.Truncate(RateScale)) {
		return ErrInvalidRate
	}
	return nil
}

// Fits reports whether value can be stored in a balance or amount column
// without overflow or rounding.
func Fits(value decimal.Decimal) bool {
	if value.Abs().GreaterThanOrEqual(maxStored) {
		return false
	}
	return value.Exponent() >= -StoredScale || value.Equal(value.Truncate(StoredScale))
}

// Convert applies rate to amount. The product is exact; callers that need
// a display value use Format.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate)
}

// Format renders at least two decimal places and keeps any extra precision
// a converted amount carries.
func Format(value decimal.Decimal) string {
	if value.Exponent() >= -AmountScale {
		return value.StringFixed(AmountScale)
	}
	// String drops trailing zeros.
	formatted := value.String()
	dot := strings.IndexByte(formatted, '.')
	if dot < 0 || len(formatted)-dot-1 < AmountScale {
		return value.StringFixed(AmountScale)
	}
	return formatted
}
