package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// Epsilon is the smallest remainder that still counts as balance.
var Epsilon = decimal.New(1, -2)

// Validate accepts non-negative amounts with at most two decimal places.
func Validate(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return ErrTooManyDecimals
	}
	return nil
}

// ValidatePositive is Validate plus a non-zero check.
func ValidatePositive(amount decimal.Decimal) error {
	if err := Validate(amount); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func Settled(remaining decimal.Decimal) bool {
	return remaining.LessThan(Epsilon)
}

func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func Null(amount decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: amount, Valid: true}
}

func OrZero(amount decimal.NullDecimal) decimal.Decimal {
	if !amount.Valid {
		return decimal.Zero
	}
	return amount.Decimal
}
