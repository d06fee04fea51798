package domain

import (
	"github.com/shopspring/decimal"
)

// Amounts travel over the wire as decimal currency values ("250.75") and are
// held internally in minor units (cents). decimal.Decimal accepts both JSON
// numbers and strings, so clients can send either.
var centFactor = decimal.NewFromInt(100)

// ParseAmount converts a request amount to minor units. It rejects zero and
// negative values and anything with sub-cent precision, before any storage
// access happens.
func ParseAmount(d decimal.Decimal) (int64, error) {
	if d.LessThanOrEqual(decimal.Zero) {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(centFactor)
	if !cents.IsInteger() {
		return 0, ErrInvalidAmount
	}
	if !cents.BigInt().IsInt64() {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// FormatAmount renders minor units back into a decimal currency value for
// responses.
func FormatAmount(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centFactor)
}
