package determinism

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code
type Currency string

// EUR is the only currency per-diem rates are published in.
const EUR Currency = "EUR"

// MoneyPlaces is the number of decimal places every reported amount carries.
const MoneyPlaces = 2

// Money represents a monetary amount with full precision.
// NEVER use float64 for money calculations.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a Money from a decimal string
func NewMoney(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: d, currency: currency}, nil
}

// MustMoney is NewMoney for constants; it panics on malformed input.
func MustMoney(amount string, currency Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(fmt.Sprintf("invalid money literal %q: %v", amount, err))
	}
	return m
}

// NewMoneyFromDecimal creates Money from decimal
func NewMoneyFromDecimal(amount decimal.Decimal, currency Currency) Money {
	return Money{amount: amount, currency: currency}
}

// Zero creates zero money
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// Add adds two monetary amounts
func (m Money) Add(other Money) Money {
	m.mustMatch(other, "add")
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}
}

// Sub subtracts monetary amounts
func (m Money) Sub(other Money) Money {
	m.mustMatch(other, "subtract")
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}
}

// Mul multiplies by a scalar
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Abs returns the absolute amount
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// Quantize rounds to MoneyPlaces using round-half-up. Halves move away from
// zero for negative amounts too, so -0.005 becomes -0.01.
func (m Money) Quantize() Money {
	return Money{amount: m.amount.Round(MoneyPlaces), currency: m.currency}
}

// IsZero returns true if amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative returns true if amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Equal reports whether both amounts and currencies match. Trailing zeros are
// ignored: 28 equals 28.00.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Cmp compares two monetary amounts
func (m Money) Cmp(other Money) int {
	m.mustMatch(other, "compare")
	return m.amount.Cmp(other.amount)
}

// Fixed returns the amount with exactly two decimals and no currency, e.g. "28.00".
func (m Money) Fixed() string {
	return m.amount.StringFixed(MoneyPlaces)
}

// String returns formatted money (2 decimal places)
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Fixed(), m.currency)
}

// StringRaw returns the raw decimal string (full precision)
func (m Money) StringRaw() string {
	return m.amount.String()
}

// MarshalJSON encodes the amount as a two-decimal string so no precision is
// lost to float parsing on the consumer side.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Fixed())
}

func (m Money) mustMatch(other Money, op string) {
	if m.currency != other.currency {
		panic(fmt.Sprintf("cannot %s %s and %s", op, m.currency, other.currency))
	}
}
