package domain

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// moneyPattern accepts non-negative amounts with at most two decimals, e.g. 12 or 12.34
var moneyPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// Money is a fixed-point amount stored as numeric and rendered with two decimals.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// ParseMoney parses a plain decimal string like "20.00"
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d), nil
}

// MustMoney is ParseMoney for literals
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// IsMoneyString reports whether s is a valid amount literal
func IsMoneyString(s string) bool {
	return moneyPattern.MatchString(s)
}

func (m Money) String() string {
	return m.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Times returns m multiplied by a quantity
func (m Money) Times(qty int) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(int64(qty)))}
}

// SameAmount compares at cent precision
func (m Money) SameAmount(o Money) bool {
	return m.Round(2).Equal(o.Round(2))
}
