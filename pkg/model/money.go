package model

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Money is an optional rupee amount. The backend serializes amounts as
// numbers, numeric strings, or the string "None"; anything that does not
// parse is treated as absent.
type Money struct {
	Amount decimal.Decimal
	Valid  bool
}

// NewMoney returns a valid amount.
func NewMoney(d decimal.Decimal) Money {
	return Money{Amount: d, Valid: true}
}

// MoneyFromFloat is a convenience for database values.
func MoneyFromFloat(f float64) Money {
	return NewMoney(decimal.NewFromFloat(f))
}

// ParseMoney parses a numeric string. Blank, "None" and "null" are absent.
func ParseMoney(s string) Money {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "null", "nan":
		return Money{}
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return Money{}
	}
	return NewMoney(d)
}

// OrZero returns the amount, or zero when absent.
func (m Money) OrZero() decimal.Decimal {
	if !m.Valid {
		return decimal.Zero
	}
	return m.Amount
}

func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*m = Money{}
			return nil
		}
		*m = ParseMoney(s)
		return nil
	}
	*m = ParseMoney(string(b))
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return []byte(m.Amount.String()), nil
}
