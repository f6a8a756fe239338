package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is rendered for missing display values.
const NotAvailable = "N/A"

// FormatINR renders an amount the way Indian banking UIs do: a rupee sign,
// lakh/crore digit grouping and at most three fractional digits with trailing
// zeros dropped. FormatINR(123456.5) == "₹1,23,456.5".
func FormatINR(d decimal.Decimal) string {
	return "₹" + GroupIndian(d)
}

// GroupIndian formats d with en-IN digit grouping and no currency sign.
func GroupIndian(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().Round(3).String()

	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(groupDigits(intPart))
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// groupDigits groups the last three digits, then pairs.
func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}

// OrNA returns s, or NotAvailable when s is blank.
func OrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
