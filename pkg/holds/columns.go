// Package holds implements the put-on-hold transaction table: display
// formatting, per-column value filters, stable sorting and the filter menu
// state machine.
package holds

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vanderheijden86/fundtrail/pkg/model"
)

// Column identifies a hold table column by its wire name.
type Column string

const (
	ColAccount Column = "account_number"
	ColBank    Column = "bank_name"
	ColBranch  Column = "branch_name"
	ColIFSC    Column = "ifsc_code"
	ColAmount  Column = "amount"
	ColLayer   Column = "layer"
)

// Columns lists the table columns in display order.
var Columns = []Column{ColAccount, ColBank, ColBranch, ColIFSC, ColAmount, ColLayer}

// Title returns the column header.
func (c Column) Title() string {
	switch c {
	case ColAccount:
		return "Account Number"
	case ColBank:
		return "Bank Name"
	case ColBranch:
		return "Branch Name"
	case ColIFSC:
		return "IFSC Code"
	case ColAmount:
		return "Amount"
	case ColLayer:
		return "Layer"
	}
	return string(c)
}

// Numeric reports whether the column sorts by number.
func (c Column) Numeric() bool {
	return c == ColAmount || c == ColLayer
}

var columnAliases = map[string]Column{
	"account": ColAccount,
	"bank":    ColBank,
	"branch":  ColBranch,
	"ifsc":    ColIFSC,
}

// ParseColumn accepts a wire name, a header title or a short alias
// ("account", "bank", "branch", "ifsc"), case-insensitively.
func ParseColumn(s string) (Column, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := columnAliases[s]; ok {
		return c, true
	}
	for _, c := range Columns {
		if s == string(c) || s == strings.ToLower(c.Title()) {
			return c, true
		}
	}
	return "", false
}

// FormatValue returns the display string of a cell. Filters compare these
// strings, so two rows show the same text exactly when they filter alike.
func FormatValue(row model.HoldRow, col Column) string {
	switch col {
	case ColAccount:
		return model.OrNA(row.AccountNumber)
	case ColBank:
		return model.OrNA(row.BankName)
	case ColBranch:
		return model.OrNA(row.BranchName)
	case ColIFSC:
		return model.OrNA(row.IFSCCode)
	case ColAmount:
		return model.FormatINR(row.Amount.OrZero())
	case ColLayer:
		if row.Layer == nil {
			return model.NotAvailable
		}
		return strconv.Itoa(*row.Layer)
	}
	return model.NotAvailable
}

// sortKey is the raw value a column sorts by.
type sortKey struct {
	num decimal.Decimal
	str string
}

func keyOf(row model.HoldRow, col Column) sortKey {
	switch col {
	case ColAccount:
		return sortKey{str: row.AccountNumber}
	case ColBank:
		return sortKey{str: row.BankName}
	case ColBranch:
		return sortKey{str: row.BranchName}
	case ColIFSC:
		return sortKey{str: row.IFSCCode}
	case ColAmount:
		return sortKey{num: row.Amount.OrZero()}
	case ColLayer:
		if row.Layer == nil {
			return sortKey{num: decimal.Zero}
		}
		return sortKey{num: decimal.NewFromInt(int64(*row.Layer))}
	}
	return sortKey{}
}

func compareKeys(col Column, a, b sortKey) int {
	if col.Numeric() {
		return a.num.Cmp(b.num)
	}
	return strings.Compare(a.str, b.str)
}
