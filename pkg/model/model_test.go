package model

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierDistinguishesNullFromEmpty(t *testing.T) {
	var payload struct {
		A Identifier `json:"a"`
		B Identifier `json:"b"`
		C Identifier `json:"c"`
		D Identifier `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":null,"b":"","c":"N/A","d":12345}`), &payload))

	assert.False(t, payload.A.Valid)
	assert.True(t, payload.B.Valid)
	assert.Equal(t, "N/A", payload.C.Value)
	assert.Equal(t, "12345", payload.D.Value)

	var absent struct {
		X Identifier `json:"x"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	assert.False(t, absent.X.Valid)
}

func TestMoneyAcceptsBackendShapes(t *testing.T) {
	var payload struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
		D Money `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"1500.0","b":"None","c":2500.75,"d":null}`), &payload))

	assert.True(t, payload.A.Amount.Equal(decimal.NewFromInt(1500)))
	assert.False(t, payload.B.Valid)
	assert.Equal(t, "2500.75", payload.C.Amount.String())
	assert.False(t, payload.D.Valid)
	assert.True(t, payload.D.OrZero().IsZero())
}

func TestFormatINR(t *testing.T) {
	cases := map[string]string{
		"0":         "₹0",
		"999":       "₹999",
		"1000":      "₹1,000",
		"123456.5":  "₹1,23,456.5",
		"12345678":  "₹1,23,45,678",
		"1500.00":   "₹1,500",
		"10.12345":  "₹10.123",
		"-250000.1": "₹-2,50,000.1",
	}
	for in, want := range cases {
		d := decimal.RequireFromString(in)
		assert.Equal(t, want, FormatINR(d), "FormatINR(%s)", in)
	}
}

func TestRepeatedTotalDeduplicatesTxnIDs(t *testing.T) {
	d := NodeData{TransactionsFromParent: []ParentTxn{
		{TxnID: "T1", Amount: ParseMoney("100")},
		{TxnID: "T2", Amount: ParseMoney("250")},
		{TxnID: "T1", Amount: ParseMoney("100")},
	}}
	assert.Len(t, d.UniqueParentTxns(), 2)
	assert.Equal(t, "350", d.RepeatedTotal().String())
}

func TestKYCValidate(t *testing.T) {
	ok := KYCUpdate{TxnID: "T1", Name: "Ravi Kumar", Aadhar: "123412341234", Mobile: "9876543210"}
	assert.NoError(t, ok.Validate())

	missing := KYCUpdate{Name: "Ravi"}
	assert.EqualError(t, missing.Validate(), "transaction id is required")

	badMobile := KYCUpdate{TxnID: "T1", Name: "Ravi", Mobile: "98765"}
	assert.EqualError(t, badMobile.Validate(), "mobile must be 10 digits")

	spaced := KYCUpdate{TxnID: " T1 ", Name: " Ravi ", Aadhar: "1234 1234 1234"}
	spaced.Normalize()
	assert.NoError(t, spaced.Validate())
	assert.Equal(t, "123412341234", spaced.Aadhar)
}

func TestKYCNormalizeFormattedNumbers(t *testing.T) {
	tests := []struct {
		mobile, aadhar string
		wantMobile     string
		wantAadhar     string
	}{
		{"+91 98765 43210", "1234-1234-1234", "9876543210", "123412341234"},
		{"+91-9876543210", "1234 1234 1234", "9876543210", "123412341234"},
		{"919876543210", "123412341234", "9876543210", "123412341234"},
		{"09876543210", "", "9876543210", ""},
		{"(987) 654-3210", "", "9876543210", ""},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		upd := KYCUpdate{TxnID: "T1", Mobile: tt.mobile, Aadhar: tt.aadhar}
		upd.Normalize()
		assert.Equal(t, tt.wantMobile, upd.Mobile, "mobile %q", tt.mobile)
		assert.Equal(t, tt.wantAadhar, upd.Aadhar, "aadhar %q", tt.aadhar)
		assert.NoError(t, upd.Validate(), "saved record %q / %q should re-save", tt.mobile, tt.aadhar)
	}
}

func TestKYCNameIsOptional(t *testing.T) {
	upd := KYCUpdate{TxnID: "T1", Mobile: "9876543210"}
	assert.NoError(t, upd.Validate())
}
