// Package model defines the wire types exchanged with the fund-trail backend:
// graph node payloads, hold rows and KYC updates.
package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RootName is the synthetic name the backend gives the tree root.
const RootName = "Flow"

// NodeData is the payload of one account hop in the graph document.
type NodeData struct {
	Name     Identifier `json:"name"`
	Layer    int        `json:"layer,omitempty"`
	Ack      string     `json:"ack,omitempty"`
	Bank     string     `json:"bank,omitempty"`
	IFSC     string     `json:"ifsc,omitempty"`
	Branch   string     `json:"branch,omitempty"`
	Date     string     `json:"date,omitempty"`
	TxnID    string     `json:"txid,omitempty"`
	Amount   Money      `json:"amt"`
	Disputed Money      `json:"disputed"`
	Action   string     `json:"action,omitempty"`
	State    string     `json:"state,omitempty"`

	ATM    *ATMInfo    `json:"atm_info,omitempty"`
	Cheque *ChequeInfo `json:"cheque_info,omitempty"`
	Hold   *HoldInfo   `json:"hold_info,omitempty"`

	KYCName    *string `json:"kyc_name,omitempty"`
	KYCAadhar  *string `json:"kyc_aadhar,omitempty"`
	KYCMobile  *string `json:"kyc_mobile,omitempty"`
	KYCAddress *string `json:"kyc_address,omitempty"`

	TransactionsFromParent []ParentTxn        `json:"transactions_from_parent,omitempty"`
	IncomingFrom           []IncomingTransfer `json:"incomingFrom,omitempty"`
}

// ATMInfo describes a cash withdrawal at an ATM.
type ATMInfo struct {
	ID       string `json:"atm_id"`
	Amount   Money  `json:"amount"`
	Date     string `json:"date,omitempty"`
	Location string `json:"location,omitempty"`
}

// ChequeInfo describes a cheque withdrawal.
type ChequeInfo struct {
	Number string `json:"cheque_no"`
	Amount Money  `json:"amount"`
	Date   string `json:"date,omitempty"`
	IFSC   string `json:"ifsc,omitempty"`
}

// HoldInfo describes funds put on hold (lien) by the bank.
type HoldInfo struct {
	TxnID  string `json:"txn_id"`
	Amount Money  `json:"amount"`
	Date   string `json:"date,omitempty"`
}

// ParentTxn is one transfer from the parent account into this one.
type ParentTxn struct {
	TxnID  string `json:"txn_id"`
	Amount Money  `json:"amount"`
	Date   string `json:"date,omitempty"`
	AckNo  string `json:"ack_no,omitempty"`
}

// IncomingTransfer is one credit received from any account in the trail.
type IncomingTransfer struct {
	From   string `json:"from"`
	Amount Money  `json:"amount"`
	Date   string `json:"date,omitempty"`
}

// HasKYC reports whether a KYC record has been saved for this account.
func (d *NodeData) HasKYC() bool {
	return d.KYCName != nil && strings.TrimSpace(*d.KYCName) != ""
}

// UniqueParentTxns returns transfers from the parent deduplicated by txn id.
// Later duplicates replace earlier ones but keep the first position.
func (d *NodeData) UniqueParentTxns() []ParentTxn {
	idx := make(map[string]int, len(d.TransactionsFromParent))
	var out []ParentTxn
	for _, t := range d.TransactionsFromParent {
		if i, ok := idx[t.TxnID]; ok {
			out[i] = t
			continue
		}
		idx[t.TxnID] = len(out)
		out = append(out, t)
	}
	return out
}

// RepeatedTotal sums the amounts of the unique transfers from the parent.
func (d *NodeData) RepeatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, t := range d.UniqueParentTxns() {
		total = total.Add(t.Amount.OrZero())
	}
	return total
}
