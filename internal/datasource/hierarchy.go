package datasource

import (
	"strings"

	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// Transaction is one row of a complaint's transaction sheet: a single
// transfer from FromAccount to ToAccount at the given layer.
type Transaction struct {
	ID             int64
	Layer          int
	FromAccount    string
	ToAccount      string
	AckNo          string
	BankName       string
	IFSCCode       string
	TxnDate        string
	TxnID          string
	Amount         model.Money
	DisputedAmount model.Money
	ActionTaken    string
	AccountNumber  string
	State          string

	ATMID       string
	ATMAmount   model.Money
	ATMDate     string
	ATMLocation string

	ChequeNo     string
	ChequeAmount model.Money
	ChequeDate   string
	ChequeIFSC   string

	HoldTxnID  string
	HoldDate   string
	HoldAmount model.Money

	KYCName    *string
	KYCAadhar  *string
	KYCMobile  *string
	KYCAddress *string
}

// BuildHierarchy turns a complaint's transactions into the graph document
// tree. Layer-1 rows hang victim accounts under the root; every other row
// attaches under the first node, in pre-order, named by its from-account.
// Rows whose from-account is not in the tree yet are skipped, so rows must
// arrive parents first. An account appears once per parent; repeated
// transfers between the same pair are listed on the child.
func BuildHierarchy(rows []Transaction) *trail.RawNode {
	type pair struct{ from, to string }
	transfers := make(map[pair][]model.ParentTxn)
	incoming := make(map[string][]model.IncomingTransfer)
	seen := make(map[pair]map[string]bool)

	for _, t := range rows {
		p := pair{t.FromAccount, t.ToAccount}
		if seen[p] == nil {
			seen[p] = make(map[string]bool)
		}
		if seen[p][t.TxnID] {
			continue
		}
		seen[p][t.TxnID] = true
		transfers[p] = append(transfers[p], model.ParentTxn{
			TxnID: t.TxnID, Amount: t.Amount, Date: t.TxnDate, AckNo: t.AckNo,
		})
		incoming[t.ToAccount] = append(incoming[t.ToAccount], model.IncomingTransfer{
			From: t.FromAccount, Amount: t.Amount, Date: t.TxnDate,
		})
	}

	// layer an account had when it sent money; the last row wins
	senderLayer := make(map[string]int)
	for _, t := range rows {
		if t.FromAccount != "" {
			senderLayer[t.FromAccount] = t.Layer
		}
	}

	root := &trail.RawNode{Data: &model.NodeData{Name: model.NewIdentifier(model.RootName)}}
	for _, t := range rows {
		var parent *trail.RawNode
		if t.Layer == 1 {
			parent = childNamed(root, t.FromAccount)
			if parent == nil {
				parent = &trail.RawNode{Data: &model.NodeData{
					Name:       model.NewIdentifier(t.FromAccount),
					Action:     t.ActionTaken,
					KYCName:    t.KYCName,
					KYCAadhar:  t.KYCAadhar,
					KYCMobile:  t.KYCMobile,
					KYCAddress: t.KYCAddress,
				}}
				root.Children = append(root.Children, parent)
			}
		} else {
			parent = findNamed(root, t.FromAccount)
		}
		if parent == nil || childNamed(parent, t.ToAccount) != nil {
			continue
		}

		layer, ok := senderLayer[t.ToAccount]
		if !ok {
			layer = t.Layer
		}
		data := &model.NodeData{
			Name:                   model.NewIdentifier(t.ToAccount),
			Layer:                  layer,
			Ack:                    t.AckNo,
			Bank:                   t.BankName,
			IFSC:                   t.IFSCCode,
			Date:                   t.TxnDate,
			TxnID:                  t.TxnID,
			Amount:                 t.Amount,
			Disputed:               t.DisputedAmount,
			Action:                 t.ActionTaken,
			State:                  knownState(t.State),
			KYCName:                t.KYCName,
			KYCAadhar:              t.KYCAadhar,
			KYCMobile:              t.KYCMobile,
			KYCAddress:             t.KYCAddress,
			TransactionsFromParent: transfers[pair{t.FromAccount, t.ToAccount}],
			IncomingFrom:           incoming[t.ToAccount],
		}
		if t.ATMID != "" {
			data.ATM = &model.ATMInfo{ID: t.ATMID, Amount: t.ATMAmount, Date: t.ATMDate, Location: t.ATMLocation}
		}
		if t.ChequeNo != "" {
			data.Cheque = &model.ChequeInfo{Number: t.ChequeNo, Amount: t.ChequeAmount, Date: t.ChequeDate, IFSC: t.ChequeIFSC}
		}
		if t.HoldTxnID != "" {
			data.Hold = &model.HoldInfo{TxnID: t.HoldTxnID, Amount: t.HoldAmount, Date: t.HoldDate}
		}
		parent.Children = append(parent.Children, &trail.RawNode{Data: data})
	}
	return root
}

func knownState(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "Unknown" {
		return "Unknown State"
	}
	return s
}

func childNamed(n *trail.RawNode, name string) *trail.RawNode {
	for _, c := range n.Children {
		if c.Data != nil && c.Data.Name.Value == name {
			return c
		}
	}
	return nil
}

func findNamed(n *trail.RawNode, name string) *trail.RawNode {
	if n.Data != nil && n.Data.Name.Value == name {
		return n
	}
	for _, c := range n.Children {
		if found := findNamed(c, name); found != nil {
			return found
		}
	}
	return nil
}

// HoldRows extracts the put-on-hold rows from a complaint's transactions.
func HoldRows(rows []Transaction) []model.HoldRow {
	out := []model.HoldRow{}
	for _, t := range rows {
		if t.HoldTxnID == "" {
			continue
		}
		account := t.AccountNumber
		if account == "" {
			account = t.ToAccount
		}
		var layer *int
		if t.Layer != 0 {
			layer = model.IntPtr(t.Layer)
		}
		out = append(out, model.HoldRow{
			AccountNumber: account,
			BankName:      t.BankName,
			IFSCCode:      t.IFSCCode,
			Amount:        t.HoldAmount,
			Layer:         layer,
		})
	}
	return out
}
