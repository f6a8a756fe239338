package datasource

import "github.com/vanderheijden86/fundtrail/pkg/model"

func str(s string) *string { return &s }

// caseRows is a small complaint: one victim, a mule that splits funds, and a
// second victim whose money converges on the same mule.
func caseRows() []Transaction {
	return []Transaction{
		{Layer: 1, FromAccount: "VICTIM1", ToAccount: "MULE1", AckNo: "ACK1", BankName: "SBI", IFSCCode: "SBIN0001234",
			TxnID: "T1", Amount: model.ParseMoney("50000"), DisputedAmount: model.ParseMoney("50000"), State: "Kerala",
			KYCName: str("Asha")},
		{Layer: 1, FromAccount: "VICTIM1", ToAccount: "MULE1", AckNo: "ACK1", BankName: "SBI", IFSCCode: "SBIN0001234",
			TxnID: "T2", Amount: model.ParseMoney("25000"), State: "Kerala"},
		{Layer: 2, FromAccount: "MULE1", ToAccount: "ACC2", AckNo: "ACK1", BankName: "HDFC", IFSCCode: "HDFC0000001",
			TxnID: "T3", Amount: model.ParseMoney("40000"), State: "Unknown",
			HoldTxnID: "H1", HoldAmount: model.ParseMoney("12000"), HoldDate: "2024-01-03"},
		{Layer: 2, FromAccount: "MULE1", ToAccount: "ACC3", AckNo: "ACK1", BankName: "AXIS", IFSCCode: "UTIB0000001",
			TxnID: "T4", Amount: model.ParseMoney("30000"),
			ATMID: "ATM9", ATMAmount: model.ParseMoney("10000"), AccountNumber: "ACC3-REAL"},
		{Layer: 1, FromAccount: "VICTIM2", ToAccount: "MULE1", AckNo: "ACK1", TxnID: "T5", Amount: model.ParseMoney("1000")},
		{Layer: 3, FromAccount: "ACC3", ToAccount: "ACC4", AckNo: "ACK1", TxnID: "T6", Amount: model.ParseMoney("5000"),
			HoldTxnID: "H2", AccountNumber: "ACC4-REAL"},
		{Layer: 2, FromAccount: "NOWHERE", ToAccount: "LOST", AckNo: "ACK1", TxnID: "T7"},
		{Layer: 1, FromAccount: "OTHER", ToAccount: "X", AckNo: "ACK2", TxnID: "T8"},
	}
}
