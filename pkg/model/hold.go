package model

// HoldRow is one put-on-hold transaction of a complaint.
type HoldRow struct {
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	BranchName    string `json:"branch_name"`
	IFSCCode      string `json:"ifsc_code"`
	Amount        Money  `json:"amount"`
	Layer         *int   `json:"layer"`
}

// IntPtr is a helper for building rows with a layer.
func IntPtr(v int) *int {
	return &v
}
