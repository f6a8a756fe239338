package ui

import (
	"context"
	"sync"
	"testing"

	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// Flow
// ├── V100
// │   └── M200
// │       ├── H300 (hold, ATM)
// │       └── B400 (3 children, burst at threshold 3)
// └── V101
const uiCaseJSON = `{
  "name": "Flow",
  "children": [
    {"name": "V100", "bank": "SBI", "amt": "5000",
     "children": [
       {"name": "M200", "bank": "HDFC", "ifsc": "HDFC0001", "txid": "TX200", "amt": 4000,
        "children": [
          {"name": "H300", "bank": "ICICI", "ifsc": "ICIC0002", "txid": "TX300", "amt": "3500",
           "hold_info": {"txn_id": "T9", "amount": "1200"},
           "atm_info": {"atm_id": "ATM7", "amount": "100"}},
          {"name": "B400", "bank": "AXIS", "amt": "300",
           "children": [
             {"name": "C1", "amt": "100"},
             {"name": "C2", "amt": "100"},
             {"name": "C3", "amt": "100"}
           ]}
        ]}
     ]},
    {"name": "V101", "bank": "PNB", "amt": "700"}
  ]
}`

func testTree(t *testing.T) *trail.Tree {
	t.Helper()
	doc, err := trail.DecodeDocument([]byte(uiCaseJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tree, err := trail.FromDocument(doc, trail.WithBurstThreshold(3))
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	return tree
}

func testHoldRows() []model.HoldRow {
	return []model.HoldRow{
		{AccountNumber: "H300", BankName: "ICICI", BranchName: "Andheri", IFSCCode: "ICIC0002", Amount: model.ParseMoney("1200"), Layer: model.IntPtr(2)},
		{AccountNumber: "M200", BankName: "HDFC", BranchName: "Fort", IFSCCode: "HDFC0001", Amount: model.ParseMoney("500"), Layer: model.IntPtr(1)},
		{AccountNumber: "Z900", BankName: "ICICI", IFSCCode: "ICIC0009", Amount: model.ParseMoney("9000")},
	}
}

// fakeSource serves the fixture case.
type fakeSource struct {
	mu       sync.Mutex
	graph    string
	graphErr error
	holds    []model.HoldRow
	kycErr   error
	saved    []model.KYCUpdate
}

func newFakeSource() *fakeSource {
	return &fakeSource{graph: uiCaseJSON, holds: testHoldRows()}
}

func (s *fakeSource) Graph(ctx context.Context, ack string) (*trail.Document, error) {
	if s.graphErr != nil {
		return nil, s.graphErr
	}
	return trail.DecodeDocument([]byte(s.graph))
}

func (s *fakeSource) Holds(ctx context.Context, ack string) ([]model.HoldRow, error) {
	return s.holds, nil
}

func (s *fakeSource) SaveKYC(ctx context.Context, req model.KYCUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kycErr != nil {
		return s.kycErr
	}
	s.saved = append(s.saved, req)
	return nil
}

func (s *fakeSource) Close() error { return nil }

// rowIndex finds the visible row for account, or -1.
func rowIndex(tm *TreeModel, account string) int {
	for i, r := range tm.rows {
		if r.Node.ID() == account {
			return i
		}
	}
	return -1
}
