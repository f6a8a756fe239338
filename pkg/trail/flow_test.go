package trail

import (
	"testing"

	"github.com/vanderheijden86/fundtrail/pkg/model"
)

func account(name, amt, state string, children ...*RawNode) *RawNode {
	r := node(name, children...)
	r.Data.Amount = model.ParseMoney(amt)
	r.Data.State = state
	return r
}

// TestSummarizeConvergenceAndReach verifies accounts credited from several
// sources are flagged and victim reach counts distinct accounts.
func TestSummarizeConvergenceAndReach(t *testing.T) {
	hub := account("HUB", "500", "Delhi")
	hub.Data.Hold = &model.HoldInfo{TxnID: "H1", Amount: model.ParseMoney("200")}
	root := node("Flow",
		node("V1", account("A", "1000", "Kerala", account("HUB", "400", "Delhi"))),
		node("V2", account("B", "700", "Kerala", hub)),
	)
	tree := mustPrepare(t, root)

	s := Summarize(tree)
	if s.Accounts != 5 {
		t.Errorf("accounts = %d, want 5 distinct (V1 V2 A B HUB)", s.Accounts)
	}
	if len(s.Convergent) != 1 || s.Convergent[0] != "HUB" {
		t.Errorf("convergent = %v, want [HUB]", s.Convergent)
	}
	if s.Holds != 1 || s.HoldAmount.String() != "200" {
		t.Errorf("holds = %d / %s", s.Holds, s.HoldAmount)
	}
	if len(s.Victims) != 2 || s.Victims[0].Accounts != 2 {
		t.Errorf("victim reach = %+v", s.Victims)
	}
	if len(s.Layers) != 2 || s.Layers[0].Layer != 1 || s.Layers[0].Amount.String() != "1700" {
		t.Errorf("layers = %+v", s.Layers)
	}
	if s.States[0].State != "Kerala" {
		t.Errorf("states should be ordered by amount, got %+v", s.States)
	}
}

// TestSummarizeDetectsCycles verifies money looping back is reported.
func TestSummarizeDetectsCycles(t *testing.T) {
	root := node("Flow", node("V", account("A", "10", "", account("B", "10", "", account("A", "5", "")))))
	tree := mustPrepare(t, root)

	s := Summarize(tree)
	if len(s.Cycles) != 1 || len(s.Cycles[0]) != 2 {
		t.Fatalf("cycles = %v, want one A/B loop", s.Cycles)
	}
	if s.Cycles[0][0] != "A" || s.Cycles[0][1] != "B" {
		t.Errorf("cycle = %v", s.Cycles[0])
	}
}
