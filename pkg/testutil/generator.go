// Package testutil provides fund-trail fixture generators for various tree
// shapes. All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Seed          int64    // Random seed for determinism (0 = use current time)
	AccountPrefix string   // Prefix for account numbers (default: "AC")
	Banks         []string // Bank names drawn per account (default: a fixed list)
	BaseDate      time.Time
	HoldRate      float64 // Fraction of leaves that carry hold info
	ATMRate       float64 // Fraction of leaves that carry an ATM withdrawal
}

var defaultBanks = []string{"SBI", "HDFC", "ICICI", "AXIS", "PNB", "KOTAK"}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:          42, // Deterministic
		AccountPrefix: "AC",
		Banks:         defaultBanks,
		BaseDate:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		HoldRate:      0.25,
		ATMRate:       0.1,
	}
}

// Generator creates fund trails with various shapes. Account numbers are
// unique within one generator.
type Generator struct {
	cfg  GeneratorConfig
	rng  *rand.Rand
	next int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseDate.IsZero() {
		cfg.BaseDate = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if cfg.AccountPrefix == "" {
		cfg.AccountPrefix = "AC"
	}
	if len(cfg.Banks) == 0 {
		cfg.Banks = defaultBanks
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// ============================================================================
// Trail Shape Generators
// ============================================================================

// Chain creates one victim whose money passes through depth-1 mule accounts
// in a single line.
// Properties: one leaf, max layer = depth + 1
func (g *Generator) Chain(depth int) *trail.RawNode {
	root := g.root()
	if depth <= 0 {
		return root
	}
	cur := g.account(1)
	root.Children = append(root.Children, cur)
	for layer := 2; layer <= depth; layer++ {
		next := g.account(layer)
		cur.Children = append(cur.Children, next)
		cur = next
	}
	g.decorateLeaves(root)
	return root
}

// Fan creates victims that each pay width first-layer mules directly. A width
// at or above the burst threshold produces burst-locked victims.
func (g *Generator) Fan(victims, width int) *trail.RawNode {
	root := g.root()
	for v := 0; v < victims; v++ {
		victim := g.account(1)
		for i := 0; i < width; i++ {
			victim.Children = append(victim.Children, g.account(2))
		}
		root.Children = append(root.Children, victim)
	}
	g.decorateLeaves(root)
	return root
}

// Tree creates a complete trail below one victim: every account above the
// last layer pays breadth accounts.
// Properties: breadth^(depth-1) leaves under the victim
func (g *Generator) Tree(depth, breadth int) *trail.RawNode {
	root := g.root()
	if depth <= 0 {
		return root
	}
	victim := g.account(1)
	root.Children = append(root.Children, victim)
	level := []*trail.RawNode{victim}
	for layer := 2; layer <= depth; layer++ {
		var nextLevel []*trail.RawNode
		for _, parent := range level {
			for i := 0; i < breadth; i++ {
				c := g.account(layer)
				parent.Children = append(parent.Children, c)
				nextLevel = append(nextLevel, c)
			}
		}
		level = nextLevel
	}
	g.decorateLeaves(root)
	return root
}

// Convergent creates victims that all pay the same mule account, which then
// forwards to a cash-out account. The mule appears once under every victim.
func (g *Generator) Convergent(victims int) *trail.RawNode {
	root := g.root()
	mule := g.nextAccount()
	cashOut := g.nextAccount()
	for v := 0; v < victims; v++ {
		victim := g.account(1)
		m := g.named(mule, 2)
		m.Children = []*trail.RawNode{g.named(cashOut, 3)}
		victim.Children = append(victim.Children, m)
		root.Children = append(root.Children, victim)
	}
	g.decorateLeaves(root)
	return root
}

// Random creates a trail of roughly size accounts where each account pays
// between zero and maxChildren others. Victims number at least one.
func (g *Generator) Random(size, maxChildren int) *trail.RawNode {
	root := g.root()
	if size <= 0 {
		return root
	}
	if maxChildren < 1 {
		maxChildren = 1
	}
	victims := min(1+g.rng.Intn(3), size)
	queue := make([]*trail.RawNode, 0, size)
	for v := 0; v < victims; v++ {
		victim := g.account(1)
		root.Children = append(root.Children, victim)
		queue = append(queue, victim)
	}
	created := len(root.Children)
	for len(queue) > 0 && created < size {
		parent := queue[0]
		queue = queue[1:]
		n := 1 + g.rng.Intn(maxChildren)
		for i := 0; i < n && created < size; i++ {
			c := g.account(parent.Data.Layer + 1)
			parent.Children = append(parent.Children, c)
			queue = append(queue, c)
			created++
		}
	}
	g.decorateLeaves(root)
	return root
}

// Malformed adds every kind of invalid entry the sanitizer must drop under
// the first victim of root: a payload-less child, a child with a null name,
// and a valid account hanging below a null-named one. It returns the number
// of entries that must disappear.
func (g *Generator) Malformed(root *trail.RawNode) int {
	if len(root.Children) == 0 {
		return 0
	}
	victim := root.Children[0]
	orphan := g.account(victim.Data.Layer + 2)
	nullName := &trail.RawNode{Data: &model.NodeData{Layer: victim.Data.Layer + 1}, Children: []*trail.RawNode{orphan}}
	victim.Children = append(victim.Children,
		&trail.RawNode{},
		&trail.RawNode{Data: &model.NodeData{Layer: victim.Data.Layer + 1}},
		nullName,
	)
	return 4
}

// ============================================================================
// Documents
// ============================================================================

// DocumentJSON encodes root in the /graph_data wire shape.
func DocumentJSON(root *trail.RawNode) ([]byte, error) {
	return json.Marshal(root)
}

// HoldRows returns the put-on-hold rows a server would list for root: one
// per account with hold info, in pre-order.
func HoldRows(root *trail.RawNode) []model.HoldRow {
	var rows []model.HoldRow
	walkRaw(root, func(n *trail.RawNode) {
		if n.Data == nil || n.Data.Hold == nil {
			return
		}
		rows = append(rows, model.HoldRow{
			AccountNumber: n.Data.Name.Value,
			BankName:      n.Data.Bank,
			IFSCCode:      n.Data.IFSC,
			Amount:        n.Data.Hold.Amount,
			Layer:         model.IntPtr(n.Data.Layer),
		})
	})
	return rows
}

// Accounts lists the account numbers of root's descendants in pre-order.
func Accounts(root *trail.RawNode) []string {
	var ids []string
	walkRaw(root, func(n *trail.RawNode) {
		if n == root || n.Data == nil || !n.Data.Name.Valid {
			return
		}
		ids = append(ids, n.Data.Name.Value)
	})
	return ids
}

// CountNodes returns the number of entries in root, root included.
func CountNodes(root *trail.RawNode) int {
	count := 0
	walkRaw(root, func(*trail.RawNode) { count++ })
	return count
}

// MaxDepth returns the number of edges on the longest root-to-leaf path.
func MaxDepth(root *trail.RawNode) int {
	if root == nil || len(root.Children) == 0 {
		return 0
	}
	deepest := 0
	for _, c := range root.Children {
		if d := MaxDepth(c); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// ============================================================================
// Helpers
// ============================================================================

func (g *Generator) root() *trail.RawNode {
	return &trail.RawNode{Data: &model.NodeData{Name: model.NewIdentifier(model.RootName)}}
}

func (g *Generator) nextAccount() string {
	g.next++
	return fmt.Sprintf("%s%06d", g.cfg.AccountPrefix, g.next)
}

func (g *Generator) account(layer int) *trail.RawNode {
	return g.named(g.nextAccount(), layer)
}

func (g *Generator) named(id string, layer int) *trail.RawNode {
	bank := g.cfg.Banks[g.rng.Intn(len(g.cfg.Banks))]
	amount := decimal.NewFromInt(int64(100 + g.rng.Intn(50000)))
	return &trail.RawNode{Data: &model.NodeData{
		Name:   model.NewIdentifier(id),
		Layer:  layer,
		Bank:   bank,
		IFSC:   fmt.Sprintf("%s%07d", bankCode(bank), g.rng.Intn(10000000)),
		Date:   g.cfg.BaseDate.AddDate(0, 0, layer).Format("2006-01-02"),
		TxnID:  fmt.Sprintf("TX%s", id),
		Amount: model.NewMoney(amount),
	}}
}

// decorateLeaves attaches hold and ATM info to a share of the leaves.
func (g *Generator) decorateLeaves(root *trail.RawNode) {
	walkRaw(root, func(n *trail.RawNode) {
		if n == root || len(n.Children) > 0 || n.Data == nil {
			return
		}
		if g.rng.Float64() < g.cfg.HoldRate {
			n.Data.Hold = &model.HoldInfo{
				TxnID:  "H" + n.Data.TxnID,
				Date:   n.Data.Date,
				Amount: n.Data.Amount,
			}
		}
		if g.rng.Float64() < g.cfg.ATMRate {
			n.Data.ATM = &model.ATMInfo{
				ID:     fmt.Sprintf("ATM%04d", g.rng.Intn(10000)),
				Amount: n.Data.Amount,
				Date:   n.Data.Date,
			}
		}
	})
}

func bankCode(bank string) string {
	code := []byte("XXXX")
	copy(code, bank)
	return string(code)
}

func walkRaw(n *trail.RawNode, fn func(*trail.RawNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		walkRaw(c, fn)
	}
}
