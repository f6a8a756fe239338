package trail

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// LayerStat aggregates the transfers that landed on one display layer.
type LayerStat struct {
	Layer    int
	Accounts int
	Amount   decimal.Decimal
}

// StateStat aggregates accounts by the bank's state.
type StateStat struct {
	State    string
	Accounts int
	Amount   decimal.Decimal
}

// VictimReach counts the distinct accounts money from one victim reached.
type VictimReach struct {
	Label    string
	Account  string
	Accounts int
}

// Summary is a whole-trail overview for the summary panel and CLI.
type Summary struct {
	Accounts   int
	Transfers  int
	MaxLayer   int
	Holds      int
	HoldAmount decimal.Decimal
	Layers     []LayerStat
	States     []StateStat
	Victims    []VictimReach
	// Convergent lists accounts credited by more than one distinct account.
	Convergent []string
	// Cycles lists groups of accounts that pass money around in a loop.
	Cycles [][]string
}

// flowGraph maps account identifiers onto a gonum directed graph.
type flowGraph struct {
	g   *simple.DirectedGraph
	ids map[string]int64
	acc map[int64]string
}

func newFlowGraph() *flowGraph {
	return &flowGraph{
		g:   simple.NewDirectedGraph(),
		ids: make(map[string]int64),
		acc: make(map[int64]string),
	}
}

func (f *flowGraph) node(account string) graph.Node {
	if id, ok := f.ids[account]; ok {
		return f.g.Node(id)
	}
	n := f.g.NewNode()
	f.g.AddNode(n)
	f.ids[account] = n.ID()
	f.acc[n.ID()] = account
	return n
}

func (f *flowGraph) link(from, to string) {
	if from == "" || to == "" || from == to {
		return
	}
	u, v := f.node(from), f.node(to)
	if f.g.HasEdgeFromTo(u.ID(), v.ID()) {
		return
	}
	f.g.SetEdge(f.g.NewEdge(u, v))
}

// Summarize computes the overview from every node still attached to the tree,
// whatever its expansion state. Accounts are keyed by trimmed identifier, so
// an account that appears under several parents counts once.
func Summarize(t *Tree) Summary {
	var s Summary
	if t == nil || t.Root == nil {
		return s
	}
	fg := newFlowGraph()
	layers := make(map[int]*LayerStat)
	states := make(map[string]*StateStat)
	s.HoldAmount = decimal.Zero

	Walk(t.Root, func(n *Node) bool {
		if n == t.Root {
			return true
		}
		account := n.Data.Name.Trimmed()
		fg.node(account)
		if parent := t.Parent(n); parent != nil && parent != t.Root {
			fg.link(parent.Data.Name.Trimmed(), account)
			s.Transfers++
		}
		for _, in := range n.Data.IncomingFrom {
			fg.link(strings.TrimSpace(in.From), account)
		}
		if n.Layer > s.MaxLayer {
			s.MaxLayer = n.Layer
		}
		if n.Depth < 2 {
			return true
		}

		amount := n.Data.Amount.OrZero()
		ls := layers[n.DisplayLayer()]
		if ls == nil {
			ls = &LayerStat{Layer: n.DisplayLayer(), Amount: decimal.Zero}
			layers[n.DisplayLayer()] = ls
		}
		ls.Accounts++
		ls.Amount = ls.Amount.Add(amount)

		state := strings.TrimSpace(n.Data.State)
		if state == "" {
			state = "Unknown State"
		}
		st := states[state]
		if st == nil {
			st = &StateStat{State: state, Amount: decimal.Zero}
			states[state] = st
		}
		st.Accounts++
		st.Amount = st.Amount.Add(amount)

		if n.Data.Hold != nil {
			s.Holds++
			s.HoldAmount = s.HoldAmount.Add(n.Data.Hold.Amount.OrZero())
		}
		return true
	})

	s.Accounts = fg.g.Nodes().Len()

	for _, ls := range layers {
		s.Layers = append(s.Layers, *ls)
	}
	slices.SortFunc(s.Layers, func(a, b LayerStat) int { return cmp.Compare(a.Layer, b.Layer) })

	for _, st := range states {
		s.States = append(s.States, *st)
	}
	slices.SortFunc(s.States, func(a, b StateStat) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.State, b.State)
	})

	for _, v := range t.Root.Children {
		start := fg.node(v.Data.Name.Trimmed())
		reached := 0
		bf := traverse.BreadthFirst{}
		bf.Walk(fg.g, start, func(graph.Node, int) bool {
			reached++
			return false
		})
		s.Victims = append(s.Victims, VictimReach{
			Label:    v.VictimLabel,
			Account:  v.ID(),
			Accounts: reached - 1,
		})
	}

	nodes := fg.g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if fg.g.To(id).Len() > 1 {
			s.Convergent = append(s.Convergent, fg.acc[id])
		}
	}
	slices.Sort(s.Convergent)

	for _, scc := range topo.TarjanSCC(fg.g) {
		if len(scc) < 2 {
			continue
		}
		cycle := make([]string, 0, len(scc))
		for _, n := range scc {
			cycle = append(cycle, fg.acc[n.ID()])
		}
		slices.Sort(cycle)
		s.Cycles = append(s.Cycles, cycle)
	}
	slices.SortFunc(s.Cycles, func(a, b []string) int { return strings.Compare(a[0], b[0]) })

	return s
}
