// Package trail holds the in-memory fund-trail tree: hierarchy construction
// from the graph document, sanitization, breadth-first layer numbering,
// expand/collapse state with burst locking, and path finding.
package trail

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/fundtrail/pkg/debug"
	"github.com/vanderheijden86/fundtrail/pkg/metrics"
	"github.com/vanderheijden86/fundtrail/pkg/model"
)

// DefaultBurstThreshold is the child count at which a node is burst-locked.
const DefaultBurstThreshold = 20

// ErrEmptyTrail is returned by Prepare when no valid account survives
// sanitization.
var ErrEmptyTrail = errors.New("no valid graph data")

// Node is one account hop in the trail.
type Node struct {
	Data     *model.NodeData
	Children []*Node

	Expanded   bool
	Burst      bool
	BurstCount int

	Depth       int // 0 for the root
	Layer       int // 0 until AssignLayers runs; the root is 1
	VictimLabel string
}

// ID returns the node identifier as sent by the server.
func (n *Node) ID() string {
	if n == nil || n.Data == nil {
		return ""
	}
	return n.Data.Name.Value
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// VisibleChildren returns the children the renderer should draw.
func (n *Node) VisibleChildren() []*Node {
	if !n.Expanded || n.Burst {
		return nil
	}
	return n.Children
}

// DisplayLayer is the layer number shown to investigators. The root and the
// victim level are not counted.
func (n *Node) DisplayLayer() int {
	return n.Layer - 2
}

// Tree owns the node hierarchy, its parent index and the tree-wide
// expand-all flag.
type Tree struct {
	Root *Node

	burstThreshold int
	parents        map[*Node]*Node
	expandAll      bool
}

// Option configures a Tree.
type Option func(*Tree)

// WithBurstThreshold overrides DefaultBurstThreshold. Zero or negative
// disables burst locking.
func WithBurstThreshold(n int) Option {
	return func(t *Tree) {
		t.burstThreshold = n
	}
}

// Build converts a decoded document into a node hierarchy. Payload-less
// entries are carried over; call Prepare (or Sanitize) before use.
func Build(raw *RawNode, opts ...Option) *Tree {
	t := &Tree{burstThreshold: DefaultBurstThreshold}
	for _, opt := range opts {
		opt(t)
	}
	t.Root = buildNode(raw)
	if t.Root == nil {
		t.Root = &Node{}
	}
	if t.Root.Data == nil {
		t.Root.Data = &model.NodeData{Name: model.NewIdentifier(model.RootName)}
	}
	return t
}

func buildNode(raw *RawNode) *Node {
	if raw == nil {
		return nil
	}
	n := &Node{Data: raw.Data}
	if len(raw.Children) > 0 {
		n.Children = make([]*Node, 0, len(raw.Children))
	}
	for _, rc := range raw.Children {
		// nil entries come from JSON nulls; keep them as payload-less nodes
		// so sanitization decides uniformly.
		if rc == nil {
			n.Children = append(n.Children, &Node{})
			continue
		}
		n.Children = append(n.Children, buildNode(rc))
	}
	return n
}

// FromDocument builds and prepares a tree in one step.
func FromDocument(doc *Document, opts ...Option) (*Tree, error) {
	if doc == nil || doc.Root == nil {
		return nil, ErrEmptyTrail
	}
	defer metrics.Timer(metrics.GraphLoad)()
	t := Build(doc.Root, opts...)
	if err := t.Prepare(); err != nil {
		return nil, err
	}
	return t, nil
}

// Prepare runs the load pipeline in order: sanitize, assign layers, index
// parents and labels, then collapse everything below the root.
func (t *Tree) Prepare() error {
	done := metrics.Timer(metrics.Sanitize)
	Sanitize(t.Root)
	done()

	if len(t.Root.Children) == 0 {
		return ErrEmptyTrail
	}

	done = metrics.Timer(metrics.LayerAssign)
	AssignLayers(t.Root)
	done()

	t.reindex()
	t.InitCollapsed()
	debug.Log("trail prepared: %d nodes, %d victims", t.Len(), len(t.Root.Children))
	return nil
}

// reindex rebuilds the parent side table, depths and victim labels.
func (t *Tree) reindex() {
	t.parents = make(map[*Node]*Node)
	t.Root.Depth = 0
	for i, v := range t.Root.Children {
		v.VictimLabel = fmt.Sprintf("Victim %d", i+1)
	}
	queue := []*Node{t.Root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range n.Children {
			t.parents[c] = n
			c.Depth = n.Depth + 1
			queue = append(queue, c)
		}
	}
}

// Parent returns the parent of n, or nil for the root and unknown nodes.
func (t *Tree) Parent(n *Node) *Node {
	return t.parents[n]
}

// Len returns the number of nodes reachable from the root.
func (t *Tree) Len() int {
	count := 0
	Walk(t.Root, func(*Node) bool {
		count++
		return true
	})
	return count
}

// BurstThreshold returns the configured burst threshold.
func (t *Tree) BurstThreshold() int {
	return t.burstThreshold
}

// Walk visits n and its descendants in pre-order. The callback runs before
// the node's children are read, so it may replace them. Returning false skips
// the node's subtree.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}
