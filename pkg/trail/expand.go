package trail

import "github.com/vanderheijden86/fundtrail/pkg/debug"

// InitCollapsed expands the root and collapses every other node.
func (t *Tree) InitCollapsed() {
	Walk(t.Root, func(n *Node) bool {
		n.Expanded = false
		return true
	})
	t.Root.Expanded = true
	t.expandAll = false
}

// Observe locks n as a burst node the first time it is seen with at least
// the burst threshold of children. Locked nodes drop their children and can
// never be expanded again. The root is never locked. Observe returns whether
// n is burst.
func (t *Tree) Observe(n *Node) bool {
	if n == nil {
		return false
	}
	if n.Burst {
		return true
	}
	if n == t.Root || t.burstThreshold <= 0 || len(n.Children) < t.burstThreshold {
		return false
	}
	n.Burst = true
	n.BurstCount = len(n.Children)
	n.Expanded = false
	for _, c := range n.Children {
		Walk(c, func(d *Node) bool {
			delete(t.parents, d)
			return true
		})
	}
	n.Children = nil
	debug.Log("burst-locked %q with %d children", n.ID(), n.BurstCount)
	return true
}

// Toggle flips the expansion of n. It reports false, leaving the node as is,
// for burst nodes and nodes without children.
func (t *Tree) Toggle(n *Node) bool {
	if n == nil || t.Observe(n) || len(n.Children) == 0 {
		return false
	}
	n.Expanded = !n.Expanded
	return true
}

// ToggleAll expands or collapses every non-root, non-burst node that has
// children, visiting collapsed subtrees too. Nodes are observed for burst on
// the way.
func (t *Tree) ToggleAll(expand bool) {
	Walk(t.Root, func(n *Node) bool {
		if n == t.Root {
			return true
		}
		if t.Observe(n) || len(n.Children) == 0 {
			return true
		}
		n.Expanded = expand
		return true
	})
	t.expandAll = expand
}

// ToggleExpandAll flips the tree-wide expand-all flag, applies it and returns
// the new value.
func (t *Tree) ToggleExpandAll() bool {
	t.ToggleAll(!t.expandAll)
	return t.expandAll
}

// ExpandAllActive reports the tree-wide flag last applied by ToggleAll.
func (t *Tree) ExpandAllActive() bool {
	return t.expandAll
}
