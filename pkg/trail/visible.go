package trail

// Row is one line of the flattened, currently visible tree.
type Row struct {
	Node   *Node
	Depth  int
	IsLast bool
	// Trail holds, for each ancestor below the root, whether it was the last
	// of its siblings. Renderers use it to draw continuation lines.
	Trail []bool
}

// Visible flattens the visible tree in pre-order. Every visited node is
// observed for burst first, so rendering is where burst locks normally
// happen.
func (t *Tree) Visible() []Row {
	if t == nil || t.Root == nil {
		return nil
	}
	var rows []Row
	var visit func(n *Node, depth int, isLast bool, trail []bool)
	visit = func(n *Node, depth int, isLast bool, trail []bool) {
		t.Observe(n)
		rows = append(rows, Row{Node: n, Depth: depth, IsLast: isLast, Trail: trail})
		children := n.VisibleChildren()
		if len(children) == 0 {
			return
		}
		next := trail
		if depth > 0 {
			next = make([]bool, len(trail)+1)
			copy(next, trail)
			next[len(trail)] = isLast
		}
		for i, c := range children {
			visit(c, depth+1, i == len(children)-1, next)
		}
	}
	visit(t.Root, 0, true, nil)
	return rows
}
