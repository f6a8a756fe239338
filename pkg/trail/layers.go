package trail

// AssignLayers numbers the tree breadth-first: the root is layer 1 and a child
// takes parentLayer+1 unless it already holds a smaller layer. Nodes left
// without a layer default to 1. It reads Node.Layer only; the server-sent
// NodeData.Layer is informational. Run it once, before InitCollapsed, while
// every child is still reachable.
func AssignLayers(root *Node) {
	if root == nil {
		return
	}
	root.Layer = 1
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		candidate := n.Layer + 1
		for _, c := range n.Children {
			if c.Layer == 0 || candidate < c.Layer {
				c.Layer = candidate
			}
			queue = append(queue, c)
		}
	}
	Walk(root, func(n *Node) bool {
		if n.Layer == 0 {
			n.Layer = 1
		}
		return true
	})
}

// MaxLayer returns the deepest layer in the tree.
func MaxLayer(root *Node) int {
	deepest := 0
	Walk(root, func(n *Node) bool {
		if n.Layer > deepest {
			deepest = n.Layer
		}
		return true
	})
	return deepest
}
