package trail

// Sanitize removes, recursively and in place, every child that has no payload
// or whose identifier is null. The removed child's whole subtree goes with it;
// nothing is reparented. The root itself is never removed. Empty-string and
// placeholder identifiers ("N/A", "NA") are kept. Sanitize is idempotent.
func Sanitize(root *Node) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		kept := n.Children[:0]
		for _, c := range n.Children {
			if !wellFormed(c) {
				continue
			}
			kept = append(kept, c)
			stack = append(stack, c)
		}
		clear(n.Children[len(kept):])
		n.Children = kept
	}
}

func wellFormed(n *Node) bool {
	return n != nil && n.Data != nil && n.Data.Name.Valid
}
