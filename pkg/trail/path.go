package trail

import (
	"strings"

	"github.com/vanderheijden86/fundtrail/pkg/metrics"
)

// FindPath returns the root-to-target path of the first node, in document
// pre-order, whose trimmed identifier equals the trimmed target. Collapsed
// subtrees are searched too. It returns nil when the target is blank or not
// present.
func FindPath(root *Node, target string) []*Node {
	defer metrics.Timer(metrics.PathFind)()

	want := strings.TrimSpace(target)
	if root == nil || want == "" {
		return nil
	}

	from := make(map[*Node]*Node)
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Data != nil && n.Data.Name.Trimmed() == want {
			return unwind(from, n)
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			c := n.Children[i]
			from[c] = n
			stack = append(stack, c)
		}
	}
	return nil
}

func unwind(from map[*Node]*Node, n *Node) []*Node {
	var path []*Node
	for cur := n; cur != nil; cur = from[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ExpandPath expands every node on path that has children. Siblings keep
// their state.
func (t *Tree) ExpandPath(path []*Node) {
	for _, n := range path {
		if t.Observe(n) || len(n.Children) == 0 {
			continue
		}
		n.Expanded = true
	}
}

// Reveal finds account, expands the path to it and returns the path. ok is
// false when the account is absent or a burst lock on the way hides it.
func (t *Tree) Reveal(account string) (path []*Node, ok bool) {
	path = FindPath(t.Root, account)
	if path == nil {
		return nil, false
	}
	t.ExpandPath(path)
	for _, n := range path[:len(path)-1] {
		if n.Burst {
			return path, false
		}
	}
	return path, true
}

// PathTo walks the parent index from n back to the root and returns the
// root-to-n path.
func (t *Tree) PathTo(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var path []*Node
	for cur := n; cur != nil; cur = t.parents[cur] {
		path = append(path, cur)
		if cur == t.Root {
			break
		}
	}
	if path[len(path)-1] != t.Root {
		return nil
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
