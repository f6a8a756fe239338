package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// AssertLayersFollowDepth checks that every node sits one layer below its
// parent, which holds for any prepared tree.
func AssertLayersFollowDepth(t *testing.T, tree *trail.Tree) {
	t.Helper()
	trail.Walk(tree.Root, func(n *trail.Node) bool {
		if n.Layer != n.Depth+1 {
			t.Errorf("node %q: layer %d at depth %d", n.ID(), n.Layer, n.Depth)
		}
		return true
	})
}

// AssertPath checks that path runs from the root down parent links and ends
// at account.
func AssertPath(t *testing.T, tree *trail.Tree, path []*trail.Node, account string) {
	t.Helper()
	if len(path) == 0 {
		t.Fatalf("no path to %q", account)
	}
	if path[0] != tree.Root {
		t.Errorf("path starts at %q, not the root", path[0].ID())
	}
	for i := 1; i < len(path); i++ {
		if tree.Parent(path[i]) != path[i-1] {
			t.Errorf("path step %d: %q is not a child of %q", i, path[i].ID(), path[i-1].ID())
		}
	}
	if got := path[len(path)-1].Data.Name.Trimmed(); got != account {
		t.Errorf("path ends at %q, want %q", got, account)
	}
}

// AssertNoPayloadless checks that sanitization left only well-formed nodes.
func AssertNoPayloadless(t *testing.T, tree *trail.Tree) {
	t.Helper()
	trail.Walk(tree.Root, func(n *trail.Node) bool {
		if n.Data == nil || !n.Data.Name.Valid {
			t.Errorf("malformed node survived under depth %d", n.Depth)
		}
		return true
	})
}

// Prepare builds and prepares a tree from root.
func Prepare(t *testing.T, root *trail.RawNode, opts ...trail.Option) *trail.Tree {
	t.Helper()
	tree := trail.Build(root, opts...)
	if err := tree.Prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	return tree
}

// File helpers

// WriteGraphFile writes root as graph.json in dir and returns the path.
func WriteGraphFile(t *testing.T, dir string, root *trail.RawNode) string {
	t.Helper()
	data, err := DocumentJSON(root)
	if err != nil {
		t.Fatalf("marshal graph: %v", err)
	}
	return writeFile(t, filepath.Join(dir, "graph.json"), data)
}

// WriteHoldsFile writes rows as holds.json in dir and returns the path.
func WriteHoldsFile(t *testing.T, dir string, rows []model.HoldRow) string {
	t.Helper()
	data, err := json.Marshal(rows)
	if err != nil {
		t.Fatalf("marshal holds: %v", err)
	}
	return writeFile(t, filepath.Join(dir, "holds.json"), data)
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
