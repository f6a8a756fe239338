package branch

import (
	"context"

	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// EnrichTree fills NodeData.Branch for every node that has an IFSC code and
// no branch yet. All codes are resolved in one batch so the renderer never
// triggers lookups. Nothing is written when ctx ends first, so an abandoned
// load never stores Unknown for codes that were still being resolved.
func EnrichTree(ctx context.Context, c *Cache, t *trail.Tree) {
	if c == nil || t == nil {
		return
	}
	var codes []string
	var targets []*trail.Node
	trail.Walk(t.Root, func(n *trail.Node) bool {
		if n.Data != nil && n.Data.IFSC != "" && n.Data.Branch == "" {
			codes = append(codes, n.Data.IFSC)
			targets = append(targets, n)
		}
		return true
	})
	if len(codes) == 0 {
		return
	}
	names := c.ResolveAll(ctx, codes)
	if ctx.Err() != nil {
		return
	}
	for _, n := range targets {
		n.Data.Branch = names[n.Data.IFSC]
	}
}

// EnrichHolds returns a copy of rows with BranchName filled for rows that
// lack one. Rows without an IFSC code become Unknown. When ctx ends first the
// rows are returned without branch names.
func EnrichHolds(ctx context.Context, c *Cache, rows []model.HoldRow) []model.HoldRow {
	out := make([]model.HoldRow, len(rows))
	copy(out, rows)
	if c == nil {
		return out
	}
	var codes []string
	for _, r := range out {
		if r.BranchName == "" {
			codes = append(codes, r.IFSCCode)
		}
	}
	if len(codes) == 0 {
		return out
	}
	names := c.ResolveAll(ctx, codes)
	if ctx.Err() != nil {
		return out
	}
	for i := range out {
		if out[i].BranchName == "" {
			out[i].BranchName = names[out[i].IFSCCode]
		}
	}
	return out
}
