package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// DefaultClickDebounce is how long a single click waits for a second one
// before it toggles the node.
const DefaultClickDebounce = 250 * time.Millisecond

// clickFireMsg ends a debounce window. Stale windows carry an old seq.
type clickFireMsg struct {
	seq int
}

// clickResult tells the caller what a press did.
type clickResult struct {
	// Flush is a node whose pending single click must toggle now because a
	// different node was clicked.
	Flush *trail.Node
	// Double is the node that was clicked twice within the window.
	Double *trail.Node
	Cmd    tea.Cmd
}

// clickState tells single clicks (toggle) from double clicks (details) on
// tree rows.
type clickState struct {
	debounce time.Duration
	pending  *trail.Node
	seq      int
}

func newClickState(debounce time.Duration) clickState {
	if debounce <= 0 {
		debounce = DefaultClickDebounce
	}
	return clickState{debounce: debounce}
}

// press registers a click on n.
func (c *clickState) press(n *trail.Node) clickResult {
	if n == nil {
		return clickResult{}
	}
	if c.pending == n {
		c.cancel()
		return clickResult{Double: n}
	}
	res := clickResult{Flush: c.pending}
	c.seq++
	c.pending = n
	seq := c.seq
	res.Cmd = tea.Tick(c.debounce, func(time.Time) tea.Msg {
		return clickFireMsg{seq: seq}
	})
	return res
}

// fire returns the node to toggle when msg closes the current window, or nil.
func (c *clickState) fire(msg clickFireMsg) *trail.Node {
	if msg.seq != c.seq || c.pending == nil {
		return nil
	}
	n := c.pending
	c.pending = nil
	return n
}

// cancel drops the pending click.
func (c *clickState) cancel() {
	c.pending = nil
	c.seq++
}
