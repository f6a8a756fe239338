package ui

import (
	"testing"
	"time"

	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

func TestSingleClickFiresAfterDebounce(t *testing.T) {
	c := newClickState(10 * time.Millisecond)
	n := &trail.Node{}

	res := c.press(n)
	if res.Cmd == nil || res.Double != nil || res.Flush != nil {
		t.Fatalf("unexpected first press result: %+v", res)
	}
	msg, ok := res.Cmd().(clickFireMsg)
	if !ok {
		t.Fatal("expected a clickFireMsg from the debounce tick")
	}
	if got := c.fire(msg); got != n {
		t.Error("debounced click should toggle the pressed node")
	}
	if got := c.fire(msg); got != nil {
		t.Error("a window fires once")
	}
}

func TestDoubleClickCancelsToggle(t *testing.T) {
	c := newClickState(0)
	if c.debounce != DefaultClickDebounce {
		t.Errorf("zero debounce should fall back to %v, got %v", DefaultClickDebounce, c.debounce)
	}
	n := &trail.Node{}

	c.press(n)
	second := c.press(n)
	if second.Double != n {
		t.Fatal("second press on the same node should be a double click")
	}
	if second.Cmd != nil {
		t.Error("double click must not start a new window")
	}
	// the first window's tick arrives later and must be ignored
	if got := c.fire(clickFireMsg{seq: 1}); got != nil {
		t.Error("cancelled window must not toggle")
	}
}

func TestClickOnOtherNodeFlushesPending(t *testing.T) {
	c := newClickState(time.Second)
	a, b := &trail.Node{}, &trail.Node{}

	c.press(a)
	res := c.press(b)
	if res.Flush != a {
		t.Error("pending click on a should be flushed")
	}
	if res.Double != nil {
		t.Error("different nodes are not a double click")
	}
	if got := c.fire(clickFireMsg{seq: 1}); got != nil {
		t.Error("stale window must be ignored")
	}
	if got := c.fire(clickFireMsg{seq: 2}); got != b {
		t.Error("current window should toggle b")
	}
}

func TestPressNilIsNoop(t *testing.T) {
	c := newClickState(time.Second)
	if res := c.press(nil); res.Cmd != nil || res.Double != nil || res.Flush != nil {
		t.Errorf("nil press should do nothing, got %+v", res)
	}
}
