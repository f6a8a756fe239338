package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 callback invocation, got %d", n)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not run after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func TestNew_NoPaths(t *testing.T) {
	if _, err := New([]string{"", "  "}); !errors.Is(err, ErrNoPaths) {
		t.Errorf("expected ErrNoPaths, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// recorder collects the changed paths reported by a watcher.
type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) onChange(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, c.Paths...)
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestWatcher_DetectsGraphChange(t *testing.T) {
	dir := t.TempDir()
	graph := filepath.Join(dir, "graph.json")
	writeFile(t, graph, `{"name":"Flow"}`)

	rec := &recorder{}
	w, err := New([]string{graph, ""},
		WithDebounceDuration(50*time.Millisecond),
		WithOnChange(rec.onChange),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, graph, `{"name":"Flow","children":[]}`)

	select {
	case c := <-w.Changes():
		if !c.Has(graph) {
			t.Errorf("change should name the graph file, got %v", c.Paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}
	got := rec.seen()
	if len(got) == 0 || got[0] != graph {
		t.Errorf("expected %s reported, got %v", graph, got)
	}
}

func TestWatcher_PollingReportsOnlyChangedFiles(t *testing.T) {
	dir := t.TempDir()
	graph := filepath.Join(dir, "graph.json")
	holds := filepath.Join(dir, "holds.json")
	writeFile(t, graph, `{}`)
	writeFile(t, holds, `[]`)

	rec := &recorder{}
	w, err := New([]string{graph, holds},
		WithDebounceDuration(50*time.Millisecond),
		WithPollInterval(50*time.Millisecond),
		WithForcePoll(true),
		WithOnChange(rec.onChange),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("expected polling mode")
	}

	writeFile(t, holds, `[{"account_number":"1"}]`)

	select {
	case c := <-w.Changes():
		if c.Has(graph) || !c.Has(holds) {
			t.Errorf("only the holds file changed, got %v", c.Paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change via polling")
	}
	got := rec.seen()
	if len(got) != 1 || got[0] != holds {
		t.Errorf("expected only %s, got %v", holds, got)
	}
}

func TestWatcher_EnvForcePoll(t *testing.T) {
	t.Setenv("FUNDTRAIL_FORCE_POLL", "yes")
	path := filepath.Join(t.TempDir(), "graph.json")
	writeFile(t, path, "{}")

	w, err := New([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("expected env to force polling")
	}
}

func TestWatcher_FileRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	writeFile(t, path, "{}")

	errCh := make(chan error, 4)
	w, err := New([]string{path},
		WithPollInterval(50*time.Millisecond),
		WithForcePoll(true),
		WithOnError(func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-errCh:
		if !errors.Is(err, ErrFileRemoved) {
			t.Errorf("expected ErrFileRemoved, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for removal error")
	}
}

func TestWatcher_StartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	writeFile(t, path, "{}")

	w, err := New([]string{path}, WithForcePoll(true))
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Error("should not be started before Start")
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
	w.Stop()
	if w.IsStarted() {
		t.Error("should be stopped")
	}
	w.Stop()
}

func TestWatcher_ContextCancelStopsPolling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	writeFile(t, path, "{}")

	var calls atomic.Int32
	w, err := New([]string{path},
		WithDebounceDuration(20*time.Millisecond),
		WithPollInterval(20*time.Millisecond),
		WithForcePoll(true),
		WithOnChange(func(Change) { calls.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	cancel()
	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, `{"changed":true}`)
	time.Sleep(150 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("expected no callbacks after cancel, got %d", n)
	}
}

func TestWatcher_Paths(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "a.json")}, WithPollInterval(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if got := w.Paths(); len(got) != 1 || !filepath.IsAbs(got[0]) {
		t.Errorf("expected one absolute path, got %v", got)
	}
	if w.PollInterval() != time.Second {
		t.Errorf("expected 1s poll interval, got %v", w.PollInterval())
	}
}

func TestWatcher_UnreadChangesMerge(t *testing.T) {
	dir := t.TempDir()
	graph := filepath.Join(dir, "graph.json")
	holds := filepath.Join(dir, "holds.json")
	w, err := New([]string{graph, holds})
	if err != nil {
		t.Fatal(err)
	}

	w.publish(Change{Paths: []string{holds}})
	w.publish(Change{Paths: []string{graph}})

	c := <-w.Changes()
	if len(c.Paths) != 2 || c.Paths[0] != graph || c.Paths[1] != holds {
		t.Errorf("expected both files in New order, got %v", c.Paths)
	}
	select {
	case extra := <-w.Changes():
		t.Errorf("merged changes should be delivered once, got extra %v", extra.Paths)
	default:
	}
}

func TestChangeHasRelativePath(t *testing.T) {
	abs, err := filepath.Abs("graph.json")
	if err != nil {
		t.Fatal(err)
	}
	c := Change{Paths: []string{abs}}
	if !c.Has("graph.json") || c.Has("holds.json") {
		t.Errorf("Has should resolve relative paths, got %v", c.Paths)
	}
}

func TestEnvBool(t *testing.T) {
	for _, tt := range []struct {
		value string
		want  bool
	}{
		{"1", true}, {"TRUE", true}, {" on ", true}, {"0", false}, {"nope", false}, {"", false},
	} {
		t.Setenv("FUNDTRAIL_TEST_BOOL", tt.value)
		if got := envBool("FUNDTRAIL_TEST_BOOL"); got != tt.want {
			t.Errorf("envBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
