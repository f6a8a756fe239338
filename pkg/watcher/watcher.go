// Package watcher reloads file-mode trails: it watches the graph JSON (and
// optionally the holds JSON) and reports, once per burst of writes, which of
// them changed.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is how often files are stat'ed in polling mode.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrNoPaths        = errors.New("no files to watch")
)

// Change lists the watched files written during one debounced burst, in the
// order they were passed to New.
type Change struct {
	Paths []string
}

// Has reports whether path (absolute or not) is part of the change.
func (c Change) Has(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return slices.Contains(c.Paths, abs)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets how long writes are coalesced.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.quiet = d }
}

// WithPollInterval sets the stat interval for polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets a callback run after each debounced change, before the
// change is delivered on Changes.
func WithOnChange(fn func(Change)) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback for removals, permission problems and
// fsnotify errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll skips fsnotify. FUNDTRAIL_FORCE_POLL=1 does the same.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// tracked is one watched file.
type tracked struct {
	path    string
	mtime   time.Time // zero while the file does not exist
	size    int64
	pending bool
}

// Watcher monitors case files using fsnotify with a polling fallback.
type Watcher struct {
	quiet        time.Duration
	pollInterval time.Duration
	onChange     func(Change)
	onError      func(error)
	forcePoll    bool

	mu        sync.Mutex
	files     []*tracked
	fsw       *fsnotify.Watcher
	polling   bool
	started   bool
	cancel    context.CancelFunc
	debouncer *Debouncer

	changes chan Change
}

// New creates a watcher for the given files. Blank paths are ignored so
// callers can pass an optional holds file unconditionally.
func New(paths []string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		quiet:        DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func(Change) {},
		onError:      func(error) {},
		changes:      make(chan Change, 1),
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		w.files = append(w.files, &tracked{path: abs})
	}
	if len(w.files) == 0 {
		return nil, ErrNoPaths
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.quiet)
	return w, nil
}

// Start records the current state of every file and begins watching in a
// background goroutine until Stop or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	for _, f := range w.files {
		info, err := os.Stat(f.path)
		if os.IsPermission(err) {
			return ErrPermission
		}
		f.pending = false
		f.mtime, f.size = time.Time{}, 0
		if err == nil {
			f.mtime, f.size = info.ModTime(), info.Size()
		}
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.polling = w.forcePoll || envBool("FUNDTRAIL_FORCE_POLL")
	if !w.polling {
		fsw, err := w.watchDirs()
		if err != nil {
			w.polling = true
		} else {
			w.fsw = fsw
			go w.runFsnotify(ctx, fsw)
		}
	}
	if w.polling {
		go w.runPolling(ctx)
	}
	w.started = true
	return nil
}

// watchDirs watches each file's directory, which survives the
// rename-over-write pattern editors use.
func (w *Watcher) watchDirs() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, f := range w.files {
		if d := filepath.Dir(f.path); !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return fsw, nil
}

// Stop stops watching. A pending burst is dropped; Changes stays open.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsPolling reports whether the polling fallback is in use.
func (w *Watcher) IsPolling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

// Changes delivers one Change per debounced burst. A burst that arrives
// while the previous one is still unread is merged into it.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Paths returns the absolute paths being watched.
func (w *Watcher) Paths() []string {
	out := make([]string, len(w.files))
	for i, f := range w.files {
		out[i] = f.path
	}
	return out
}

// PollInterval returns the polling interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// lookup returns the tracked file for an event name, or nil.
func (w *Watcher) lookup(name string) *tracked {
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil
	}
	for _, f := range w.files {
		if f.path == abs {
			return f
		}
	}
	return nil
}

func (w *Watcher) runFsnotify(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			f := w.lookup(ev.Name)
			if f == nil {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				w.onError(ErrFileRemoved)
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.markPending(f)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) runPolling(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, f := range w.files {
				w.stat(f)
			}
		}
	}
}

// stat compares f against the disk and marks it pending when it was written.
func (w *Watcher) stat(f *tracked) {
	info, err := os.Stat(f.path)
	switch {
	case os.IsNotExist(err):
		w.mu.Lock()
		existed := !f.mtime.IsZero()
		f.mtime, f.size = time.Time{}, 0
		w.mu.Unlock()
		if existed {
			w.onError(ErrFileRemoved)
		}
		return
	case os.IsPermission(err):
		w.onError(ErrPermission)
		return
	case err != nil:
		w.onError(err)
		return
	}

	w.mu.Lock()
	written := info.ModTime().After(f.mtime) || info.Size() != f.size
	if written {
		f.mtime, f.size = info.ModTime(), info.Size()
	}
	w.mu.Unlock()
	if written {
		w.markPending(f)
	}
}

func (w *Watcher) markPending(f *tracked) {
	w.mu.Lock()
	f.pending = true
	w.mu.Unlock()
	w.debouncer.Trigger(w.flush)
}

// flush collects the pending files of a burst and publishes them.
func (w *Watcher) flush() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	var c Change
	for _, f := range w.files {
		if f.pending {
			c.Paths = append(c.Paths, f.path)
			f.pending = false
		}
	}
	w.mu.Unlock()

	if len(c.Paths) == 0 {
		return
	}
	w.onChange(c)
	w.publish(c)
}

func (w *Watcher) publish(c Change) {
	for {
		select {
		case w.changes <- c:
			return
		default:
		}
		select {
		case prev := <-w.changes:
			c = w.merge(prev, c)
		default:
		}
	}
}

// merge unions two changes, keeping the order of New.
func (w *Watcher) merge(a, b Change) Change {
	var out Change
	for _, p := range w.Paths() {
		if slices.Contains(a.Paths, p) || slices.Contains(b.Paths, p) {
			out.Paths = append(out.Paths, p)
		}
	}
	return out
}
