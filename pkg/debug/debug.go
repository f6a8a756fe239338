// Package debug provides conditional debug logging for fundtrail.
//
// Debug logging is enabled by setting the FUNDTRAIL_DEBUG environment variable:
//
//	FUNDTRAIL_DEBUG=1 fundtrail view 31234567890123
//
// Output goes to stderr, or to the file named by FUNDTRAIL_DEBUG_FILE (useful
// while the TUI owns the terminal). When disabled, all functions are no-ops and
// Logger returns a no-op zap logger.
package debug

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	enabled bool
	base    = zap.NewNop()
	sugar   = base.Sugar()
)

func init() {
	if os.Getenv("FUNDTRAIL_DEBUG") != "" {
		SetEnabled(true)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if !e {
		base = zap.NewNop()
		sugar = base.Sugar()
		return
	}
	base = newLogger(os.Getenv("FUNDTRAIL_DEBUG_FILE"))
	sugar = base.Sugar()
}

func newLogger(path string) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	cfg.OutputPaths = []string{"stderr"}
	if path != "" {
		cfg.OutputPaths = []string{path}
	}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	l, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("fundtrail")
}

// Logger returns the structured logger. Callers that log per-request fields
// (the HTTP server) use this directly.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Log writes a printf-style debug message if debug logging is enabled.
func Log(format string, args ...any) {
	if !Enabled() {
		return
	}
	mu.RLock()
	s := sugar
	mu.RUnlock()
	s.Debugf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !Enabled() {
		return
	}
	Logger().Debug("timing", zap.String("op", name), zap.Duration("took", d))
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("loadGraph")()
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	Log("-> %s", name)
	start := time.Now()
	return func() {
		Log("<- %s (%v)", name, time.Since(start))
	}
}

// Section logs a section header for visual organization in debug output.
func Section(name string) {
	Log("=== %s ===", name)
}

// Sync flushes buffered log entries. Call before exit.
func Sync() {
	_ = Logger().Sync()
}
