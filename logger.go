package fractal

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

var (
	hooksMu sync.RWMutex
	hooks   []func(*slog.Logger)
)

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for fractal and all its sub-packages.
// By default, fractal produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by fractal:
//   - [slog.LevelDebug]: per-frame diagnostics (dispatch sizes, bind groups)
//   - [slog.LevelInfo]: lifecycle events (adapter selected, zoom, resize)
//   - [slog.LevelWarn]: recoverable conditions (zoom limit, failed resize, missed frame)
//   - [slog.LevelError]: device loss
//
// Example:
//
//	fractal.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	hooksMu.RLock()
	defer hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(l)
	}
}

// Logger returns the current logger used by fractal.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// OnLoggerChange registers fn to receive the logger on every SetLogger call.
// Packages that keep their own logger (internal/gpu) use it to stay in sync
// without importing each other. fn is called once immediately with the
// current logger.
func OnLoggerChange(fn func(*slog.Logger)) {
	if fn == nil {
		return
	}
	hooksMu.Lock()
	hooks = append(hooks, fn)
	hooksMu.Unlock()
	fn(Logger())
}
