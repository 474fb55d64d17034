package primer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"
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

// setMu keeps the primer and HAL loggers in step across concurrent
// SetLogger calls.
var setMu sync.Mutex

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for primer and all its sub-packages.
// By default, primer produces no log output. Call SetLogger to enable logging.
//
// The logger is also handed to the wgpu HAL so that backend messages
// (surface configuration, adapter probing) end up in the same stream.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by primer:
//   - [slog.LevelDebug]: pipeline and buffer creation, swapchain recreation
//   - [slog.LevelInfo]: adapter selection, window resize
//   - [slog.LevelWarn]: skipped frames, resource release errors
//
// Example:
//
//	primer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	setMu.Lock()
	defer setMu.Unlock()
	loggerPtr.Store(l)
	hal.SetLogger(l)
}

// Logger returns the current logger used by primer.
// Sub-packages (gfx, glyph, overlay, window) call this to share the same
// logger configuration.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
