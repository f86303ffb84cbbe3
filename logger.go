package ndmorph

import (
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

// Logger wraps slog.Logger with ndmorph-specific field helpers so that all
// operations log with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. If handler is nil, a
// default text handler to stderr at info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithDims adds the input dimensions field to the logger.
func (l *Logger) WithDims(dims []int) *Logger {
	return &Logger{Logger: l.Logger.With("dims", dims)}
}

// WithIterations adds an iteration-count field to the logger.
func (l *Logger) WithIterations(n int) *Logger {
	return &Logger{Logger: l.Logger.With("iterations", n)}
}

// WithMetric adds a distance-metric field to the logger.
func (l *Logger) WithMetric(name string) *Logger {
	return &Logger{Logger: l.Logger.With("metric", name)}
}

// LogOperation logs one completed (or failed) array operation.
func (l *Logger) LogOperation(op string, voxels int, duration time.Duration, err error) {
	if err != nil {
		l.Error("operation failed",
			"op", op,
			"voxels", voxels,
			"error", err,
		)
	} else {
		l.Debug("operation completed",
			"op", op,
			"voxels", voxels,
			"duration", duration,
		)
	}
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NoopLogger())
}

// SetLogger installs the package-level logger used by all operations.
// Passing nil restores the noop logger.
func SetLogger(l *Logger) {
	if l == nil {
		l = NoopLogger()
	}
	defaultLogger.Store(l)
}

func logger() *Logger { return defaultLogger.Load() }
