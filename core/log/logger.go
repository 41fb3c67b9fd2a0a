package log

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var (
	logger atomic.Pointer[slog.Logger]
	level  slog.LevelVar
)

func init() {
	logger.Store(newLogger(os.Stdout))
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: &level,
	}))
}

// Logger returns the process-wide logger
func Logger() *slog.Logger {
	return logger.Load()
}

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// SetLevel changes the minimum level while keeping the current output
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetOutput redirects logging to w, mostly useful in tests
func SetOutput(w io.Writer, l slog.Level) {
	level.Set(l)
	logger.Store(newLogger(w))
}
