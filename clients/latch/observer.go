package latch

import (
	"context"
	"fmt"
	"time"

	"latchbot/core/log"
)

// RequestInfo identifies one attempt of an API call
type RequestInfo struct {
	Method    string
	Path      string
	RequestID string
	// Attempt starts at 1 and grows with every rate limit retry
	Attempt int
}

// RequestObserver receives diagnostics from the client. Implementations must be safe for concurrent use.
type RequestObserver interface {
	RequestStarted(ctx context.Context, info RequestInfo)
	ResponseReceived(ctx context.Context, info RequestInfo, statusCode int, elapsed time.Duration)
	RequestFailed(ctx context.Context, info RequestInfo, err error)
	RateLimited(ctx context.Context, info RequestInfo, retryAfter time.Duration, maxRetries int)
}

// LogObserver writes request diagnostics through core/log
type LogObserver struct{}

func (LogObserver) RequestStarted(_ context.Context, info RequestInfo) {
	log.Debug("📤 Latch API request",
		"method", info.Method,
		"path", info.Path,
		"request_id", info.RequestID,
		"attempt", info.Attempt,
	)
}

func (LogObserver) ResponseReceived(_ context.Context, info RequestInfo, statusCode int, elapsed time.Duration) {
	log.Debug("📥 Latch API response",
		"method", info.Method,
		"path", info.Path,
		"request_id", info.RequestID,
		"status", statusCode,
		"elapsed", elapsed,
	)
}

func (LogObserver) RequestFailed(_ context.Context, info RequestInfo, err error) {
	log.Error("❌ Latch API request failed",
		"method", info.Method,
		"path", info.Path,
		"request_id", info.RequestID,
		"error", err,
	)
}

func (LogObserver) RateLimited(_ context.Context, info RequestInfo, retryAfter time.Duration, maxRetries int) {
	log.Warn(fmt.Sprintf("⏳ Rate limited, retrying in %s (attempt %d/%d)", retryAfter, info.Attempt, maxRetries),
		"path", info.Path,
		"request_id", info.RequestID,
	)
}

// restyLogger routes resty's internal messages into core/log
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...any) {
	log.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (restyLogger) Warnf(format string, v ...any) {
	log.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (restyLogger) Debugf(format string, v ...any) {
	log.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
