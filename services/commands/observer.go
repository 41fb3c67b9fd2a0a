package commands

import (
	"context"
	"errors"
	"time"

	"latchbot/appctx"
	"latchbot/core/log"
	"latchbot/models"
)

// DispatchObserver is notified about every outcome of Router.Dispatch
type DispatchObserver interface {
	InvalidPayload(ctx context.Context, err error)
	Unroutable(ctx context.Context, payload *models.CommandPayload)
	HandlerFailed(ctx context.Context, payload *models.CommandPayload, err error)
	Handled(ctx context.Context, payload *models.CommandPayload, elapsed time.Duration)
}

// LogObserver reports dispatch outcomes through core/log
type LogObserver struct{}

func (LogObserver) InvalidPayload(ctx context.Context, err error) {
	log.Error("❌ Invalid command payload", "error", err, "request_id", requestID(ctx))
}

func (LogObserver) Unroutable(ctx context.Context, payload *models.CommandPayload) {
	log.Warn("⚠️ No handler for command",
		"command", payload.Command,
		"conversation_id", payload.ConversationID,
		"request_id", requestID(ctx),
	)
}

func (LogObserver) HandlerFailed(ctx context.Context, payload *models.CommandPayload, err error) {
	args := []any{
		"command", payload.Command,
		"conversation_id", payload.ConversationID,
		"user_id", payload.UserID,
		"error", err,
		"request_id", requestID(ctx),
	}

	var panicErr *HandlerPanicError
	if errors.As(err, &panicErr) {
		args = append(args, "stack", string(panicErr.Stack))
		log.Error("❌ Command handler panicked", args...)
		return
	}
	log.Error("❌ Command handler failed", args...)
}

func (LogObserver) Handled(ctx context.Context, payload *models.CommandPayload, elapsed time.Duration) {
	log.Info("✅ Handled command",
		"command", payload.Command,
		"conversation_id", payload.ConversationID,
		"elapsed", elapsed,
		"request_id", requestID(ctx),
	)
}

func requestID(ctx context.Context) string {
	id, _ := appctx.GetRequestID(ctx)
	return id
}
