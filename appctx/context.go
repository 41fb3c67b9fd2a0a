package appctx

import (
	"context"

	"latchbot/models"
)

type contextKey string

const (
	RequestIDContextKey      contextKey = "request_id"
	CommandPayloadContextKey contextKey = "command_payload"
)

// SetRequestID stores the id of the inbound request so outbound API calls can reuse it
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDContextKey, requestID)
}

// GetRequestID extracts the request id from the context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(RequestIDContextKey).(string)
	return requestID, ok && requestID != ""
}

// SetCommandPayload adds the slash command being handled to the context
func SetCommandPayload(ctx context.Context, payload *models.CommandPayload) context.Context {
	return context.WithValue(ctx, CommandPayloadContextKey, payload)
}

// GetCommandPayload extracts the slash command being handled from the context
func GetCommandPayload(ctx context.Context) (*models.CommandPayload, bool) {
	payload, ok := ctx.Value(CommandPayloadContextKey).(*models.CommandPayload)
	return payload, ok && payload != nil
}
