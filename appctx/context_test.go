package appctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latchbot/models"
)

func TestRequestID(t *testing.T) {
	_, ok := GetRequestID(context.Background())
	assert.False(t, ok)

	_, ok = GetRequestID(SetRequestID(context.Background(), ""))
	assert.False(t, ok)

	ctx := SetRequestID(context.Background(), "req_01G0EZ1XTM37C5X11SQTDNCTM1")
	requestID, ok := GetRequestID(ctx)
	require.True(t, ok)
	assert.Equal(t, "req_01G0EZ1XTM37C5X11SQTDNCTM1", requestID)
}

func TestCommandPayload(t *testing.T) {
	_, ok := GetCommandPayload(context.Background())
	assert.False(t, ok)

	payload := &models.CommandPayload{Command: "ping", ConversationID: 1}
	got, ok := GetCommandPayload(SetCommandPayload(context.Background(), payload))
	require.True(t, ok)
	assert.Same(t, payload, got)
}
