package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"latchbot/appctx"
	"latchbot/clients/latch"
	"latchbot/core"
	"latchbot/services/commands"
)

const pingBody = `{"command": "ping", "conversation_id": 1, "user_id": 2, "workspace_id": 3}`

func setupTestRouter(t *testing.T, webhookKey string) (*mux.Router, *commands.Router) {
	t.Helper()

	commandRouter := commands.NewRouter(latch.NewMockLatchClient())
	commandRouter.Register("ping", func(_ context.Context, cmd *commands.CommandContext) (any, error) {
		return cmd.ReplyEphemeral("Pong!"), nil
	})

	router := mux.NewRouter()
	NewWebhookHandler(commandRouter, webhookKey).SetupEndpoints(router, "/latch/webhook")
	return router, commandRouter
}

func serve(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandler_HandleCommand(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "ephemeral reply", body: pingBody, expected: `{"type": "ephemeral", "text": "Pong!"}`},
		{name: "case insensitive", body: strings.Replace(pingBody, `"ping"`, `"PING"`, 1), expected: `{"type": "ephemeral", "text": "Pong!"}`},
		{name: "unknown command", body: strings.Replace(pingBody, `"ping"`, `"weather"`, 1), expected: `{"ok": true}`},
		{name: "invalid payload", body: `{}`, expected: `{"error": "Invalid payload"}`},
		{name: "malformed json", body: `{"command":`, expected: `{"error": "Invalid payload"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := setupTestRouter(t, "")

			rec := serve(router, http.MethodPost, "/latch/webhook", tc.body, nil)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expected, rec.Body.String())
		})
	}
}

func TestWebhookHandler_HandlerError(t *testing.T) {
	router, commandRouter := setupTestRouter(t, "")
	commandRouter.Register("boom", func(context.Context, *commands.CommandContext) (any, error) {
		panic("kaboom")
	})

	rec := serve(router, http.MethodPost, "/latch/webhook", strings.Replace(pingBody, `"ping"`, `"boom"`, 1), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"error": "kaboom"}`, rec.Body.String())
}

func TestWebhookHandler_WebhookKey(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		statusCode int
	}{
		{name: "missing key", headers: nil, statusCode: http.StatusUnauthorized},
		{name: "wrong key", headers: map[string]string{WebhookKeyHeader: "nope"}, statusCode: http.StatusUnauthorized},
		{name: "correct key", headers: map[string]string{WebhookKeyHeader: "s3cret"}, statusCode: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := setupTestRouter(t, "s3cret")

			rec := serve(router, http.MethodPost, "/latch/webhook", pingBody, tc.headers)
			assert.Equal(t, tc.statusCode, rec.Code)
			if tc.statusCode == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error": "unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func TestWebhookHandler_RequestID(t *testing.T) {
	t.Run("minted when absent", func(t *testing.T) {
		router, _ := setupTestRouter(t, "")
		rec := serve(router, http.MethodPost, "/latch/webhook", pingBody, nil)

		requestID := rec.Header().Get(RequestIDHeader)
		assert.True(t, strings.HasPrefix(requestID, "wh_"))
		assert.True(t, core.IsValidID(requestID))
	})

	t.Run("inbound id is reused and reaches handlers", func(t *testing.T) {
		router, commandRouter := setupTestRouter(t, "")

		var seen string
		commandRouter.Register("ping", func(ctx context.Context, _ *commands.CommandContext) (any, error) {
			seen, _ = appctx.GetRequestID(ctx)
			return nil, nil
		})

		rec := serve(router, http.MethodPost, "/latch/webhook", pingBody, map[string]string{RequestIDHeader: "backend-42"})
		assert.Equal(t, "backend-42", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "backend-42", seen)
	})
}

func TestWebhookHandler_BodyTooLarge(t *testing.T) {
	router, _ := setupTestRouter(t, "")

	rec := serve(router, http.MethodPost, "/latch/webhook", strings.Repeat("a", maxWebhookBodyBytes+1), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookHandler_MethodNotAllowed(t *testing.T) {
	router, _ := setupTestRouter(t, "")

	rec := serve(router, http.MethodGet, "/latch/webhook", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWebhookHandler_Health(t *testing.T) {
	router, _ := setupTestRouter(t, "")

	rec := serve(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

type staticDispatcher struct {
	mock.Mock
}

func (d *staticDispatcher) Handle(ctx context.Context, raw []byte) any {
	args := d.Called(ctx, raw)
	return args.Get(0)
}

func TestWebhookHandler_UnencodableResult(t *testing.T) {
	dispatcher := &staticDispatcher{}
	dispatcher.On("Handle", mock.Anything, []byte(pingBody)).Return(map[string]any{"bad": make(chan int)})

	router := mux.NewRouter()
	NewWebhookHandler(dispatcher, "").SetupEndpoints(router, "/hooks/latch")

	rec := serve(router, http.MethodPost, "/hooks/latch", pingBody, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "failed to encode response"}`, rec.Body.String())
	dispatcher.AssertExpectations(t)
}
