package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"latchbot/clients"
	"latchbot/clients/latch"
	"latchbot/models"
	"latchbot/services/commands"
)

func newTestMiddleware(conversationID int64) (*ErrorAlertMiddleware, *latch.MockLatchClient) {
	client := latch.NewMockLatchClient()
	m := NewErrorAlertMiddleware(client, AlertConfig{
		ConversationID: conversationID,
		Environment:    "dev",
		AppName:        "weatherbot",
	})
	return m, client
}

func TestHTTPMiddleware_RecoversPanic(t *testing.T) {
	m, client := newTestMiddleware(77)
	client.On("SendMessage", mock.Anything, int64(77), mock.MatchedBy(func(text string) bool {
		return containsAll(text, "[dev] [weatherbot] Error Alert", "HTTP POST /latch/webhook", "PANIC - database on fire")
	}), clients.MessageOptions{}).Return(&models.Message{ID: 1}, nil).Once()

	handler := m.HTTPMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("database on fire")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/latch/webhook", nil))
	})
	m.Wait()

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "internal server error"}`, rec.Body.String())
	client.AssertExpectations(t)
}

func TestHTTPMiddleware_PassesThrough(t *testing.T) {
	m, client := newTestMiddleware(77)

	handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	m.Wait()

	assert.Equal(t, http.StatusTeapot, rec.Code)
	client.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlerFailed_DeduplicatesAlerts(t *testing.T) {
	m, client := newTestMiddleware(77)
	client.WithSendMessageResponse(&models.Message{ID: 1})

	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	payload := &models.CommandPayload{Command: "weather", ConversationID: 5}
	failure := errors.New("upstream timeout")

	m.HandlerFailed(context.Background(), payload, failure)
	m.HandlerFailed(context.Background(), payload, failure)
	m.Wait()
	client.AssertNumberOfCalls(t, "SendMessage", 1)

	m.HandlerFailed(context.Background(), payload, errors.New("different failure"))
	m.Wait()
	client.AssertNumberOfCalls(t, "SendMessage", 2)

	current = current.Add(11 * time.Minute)
	m.HandlerFailed(context.Background(), payload, failure)
	m.Wait()
	client.AssertNumberOfCalls(t, "SendMessage", 3)
}

func TestHandlerFailed_DisabledWithoutConversation(t *testing.T) {
	m, client := newTestMiddleware(0)

	m.HandlerFailed(context.Background(), &models.CommandPayload{Command: "weather"}, errors.New("boom"))
	m.Wait()

	client.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlerFailed_SendFailureIsSwallowed(t *testing.T) {
	m, client := newTestMiddleware(77)
	client.WithSendMessageError(errors.New("[403] Access denied: not a member"))

	require.NotPanics(t, func() {
		m.HandlerFailed(context.Background(), &models.CommandPayload{Command: "weather"}, errors.New("boom"))
		m.Wait()
	})
	client.AssertNumberOfCalls(t, "SendMessage", 1)
}

func TestErrorAlertMiddleware_AsRouterObserver(t *testing.T) {
	m, client := newTestMiddleware(77)
	client.WithSendMessageResponse(&models.Message{ID: 1})

	router := commands.NewRouter(client, commands.WithObserver(m))
	router.Register("weather", func(context.Context, *commands.CommandContext) (any, error) {
		return nil, errors.New("no forecast")
	})

	result := router.Handle(context.Background(), []byte(`{"command": "weather", "conversation_id": 5, "user_id": 2, "workspace_id": 3}`))
	m.Wait()

	assert.Equal(t, models.ErrorResponse{Error: "no forecast"}, result)
	client.AssertCalled(t, "SendMessage", mock.Anything, int64(77), mock.Anything, clients.MessageOptions{})
}

func containsAll(text string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(text, part) {
			return false
		}
	}
	return true
}
