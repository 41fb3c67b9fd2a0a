package middleware

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/http"
	"sync"
	"time"

	"latchbot/clients"
	"latchbot/core/log"
	"latchbot/models"
	"latchbot/services/commands"
)

const alertSendTimeout = 10 * time.Second

type AlertConfig struct {
	// ConversationID receives alert messages; 0 disables alerting
	ConversationID int64
	Environment    string
	AppName        string
}

// ErrorAlertMiddleware recovers panics in HTTP handlers and posts failures into a Latch conversation.
// It doubles as the command router's DispatchObserver so failing handlers raise alerts too.
type ErrorAlertMiddleware struct {
	commands.LogObserver

	client        clients.LatchClient
	config        AlertConfig
	alertedErrors map[string]time.Time // hash -> last alert time
	mutex         sync.Mutex
	alertCooldown time.Duration
	now           func() time.Time
	inflight      sync.WaitGroup
}

var _ commands.DispatchObserver = (*ErrorAlertMiddleware)(nil)

func NewErrorAlertMiddleware(client clients.LatchClient, config AlertConfig) *ErrorAlertMiddleware {
	return &ErrorAlertMiddleware{
		client:        client,
		config:        config,
		alertedErrors: make(map[string]time.Time),
		alertCooldown: 10 * time.Minute,
		now:           time.Now,
	}
}

// HTTPMiddleware wraps HTTP handlers
func (m *ErrorAlertMiddleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				alertContext := fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
				log.Error("❌ Panic in HTTP handler", "context", alertContext, "panic", rec)
				m.alertOnError(r.Context(), fmt.Errorf("PANIC - %v", rec), alertContext)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal server error"}` + "\n"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// HandlerFailed logs the failure and raises an alert
func (m *ErrorAlertMiddleware) HandlerFailed(ctx context.Context, payload *models.CommandPayload, err error) {
	m.LogObserver.HandlerFailed(ctx, payload, err)
	m.alertOnError(ctx, err, fmt.Sprintf("/%s in conversation %d", payload.Command, payload.ConversationID))
}

// Wait blocks until alerts that are being sent have finished
func (m *ErrorAlertMiddleware) Wait() {
	m.inflight.Wait()
}

func (m *ErrorAlertMiddleware) alertOnError(ctx context.Context, err error, alertContext string) {
	if m.config.ConversationID == 0 {
		return
	}

	errorMsg := fmt.Sprintf("%s: %v", alertContext, err)
	hash := fmt.Sprintf("%x", md5.Sum([]byte(errorMsg)))

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if lastAlert, exists := m.alertedErrors[hash]; exists && m.now().Sub(lastAlert) < m.alertCooldown {
		return
	}
	m.alertedErrors[hash] = m.now()

	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		m.sendAlert(context.WithoutCancel(ctx), errorMsg, alertContext)
	}()
}

func (m *ErrorAlertMiddleware) sendAlert(ctx context.Context, errorMsg, alertContext string) {
	ctx, cancel := context.WithTimeout(ctx, alertSendTimeout)
	defer cancel()

	if _, err := m.client.SendMessage(ctx, m.config.ConversationID, m.formatAlert(errorMsg, alertContext)); err != nil {
		log.Error("❌ Failed to send error alert", "conversation_id", m.config.ConversationID, "error", err)
	}
}

func (m *ErrorAlertMiddleware) formatAlert(errorMsg, alertContext string) string {
	envPrefix := ""
	if m.config.Environment == "dev" {
		envPrefix = "[dev] "
	}

	return fmt.Sprintf(
		"🚨 **%s[%s] Error Alert**\n\n**Environment:** %s\n**Context:** %s\n\n```\n%s\n```",
		envPrefix, m.config.AppName, m.config.Environment, alertContext, errorMsg,
	)
}
