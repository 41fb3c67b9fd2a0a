package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"latchbot/appctx"
	"latchbot/core"
	"latchbot/core/log"
	"latchbot/models"
)

const (
	RequestIDHeader  = "X-Request-ID"
	WebhookKeyHeader = "X-Webhook-Key"

	maxWebhookBodyBytes = 1 << 20
	maxRequestIDLength  = 128
)

// CommandDispatcher turns a raw webhook body into a response envelope.
// *commands.Router is the production implementation.
type CommandDispatcher interface {
	Handle(ctx context.Context, raw []byte) any
}

type WebhookHandler struct {
	dispatcher CommandDispatcher
	webhookKey string
}

// NewWebhookHandler creates the slash command endpoint. An empty webhookKey disables the key check.
func NewWebhookHandler(dispatcher CommandDispatcher, webhookKey string) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		webhookKey: webhookKey,
	}
}

func (h *WebhookHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	requestID := inboundRequestID(r)
	w.Header().Set(RequestIDHeader, requestID)
	ctx := appctx.SetRequestID(r.Context(), requestID)

	log.Debug("📨 Slash command webhook received", "remote_addr", r.RemoteAddr, "request_id", requestID)

	if !h.verifyWebhookKey(r) {
		log.Warn("❌ Webhook key verification failed", "remote_addr", r.RemoteAddr, "request_id", requestID)
		writeJSONResponse(w, http.StatusUnauthorized, models.NewErrorResponse("unauthorized"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		log.Error("❌ Failed to read request body", "error", err, "request_id", requestID)
		writeJSONResponse(w, http.StatusBadRequest, models.NewErrorResponse("failed to read body"))
		return
	}

	// The backend treats any 2xx as delivered, so every router envelope, errors included, goes out as 200
	writeJSONResponse(w, http.StatusOK, h.dispatcher.Handle(ctx, body))
}

func (h *WebhookHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *WebhookHandler) SetupEndpoints(router *mux.Router, webhookPath string) {
	log.Info("🚀 Registering Latch webhook endpoints")

	router.HandleFunc(webhookPath, h.HandleCommand).Methods(http.MethodPost)
	log.Info("✅ POST endpoint registered", "path", webhookPath)

	router.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
	log.Info("✅ GET /health endpoint registered")
}

func (h *WebhookHandler) verifyWebhookKey(r *http.Request) bool {
	if h.webhookKey == "" {
		return true
	}
	provided := r.Header.Get(WebhookKeyHeader)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.webhookKey)) == 1
}

func inboundRequestID(r *http.Request) string {
	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" || len(requestID) > maxRequestIDLength {
		return core.NewID("wh")
	}
	return requestID
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Error("❌ Failed to encode JSON response", "error", err)
		statusCode = http.StatusInternalServerError
		payload = []byte(`{"error":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(append(payload, '\n')); err != nil {
		log.Error("❌ Failed to write JSON response", "error", err)
	}
}
