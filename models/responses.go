package models

import (
	"encoding/json"

	"github.com/samber/mo"
)

const EphemeralResponseType = "ephemeral"

// AckResponse acknowledges a webhook without any visible output
type AckResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is returned to the backend when a webhook could not be handled
type ErrorResponse struct {
	Error string `json:"error"`
}

// EphemeralResponse is shown only to the user who invoked the command
type EphemeralResponse struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewAckResponse() AckResponse {
	return AckResponse{OK: true}
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

func NewEphemeralResponse(text string) EphemeralResponse {
	return EphemeralResponse{Type: EphemeralResponseType, Text: text}
}

// SendMessageRequest is the body of POST /api/bot/messages
type SendMessageRequest struct {
	ConversationID int64
	Text           string
	ThreadID       mo.Option[int64]
}

type sendMessageRequestWire struct {
	ConversationID int64  `json:"conversation_id"`
	Text           string `json:"text"`
	ThreadID       *int64 `json:"thread_id,omitempty"`
}

func (r SendMessageRequest) MarshalJSON() ([]byte, error) {
	w := sendMessageRequestWire{
		ConversationID: r.ConversationID,
		Text:           r.Text,
	}
	if threadID, ok := r.ThreadID.Get(); ok {
		w.ThreadID = &threadID
	}
	return json.Marshal(w)
}

// MessageEnvelope wraps the message returned by POST /api/bot/messages
type MessageEnvelope struct {
	Success bool     `json:"success"`
	Message *Message `json:"message"`
}

// ConversationEnvelope wraps the conversation returned by GET /api/bot/conversations/{id}
type ConversationEnvelope struct {
	Conversation *Conversation `json:"conversation"`
}
