package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/samber/mo"
)

// CommandPayload is the body of a slash command webhook sent by the Latch backend
type CommandPayload struct {
	Command        string            `json:"command"`
	Text           string            `json:"text"`
	ConversationID int64             `json:"conversation_id"`
	UserID         int64             `json:"user_id"`
	UserName       mo.Option[string] `json:"user_name"`
	WorkspaceID    int64             `json:"workspace_id"`
	Config         map[string]any    `json:"config"`

	// Type is the event type the backend tags webhooks with, usually "slash_command"
	Type      mo.Option[string]    `json:"type"`
	Timestamp mo.Option[time.Time] `json:"timestamp"`
}

type commandPayloadWire struct {
	Command        *string         `json:"command"`
	Text           *string         `json:"text"`
	Args           *string         `json:"args"`
	ConversationID *int64          `json:"conversation_id"`
	UserID         *int64          `json:"user_id"`
	UserName       *string         `json:"user_name"`
	WorkspaceID    *int64          `json:"workspace_id"`
	Config         *map[string]any `json:"config"`
	Type           *string         `json:"type"`
	Timestamp      json.RawMessage `json:"timestamp"`
}

func (p *CommandPayload) UnmarshalJSON(data []byte) error {
	var w commandPayloadWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := requireFields("command payload",
		requiredField{"command", w.Command != nil && strings.TrimSpace(*w.Command) != ""},
		requiredField{"conversation_id", w.ConversationID != nil},
		requiredField{"user_id", w.UserID != nil},
		requiredField{"workspace_id", w.WorkspaceID != nil},
	); err != nil {
		return err
	}

	// The backend forwards command arguments as "args"; SDK callers send "text"
	text := w.Text
	if text == nil {
		text = w.Args
	}

	config := map[string]any{}
	if w.Config != nil && *w.Config != nil {
		config = *w.Config
	}

	*p = CommandPayload{
		Command:        *w.Command,
		Text:           valueOr(text, ""),
		ConversationID: *w.ConversationID,
		UserID:         *w.UserID,
		UserName:       optionOf(w.UserName),
		WorkspaceID:    *w.WorkspaceID,
		Config:         config,
		Type:           optionOf(w.Type),
		Timestamp:      parseTimestamp(w.Timestamp),
	}
	return nil
}

// ParseCommandPayload decodes a raw webhook body
func ParseCommandPayload(raw []byte) (*CommandPayload, error) {
	var payload CommandPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
