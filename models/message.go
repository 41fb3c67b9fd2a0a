package models

import (
	"encoding/json"
	"time"

	"github.com/samber/mo"
)

// Message is a chat message as returned by the Latch API.
// Values are only produced by decoding a server response; an edit on the server yields a new Message.
type Message struct {
	ID              int64                `json:"id"`
	ConversationID  int64                `json:"conversation_id"`
	UserID          int64                `json:"user_id"`
	BodyMD          string               `json:"body_md"`
	BodyHTML        string               `json:"body_html"`
	ParentMessageID mo.Option[int64]     `json:"parent_message_id"`
	CreatedAt       mo.Option[time.Time] `json:"created_at"`
	UpdatedAt       mo.Option[time.Time] `json:"updated_at"`
	User            *User                `json:"user"`
	Reactions       []Reaction           `json:"reactions"`
	Attachments     []Attachment         `json:"attachments"`
}

type messageWire struct {
	ID              *int64          `json:"id"`
	ConversationID  *int64          `json:"conversation_id"`
	UserID          *int64          `json:"user_id"`
	BodyMD          *string         `json:"body_md"`
	BodyHTML        *string         `json:"body_html"`
	ParentMessageID *int64          `json:"parent_message_id"`
	CreatedAt       json.RawMessage `json:"created_at"`
	UpdatedAt       json.RawMessage `json:"updated_at"`
	User            *User           `json:"user"`
	Reactions       []Reaction      `json:"reactions"`
	Attachments     []Attachment    `json:"attachments"`
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var w messageWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := requireFields("message",
		requiredField{"id", w.ID != nil},
		requiredField{"conversation_id", w.ConversationID != nil},
		requiredField{"user_id", w.UserID != nil},
	); err != nil {
		return err
	}

	reactions := w.Reactions
	if reactions == nil {
		reactions = []Reaction{}
	}
	attachments := w.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}

	*m = Message{
		ID:              *w.ID,
		ConversationID:  *w.ConversationID,
		UserID:          *w.UserID,
		BodyMD:          valueOr(w.BodyMD, ""),
		BodyHTML:        valueOr(w.BodyHTML, ""),
		ParentMessageID: optionOf(w.ParentMessageID),
		CreatedAt:       parseTimestamp(w.CreatedAt),
		UpdatedAt:       parseTimestamp(w.UpdatedAt),
		User:            w.User,
		Reactions:       reactions,
		Attachments:     attachments,
	}
	return nil
}

// ThreadID is the parent message this message replies to, if it is a threaded reply
func (m *Message) ThreadID() mo.Option[int64] {
	return m.ParentMessageID
}

// IsThreadReply reports whether the message was posted inside a thread
func (m *Message) IsThreadReply() bool {
	return m.ParentMessageID.IsPresent()
}
