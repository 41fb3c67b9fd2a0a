package models

import (
	"encoding/json"
	"fmt"

	"github.com/samber/mo"

	"latchbot/core"
)

// ConversationType discriminates channels from direct messages
type ConversationType string

const (
	ConversationTypePublicChannel  ConversationType = "public_channel"
	ConversationTypePrivateChannel ConversationType = "private_channel"
	ConversationTypeDM             ConversationType = "dm"
	ConversationTypeGroupDM        ConversationType = "group_dm"
	ConversationTypeBotDM          ConversationType = "bot_dm"
)

// IsKnown reports whether t is one of the conversation types this package understands.
// Unknown values survive decoding so newer servers do not break older bots.
func (t ConversationType) IsKnown() bool {
	switch t {
	case ConversationTypePublicChannel,
		ConversationTypePrivateChannel,
		ConversationTypeDM,
		ConversationTypeGroupDM,
		ConversationTypeBotDM:
		return true
	}
	return false
}

func (t ConversationType) IsChannel() bool {
	return t == ConversationTypePublicChannel || t == ConversationTypePrivateChannel
}

func (t ConversationType) IsDM() bool {
	return t == ConversationTypeDM || t == ConversationTypeGroupDM || t == ConversationTypeBotDM
}

// Conversation is a channel or direct message thread inside a workspace
type Conversation struct {
	ID          int64                `json:"id"`
	WorkspaceID int64                `json:"workspace_id"`
	Name        mo.Option[string]    `json:"name"`
	Description mo.Option[string]    `json:"description"`
	Type        ConversationType     `json:"type"`
	IsArchived  bool                 `json:"is_archived"`
	CreatedBy   mo.Option[int64]     `json:"created_by"`
	Members     []ConversationMember `json:"members"`
}

type conversationWire struct {
	ID          *int64               `json:"id"`
	WorkspaceID *int64               `json:"workspace_id"`
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Type        *string              `json:"type"`
	IsArchived  *bool                `json:"is_archived"`
	CreatedBy   *int64               `json:"created_by"`
	Members     []ConversationMember `json:"members"`
}

func (c *Conversation) UnmarshalJSON(data []byte) error {
	var w conversationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := requireFields("conversation",
		requiredField{"id", w.ID != nil},
		requiredField{"workspace_id", w.WorkspaceID != nil},
		requiredField{"type", w.Type != nil},
	); err != nil {
		return err
	}

	members := w.Members
	if members == nil {
		members = []ConversationMember{}
	}

	*c = Conversation{
		ID:          *w.ID,
		WorkspaceID: *w.WorkspaceID,
		Name:        optionOf(w.Name),
		Description: optionOf(w.Description),
		Type:        ConversationType(*w.Type),
		IsArchived:  valueOr(w.IsArchived, false),
		CreatedBy:   optionOf(w.CreatedBy),
		Members:     members,
	}
	return nil
}

func (c *Conversation) IsChannel() bool {
	return c.Type.IsChannel()
}

// IsDM covers one-to-one, group and bot direct messages
func (c *Conversation) IsDM() bool {
	return c.Type.IsDM()
}

func (c *Conversation) IsPublic() bool {
	return c.Type == ConversationTypePublicChannel
}

// ValidateType returns an error wrapping core.ErrUnknownConversationType when the
// server sent a type discriminant this package does not recognise
func (c *Conversation) ValidateType() error {
	if c.Type.IsKnown() {
		return nil
	}
	return fmt.Errorf("conversation %d has type %q: %w", c.ID, string(c.Type), core.ErrUnknownConversationType)
}
