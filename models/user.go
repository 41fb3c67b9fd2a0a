package models

import (
	"encoding/json"

	"github.com/samber/mo"
)

// User is a Latch account as embedded in messages, reactions and conversation members
type User struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Email     mo.Option[string] `json:"email"`
	AvatarURL mo.Option[string] `json:"avatar_url"`
}

type userWire struct {
	ID        *int64  `json:"id"`
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	var w userWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := requireFields("user",
		requiredField{"id", w.ID != nil},
		requiredField{"name", w.Name != nil},
	); err != nil {
		return err
	}

	*u = User{
		ID:        *w.ID,
		Name:      *w.Name,
		Email:     optionOf(w.Email),
		AvatarURL: optionOf(w.AvatarURL),
	}
	return nil
}

// ConversationMember links a user to a conversation
type ConversationMember struct {
	ID             int64            `json:"id"`
	ConversationID mo.Option[int64] `json:"conversation_id"`
	User           *User            `json:"user"`
}

type conversationMemberWire struct {
	ID             *int64 `json:"id"`
	ConversationID *int64 `json:"conversation_id"`
	User           *User  `json:"user"`
}

func (m *ConversationMember) UnmarshalJSON(data []byte) error {
	var w conversationMemberWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := requireFields("conversation member", requiredField{"id", w.ID != nil}); err != nil {
		return err
	}

	*m = ConversationMember{
		ID:             *w.ID,
		ConversationID: optionOf(w.ConversationID),
		User:           w.User,
	}
	return nil
}

// Attachment is a file uploaded alongside a message
type Attachment struct {
	ID       int64             `json:"id"`
	Filename string            `json:"filename"`
	MimeType string            `json:"mime_type"`
	Size     int64             `json:"size"`
	URL      mo.Option[string] `json:"url"`
}

type attachmentWire struct {
	ID       *int64  `json:"id"`
	Filename *string `json:"filename"`
	MimeType *string `json:"mime_type"`
	Size     *int64  `json:"size"`
	URL      *string `json:"url"`
}

func (a *Attachment) UnmarshalJSON(data []byte) error {
	var w attachmentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := requireFields("attachment",
		requiredField{"id", w.ID != nil},
		requiredField{"filename", w.Filename != nil},
		requiredField{"mime_type", w.MimeType != nil},
		requiredField{"size", w.Size != nil},
	); err != nil {
		return err
	}

	*a = Attachment{
		ID:       *w.ID,
		Filename: *w.Filename,
		MimeType: *w.MimeType,
		Size:     *w.Size,
		URL:      optionOf(w.URL),
	}
	return nil
}

// Reaction is an emoji reaction left by a user on a message
type Reaction struct {
	ID     int64  `json:"id"`
	Emoji  string `json:"emoji"`
	UserID int64  `json:"user_id"`
	User   *User  `json:"user"`
}

type reactionWire struct {
	ID     *int64  `json:"id"`
	Emoji  *string `json:"emoji"`
	UserID *int64  `json:"user_id"`
	User   *User   `json:"user"`
}

func (r *Reaction) UnmarshalJSON(data []byte) error {
	var w reactionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := requireFields("reaction",
		requiredField{"id", w.ID != nil},
		requiredField{"emoji", w.Emoji != nil},
		requiredField{"user_id", w.UserID != nil},
	); err != nil {
		return err
	}

	*r = Reaction{
		ID:     *w.ID,
		Emoji:  *w.Emoji,
		UserID: *w.UserID,
		User:   w.User,
	}
	return nil
}
