package commands

import (
	"context"
	"maps"
	"strings"

	"github.com/samber/mo"

	"latchbot/clients"
	"latchbot/models"
)

// CommandContext is handed to a single handler invocation. It binds the decoded
// payload to the API client so handlers can answer without extra plumbing.
type CommandContext struct {
	payload *models.CommandPayload
	client  clients.LatchClient
}

func newCommandContext(payload *models.CommandPayload, client clients.LatchClient) *CommandContext {
	return &CommandContext{payload: payload, client: client}
}

func (c *CommandContext) Payload() *models.CommandPayload {
	return c.payload
}

// Client exposes the API client for calls beyond the reply helpers
func (c *CommandContext) Client() clients.LatchClient {
	return c.client
}

// Command is the command name as the user typed it, without the slash
func (c *CommandContext) Command() string {
	return c.payload.Command
}

func (c *CommandContext) Text() string {
	return c.payload.Text
}

// Args splits the command text on whitespace
func (c *CommandContext) Args() []string {
	return strings.Fields(c.payload.Text)
}

func (c *CommandContext) ConversationID() int64 {
	return c.payload.ConversationID
}

func (c *CommandContext) UserID() int64 {
	return c.payload.UserID
}

// UserName returns the invoker's display name or "" when the backend did not send one
func (c *CommandContext) UserName() string {
	return c.payload.UserName.OrEmpty()
}

func (c *CommandContext) WorkspaceID() int64 {
	return c.payload.WorkspaceID
}

// Config returns a copy of the values the workspace admin configured for this bot
func (c *CommandContext) Config() map[string]any {
	return maps.Clone(c.payload.Config)
}

func (c *CommandContext) ConfigValue(key string) mo.Option[any] {
	value, ok := c.payload.Config[key]
	if !ok || value == nil {
		return mo.None[any]()
	}
	return mo.Some(value)
}

// ConfigString returns a string config value, or fallback when it is missing or not a string
func (c *CommandContext) ConfigString(key, fallback string) string {
	value, ok := c.ConfigValue(key).Get()
	if !ok {
		return fallback
	}
	s, ok := value.(string)
	if !ok {
		return fallback
	}
	return s
}

// Reply posts text to the conversation the command was invoked in
func (c *CommandContext) Reply(ctx context.Context, text string) error {
	_, err := c.client.SendMessage(ctx, c.payload.ConversationID, text)
	return err
}

// ReplyInThread posts text as a threaded reply under threadID
func (c *CommandContext) ReplyInThread(ctx context.Context, threadID int64, text string) error {
	_, err := c.client.SendThreadedReply(ctx, c.payload.ConversationID, threadID, text)
	return err
}

// ReplyEphemeral builds a response only the invoker sees. It has no effect unless
// the handler returns it.
func (c *CommandContext) ReplyEphemeral(text string) models.EphemeralResponse {
	return models.NewEphemeralResponse(text)
}
