package commands

import (
	"context"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"latchbot/clients/latch"
	"latchbot/models"
)

func newTestPayload() *models.CommandPayload {
	return &models.CommandPayload{
		Command:        "poll",
		Text:           "  vote   4  2 ",
		ConversationID: 10,
		UserID:         20,
		UserName:       mo.Some("ada"),
		WorkspaceID:    30,
		Config: map[string]any{
			"units":     "metric",
			"max_votes": float64(3),
			"footer":    nil,
		},
	}
}

func TestCommandContext_Accessors(t *testing.T) {
	cmd := newCommandContext(newTestPayload(), latch.NewMockLatchClient())

	assert.Equal(t, "poll", cmd.Command())
	assert.Equal(t, []string{"vote", "4", "2"}, cmd.Args())
	assert.Equal(t, int64(10), cmd.ConversationID())
	assert.Equal(t, int64(20), cmd.UserID())
	assert.Equal(t, "ada", cmd.UserName())
	assert.Equal(t, int64(30), cmd.WorkspaceID())
}

func TestCommandContext_EmptyText(t *testing.T) {
	payload := newTestPayload()
	payload.Text = ""
	payload.UserName = mo.None[string]()
	cmd := newCommandContext(payload, nil)

	assert.Empty(t, cmd.Args())
	assert.Equal(t, "", cmd.UserName())
}

func TestCommandContext_Config(t *testing.T) {
	cmd := newCommandContext(newTestPayload(), nil)

	t.Run("config value", func(t *testing.T) {
		value, ok := cmd.ConfigValue("max_votes").Get()
		require.True(t, ok)
		assert.Equal(t, float64(3), value)

		assert.True(t, cmd.ConfigValue("missing").IsAbsent())
		assert.True(t, cmd.ConfigValue("footer").IsAbsent())
	})

	t.Run("config string", func(t *testing.T) {
		assert.Equal(t, "metric", cmd.ConfigString("units", "imperial"))
		assert.Equal(t, "imperial", cmd.ConfigString("missing", "imperial"))
		assert.Equal(t, "n/a", cmd.ConfigString("max_votes", "n/a"))
	})

	t.Run("config copy does not leak mutations", func(t *testing.T) {
		config := cmd.Config()
		config["units"] = "kelvin"
		assert.Equal(t, "metric", cmd.ConfigString("units", ""))
	})
}

func TestCommandContext_Replies(t *testing.T) {
	ctx := context.Background()
	client := latch.NewMockLatchClient()
	client.On("SendThreadedReply", mock.Anything, int64(10), int64(99), "counted").
		Return(&models.Message{ID: 100}, nil).Once()

	cmd := newCommandContext(newTestPayload(), client)

	require.NoError(t, cmd.ReplyInThread(ctx, 99, "counted"))
	assert.Equal(t, models.EphemeralResponse{Type: "ephemeral", Text: "only you"}, cmd.ReplyEphemeral("only you"))
	assert.Same(t, client, cmd.Client())

	client.AssertExpectations(t)
	client.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
