package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"latchbot/clients"
	"latchbot/clients/latch"
	"latchbot/models"
)

func TestBroadcast(t *testing.T) {
	client := latch.NewMockLatchClient()
	for _, id := range []int64{1, 2, 4} {
		client.On("SendMessage", mock.Anything, id, "deploy finished", clients.MessageOptions{}).
			Return(&models.Message{ID: id * 10, ConversationID: id}, nil).Once()
	}
	client.On("SendMessage", mock.Anything, int64(3), "deploy finished", clients.MessageOptions{}).
		Return(nil, errors.New("[404] Conversation not found")).Once()

	results := broadcast(context.Background(), client, []int64{1, 2, 3, 4}, "deploy finished", 2)

	require.Len(t, results, 4)
	for i, id := range []int64{1, 2, 3, 4} {
		assert.Equal(t, id, results[i].ConversationID)
	}
	assert.Equal(t, int64(10), results[0].Message.ID)
	assert.Equal(t, int64(40), results[3].Message.ID)
	assert.EqualError(t, results[2].Err, "[404] Conversation not found")
	assert.Nil(t, results[2].Message)
	client.AssertExpectations(t)
}

func TestBroadcast_ThreadAndMinimumConcurrency(t *testing.T) {
	client := latch.NewMockLatchClient()
	client.On("SendMessage", mock.Anything, int64(9), "ack", clients.MessageOptions{ThreadID: mo.Some(int64(55))}).
		Return(&models.Message{ID: 1}, nil).Once()

	results := broadcast(context.Background(), client, []int64{9}, "ack", 0, clients.WithThreadID(55))

	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	client.AssertExpectations(t)
}

func TestOptions_Parse(t *testing.T) {
	var opts Options
	parser := flags.NewParser(&opts, flags.None)

	_, err := parser.ParseArgs([]string{
		"--token", "bot_abc",
		"-c", "1", "-c", "2",
		"--thread", "7",
		"--timeout", "5s",
		"hello", "team",
	})
	require.NoError(t, err)

	assert.Equal(t, "bot_abc", opts.Token)
	assert.Equal(t, []int64{1, 2}, opts.ConversationIDs)
	assert.Equal(t, int64(7), opts.ThreadID)
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, 4, opts.Concurrency)
	assert.Equal(t, "http://localhost", opts.BaseURL)
	assert.Equal(t, []string{"hello", "team"}, opts.Args.Text)
}

func TestOptions_MissingConversation(t *testing.T) {
	var opts Options
	parser := flags.NewParser(&opts, flags.None)

	_, err := parser.ParseArgs([]string{"--token", "bot_abc", "hello"})
	assert.Error(t, err)
}

func TestRun_RejectsBadToken(t *testing.T) {
	opts := Options{Token: "xoxb-123", BaseURL: "http://localhost", Timeout: time.Second, MaxRetries: 3, ConversationIDs: []int64{1}}
	opts.Args.Text = []string{"hi"}

	err := run(opts)
	assert.ErrorContains(t, err, "Token should start with 'bot_'")
}
