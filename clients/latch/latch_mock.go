package latch

import (
	"context"

	"github.com/stretchr/testify/mock"

	"latchbot/clients"
	"latchbot/models"
)

// MockLatchClient is a mock implementation of clients.LatchClient
type MockLatchClient struct {
	mock.Mock
}

var _ clients.LatchClient = (*MockLatchClient)(nil)

// NewMockLatchClient creates a new mock client for testing
func NewMockLatchClient() *MockLatchClient {
	return &MockLatchClient{}
}

// SendMessage mocks posting a message. Options are resolved so expectations can match on them.
func (m *MockLatchClient) SendMessage(
	ctx context.Context,
	conversationID int64,
	text string,
	opts ...clients.MessageOption,
) (*models.Message, error) {
	args := m.Called(ctx, conversationID, text, clients.ApplyMessageOptions(opts...))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockLatchClient) SendThreadedReply(
	ctx context.Context,
	conversationID, threadID int64,
	text string,
) (*models.Message, error) {
	args := m.Called(ctx, conversationID, threadID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockLatchClient) GetConversation(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

// WithSendMessageResponse makes every SendMessage call succeed with msg
func (m *MockLatchClient) WithSendMessageResponse(msg *models.Message) *MockLatchClient {
	m.On("SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(msg, nil)
	return m
}

// WithSendMessageError makes every SendMessage call fail with err
func (m *MockLatchClient) WithSendMessageError(err error) *MockLatchClient {
	m.On("SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, err)
	return m
}
