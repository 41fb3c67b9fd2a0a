package latch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"latchbot/appctx"
	"latchbot/clients"
	"latchbot/core"
	"latchbot/models"
)

const (
	messagesPath     = "/api/bot/messages"
	conversationPath = "/api/bot/conversations/%d"
)

// Client implements the clients.LatchClient interface on top of resty.
// A Client is safe for concurrent use; rate limit retries of one call never affect another.
type Client struct {
	resty      *resty.Client
	baseURL    string
	maxRetries int
	observer   RequestObserver
	sleep      Sleeper
}

var _ clients.LatchClient = (*Client)(nil)

// NewClient creates a Latch bot API client. The token must carry the bot_ prefix.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, core.NewConfigurationError("Token is required")
	}
	if !strings.HasPrefix(token, TokenPrefix) {
		return nil, core.NewConfigurationError(
			fmt.Sprintf("Invalid token format. Token should start with '%s'", TokenPrefix),
		)
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(s.baseURL), "/")
	if baseURL == "" {
		return nil, core.NewConfigurationError("Base URL is required")
	}
	if s.timeout <= 0 {
		return nil, core.NewConfigurationError("Timeout must be positive")
	}
	if s.maxRetries < 0 {
		return nil, core.NewConfigurationError("Max retries cannot be negative")
	}

	var rc *resty.Client
	if s.httpClient != nil {
		// resty sets the timeout on the client it wraps; keep the caller's copy untouched
		httpClient := *s.httpClient
		rc = resty.NewWithClient(&httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(baseURL).
		SetTimeout(s.timeout).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", UserAgent).
		SetRetryCount(0).
		SetLogger(restyLogger{}).
		SetDisableWarn(true)

	return &Client{
		resty:      rc,
		baseURL:    baseURL,
		maxRetries: s.maxRetries,
		observer:   s.observer,
		sleep:      s.sleep,
	}, nil
}

// BaseURL returns the normalised base address of the Latch instance
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) String() string {
	return fmt.Sprintf("latch.Client(base_url=%q)", c.baseURL)
}

// SendMessage posts a message to a conversation
func (c *Client) SendMessage(
	ctx context.Context,
	conversationID int64,
	text string,
	opts ...clients.MessageOption,
) (*models.Message, error) {
	options := clients.ApplyMessageOptions(opts...)
	request := models.SendMessageRequest{
		ConversationID: conversationID,
		Text:           text,
		ThreadID:       options.ThreadID,
	}

	resp, err := c.do(ctx, http.MethodPost, messagesPath, request)
	if err != nil {
		return nil, err
	}

	var envelope models.MessageEnvelope
	if err := resp.decodeEnvelope("message", &envelope); err != nil {
		return nil, err
	}
	return envelope.Message, nil
}

// SendThreadedReply posts text as a reply to the thread started by threadID
func (c *Client) SendThreadedReply(ctx context.Context, conversationID, threadID int64, text string) (*models.Message, error) {
	return c.SendMessage(ctx, conversationID, text, clients.WithThreadID(threadID))
}

// GetConversation fetches a conversation including its members
func (c *Client) GetConversation(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf(conversationPath, conversationID), nil)
	if err != nil {
		return nil, err
	}

	var envelope models.ConversationEnvelope
	if err := resp.decodeEnvelope("conversation", &envelope); err != nil {
		return nil, err
	}
	return envelope.Conversation, nil
}

type apiResponse struct {
	statusCode int
	body       map[string]any
	raw        []byte
}

// decodeEnvelope unmarshals the raw body into target after checking the resource key exists
func (r *apiResponse) decodeEnvelope(key string, target any) error {
	if value, ok := r.body[key]; !ok || value == nil {
		return &core.APIError{
			Kind:       core.KindClient,
			Message:    fmt.Sprintf("response is missing %q", key),
			StatusCode: r.statusCode,
			Body:       r.body,
		}
	}

	if err := json.Unmarshal(r.raw, target); err != nil {
		return &core.APIError{
			Kind:       core.KindClient,
			Message:    fmt.Sprintf("failed to decode %s: %v", key, err),
			StatusCode: r.statusCode,
			Body:       r.body,
			Err:        err,
		}
	}
	return nil
}

// do issues one API call. Only 429 responses are retried, each after sleeping for the
// server provided Retry-After delay; the sleep is not interrupted by ctx.
func (c *Client) do(ctx context.Context, method, path string, body any) (*apiResponse, error) {
	requestID, ok := appctx.GetRequestID(ctx)
	if !ok {
		requestID = core.NewID("req")
	}

	for attempt := 1; ; attempt++ {
		info := RequestInfo{Method: method, Path: path, RequestID: requestID, Attempt: attempt}
		c.observer.RequestStarted(ctx, info)

		req := c.resty.R().
			SetContext(ctx).
			SetHeader("X-Request-ID", requestID)
		if body != nil {
			req.SetBody(body)
		}

		started := time.Now()
		resp, err := req.Execute(method, path)
		if err != nil {
			transportErr := core.NewTransportError(err)
			c.observer.RequestFailed(ctx, info, transportErr)
			return nil, transportErr
		}
		c.observer.ResponseReceived(ctx, info, resp.StatusCode(), time.Since(started))

		result, apiErr := classifyResponse(resp.StatusCode(), resp.Header(), resp.Body(), time.Now())
		if apiErr == nil {
			return &apiResponse{statusCode: resp.StatusCode(), body: result, raw: resp.Body()}, nil
		}

		if apiErr.Kind == core.KindRateLimit && attempt <= c.maxRetries {
			c.observer.RateLimited(ctx, info, apiErr.RetryAfter, c.maxRetries)
			c.sleep(apiErr.RetryAfter)
			continue
		}

		c.observer.RequestFailed(ctx, info, apiErr)
		return nil, apiErr
	}
}
