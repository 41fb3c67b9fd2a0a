package latch

import (
	"net/http"
	"time"
)

const (
	DefaultBaseURL    = "http://localhost"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	UserAgent         = "LatchBotSDK/1.0.0 (Go)"
	TokenPrefix       = "bot_"
)

// Sleeper blocks for the given duration. It is swapped out in tests.
type Sleeper func(time.Duration)

type settings struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
	observer   RequestObserver
	sleep      Sleeper
	httpClient *http.Client
}

func defaultSettings() settings {
	return settings{
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		observer:   LogObserver{},
		sleep:      time.Sleep,
	}
}

// Option configures a Client
type Option func(*settings)

// WithBaseURL points the client at a Latch instance, e.g. https://chat.example.com
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.baseURL = baseURL
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

// WithMaxRetries sets how many times a rate limited request is re-issued. Zero disables retries.
func WithMaxRetries(maxRetries int) Option {
	return func(s *settings) {
		s.maxRetries = maxRetries
	}
}

func WithObserver(observer RequestObserver) Option {
	return func(s *settings) {
		if observer != nil {
			s.observer = observer
		}
	}
}

func WithSleeper(sleep Sleeper) Option {
	return func(s *settings) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithHTTPClient lets resty drive a copy of a caller supplied http.Client.
// Its transport is shared; its Timeout is replaced by the client timeout on the copy only.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *settings) {
		s.httpClient = httpClient
	}
}
