package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/jessevdk/go-flags"

	"latchbot/clients"
	"latchbot/clients/latch"
	"latchbot/core/log"
	"latchbot/models"
)

type Options struct {
	Token           string        `long:"token" env:"LATCH_BOT_TOKEN" description:"Bot API token (starts with bot_)" required:"true"`
	BaseURL         string        `long:"base-url" env:"LATCH_BASE_URL" description:"Base URL of the Latch instance" default:"http://localhost"`
	Timeout         time.Duration `long:"timeout" description:"Per request timeout" default:"30s"`
	MaxRetries      int           `long:"max-retries" description:"Retries for rate limited requests" default:"3"`
	ConversationIDs []int64       `short:"c" long:"conversation" description:"Conversation to post to (repeatable)" required:"true"`
	ThreadID        int64         `long:"thread" description:"Reply inside this thread"`
	Concurrency     int           `long:"concurrency" description:"Conversations posted to in parallel" default:"4"`
	Verbose         bool          `short:"v" long:"verbose" description:"Log every request"`

	Args struct {
		Text []string `positional-arg-name:"text" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

type sendResult struct {
	ConversationID int64
	Message        *models.Message
	Err            error
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts Options) error {
	if opts.Verbose {
		log.SetLevel(slog.LevelDebug)
	}

	client, err := latch.NewClient(
		opts.Token,
		latch.WithBaseURL(opts.BaseURL),
		latch.WithTimeout(opts.Timeout),
		latch.WithMaxRetries(opts.MaxRetries),
	)
	if err != nil {
		return err
	}

	var msgOpts []clients.MessageOption
	if opts.ThreadID != 0 {
		msgOpts = append(msgOpts, clients.WithThreadID(opts.ThreadID))
	}

	text := strings.Join(opts.Args.Text, " ")
	results := broadcast(context.Background(), client, opts.ConversationIDs, text, opts.Concurrency, msgOpts...)

	var errs []error
	for _, result := range results {
		if result.Err != nil {
			fmt.Printf("❌ conversation %d: %v\n", result.ConversationID, result.Err)
			errs = append(errs, fmt.Errorf("conversation %d: %w", result.ConversationID, result.Err))
			continue
		}
		fmt.Printf("✅ conversation %d: message %d\n", result.ConversationID, result.Message.ID)
	}
	return errors.Join(errs...)
}

// broadcast sends text to every conversation through a bounded worker pool.
// Results come back in the order of conversationIDs.
func broadcast(
	ctx context.Context,
	client clients.LatchClient,
	conversationIDs []int64,
	text string,
	concurrency int,
	opts ...clients.MessageOption,
) []sendResult {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]sendResult, len(conversationIDs))
	wp := workerpool.New(concurrency)
	for i, conversationID := range conversationIDs {
		wp.Submit(func() {
			msg, err := client.SendMessage(ctx, conversationID, text, opts...)
			results[i] = sendResult{ConversationID: conversationID, Message: msg, Err: err}
		})
	}
	wp.StopWait()

	return results
}
