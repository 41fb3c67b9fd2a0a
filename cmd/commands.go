package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"latchbot/services/commands"
)

func registerCommands(router *commands.Router) {
	router.Register("ping", handlePing)
	router.Register("echo", handleEcho)
	router.Register("conversation", handleConversation)
	router.Register("help", func(_ context.Context, cmd *commands.CommandContext) (any, error) {
		return handleHelp(router.Commands(), cmd), nil
	})
	router.SetDefault(handleUnknown)
}

func handlePing(_ context.Context, cmd *commands.CommandContext) (any, error) {
	return cmd.ReplyEphemeral("Pong!"), nil
}

// handleEcho repeats the command text into the conversation; "--thread <id>" replies inside a thread
func handleEcho(ctx context.Context, cmd *commands.CommandContext) (any, error) {
	args := cmd.Args()
	if len(args) == 0 {
		return cmd.ReplyEphemeral("Usage: /echo [--thread <message id>] <text>"), nil
	}

	if args[0] == "--thread" && len(args) >= 3 {
		threadID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return cmd.ReplyEphemeral(fmt.Sprintf("Invalid thread id: %s", args[1])), nil
		}
		return nil, cmd.ReplyInThread(ctx, threadID, strings.Join(args[2:], " "))
	}

	prefix := cmd.ConfigString("echo_prefix", "")
	return nil, cmd.Reply(ctx, prefix+cmd.Text())
}

func handleConversation(ctx context.Context, cmd *commands.CommandContext) (any, error) {
	conv, err := cmd.Client().GetConversation(ctx, cmd.ConversationID())
	if err != nil {
		return nil, err
	}

	kind := "direct message"
	if conv.IsChannel() {
		kind = "private channel"
		if conv.IsPublic() {
			kind = "public channel"
		}
	}
	if err := conv.ValidateType(); err != nil {
		kind = string(conv.Type)
	}

	name := conv.Name.OrElse(fmt.Sprintf("#%d", conv.ID))
	return cmd.ReplyEphemeral(fmt.Sprintf("%s is a %s with %d members", name, kind, len(conv.Members))), nil
}

func handleHelp(names []string, cmd *commands.CommandContext) any {
	lines := make([]string, 0, len(names)+1)
	lines = append(lines, "Available commands:")
	for _, name := range names {
		lines = append(lines, "• /"+name)
	}
	return cmd.ReplyEphemeral(strings.Join(lines, "\n"))
}

func handleUnknown(_ context.Context, cmd *commands.CommandContext) (any, error) {
	return cmd.ReplyEphemeral(fmt.Sprintf("Unknown command: /%s. Try /help", cmd.Command())), nil
}
