package telegram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/pkg/logger"
)

type stubBot struct {
	sent []string
}

func (b *stubBot) SendMessage(chatID int64, text string) error {
	b.sent = append(b.sent, text)
	return nil
}

func TestCommandRegistry_RoutesToHandler(t *testing.T) {
	bot := &stubBot{}
	registry := NewCommandRegistry(bot, logger.Get())

	var gotArgs string
	require.NoError(t, registry.Register(CommandConfig{
		Name:    "subscribe",
		Aliases: []string{"sub"},
		Handler: func(ctx *CommandContext) error {
			gotArgs = ctx.Args
			return nil
		},
	}))

	err := registry.Handle(context.Background(), nil, 42, 42, "sub", "momentum", "/sub momentum")
	require.NoError(t, err)
	assert.Equal(t, "momentum", gotArgs)
}

func TestCommandRegistry_UnknownCommand(t *testing.T) {
	bot := &stubBot{}
	registry := NewCommandRegistry(bot, logger.Get())

	err := registry.Handle(context.Background(), nil, 42, 42, "bogus", "", "/bogus")
	require.NoError(t, err)
	require.Len(t, bot.sent, 1)
	assert.Contains(t, bot.sent[0], "Unknown command")
}

func TestCommandRegistry_ValidationErrorReachesUser(t *testing.T) {
	bot := &stubBot{}
	registry := NewCommandRegistry(bot, logger.Get())

	require.NoError(t, registry.Register(CommandConfig{
		Name: "settings",
		Handler: func(ctx *CommandContext) error {
			return ValidationError{Field: "threshold", Message: "threshold must be between 0 and 1"}
		},
	}))

	err := registry.Handle(context.Background(), nil, 42, 42, "settings", "5", "/settings 5")
	require.NoError(t, err)
	require.Len(t, bot.sent, 1)
	assert.Contains(t, bot.sent[0], "threshold must be between 0 and 1")
}

func TestCommandRegistry_RejectsDuplicateName(t *testing.T) {
	bot := &stubBot{}
	registry := NewCommandRegistry(bot, logger.Get())

	noop := func(ctx *CommandContext) error { return nil }
	require.NoError(t, registry.Register(CommandConfig{Name: "strategies", Handler: noop}))

	err := registry.Register(CommandConfig{Name: "strategies", Handler: noop})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	// alias collisions are rejected too
	err = registry.Register(CommandConfig{Name: "list", Aliases: []string{"strategies"}, Handler: noop})
	require.Error(t, err)
}

func TestAuthRequiredMiddleware(t *testing.T) {
	bot := &stubBot{}
	registry := NewCommandRegistry(bot, logger.Get())

	called := false
	require.NoError(t, registry.Register(CommandConfig{
		Name:       "signals",
		Middleware: []CommandMiddleware{AuthRequiredMiddleware()},
		Handler: func(ctx *CommandContext) error {
			called = true
			return nil
		},
	}))

	err := registry.Handle(context.Background(), nil, 42, 42, "signals", "", "/signals")
	require.NoError(t, err)
	assert.False(t, called, "handler should not run without a user")
	require.Len(t, bot.sent, 1)
	assert.Contains(t, bot.sent[0], "/start")
}
