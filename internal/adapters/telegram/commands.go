package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"minerva/internal/domain/signal"
	"minerva/internal/domain/strategy"
	"minerva/internal/domain/subscription"
	"minerva/internal/domain/user"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
	"minerva/pkg/telegram"
)

const signalsDefaultLimit = 5

// Commands wires bot commands to the domain services.
type Commands struct {
	users         *user.Service
	strategies    *strategy.Service
	subscriptions *subscription.Service
	signals       *signal.Service
	registry      *telegram.CommandRegistry
	log           *logger.Logger
}

// NewCommands creates the command set for the bot.
func NewCommands(
	users *user.Service,
	strategies *strategy.Service,
	subscriptions *subscription.Service,
	signals *signal.Service,
	registry *telegram.CommandRegistry,
	log *logger.Logger,
) *Commands {
	return &Commands{
		users:         users,
		strategies:    strategies,
		subscriptions: subscriptions,
		signals:       signals,
		registry:      registry,
		log:           log.With("component", "telegram_commands"),
	}
}

// RegisterAll registers every command and the global middleware chain.
func (c *Commands) RegisterAll() {
	c.registry.Use(telegram.RecoveryMiddleware(c.log))
	c.registry.Use(telegram.LoggingMiddleware(c.log))
	c.registry.Use(telegram.RateLimitMiddleware(20, c.log))

	c.registry.MustRegister(telegram.CommandConfig{
		Name:        "start",
		Description: "Register and show the welcome message",
		Category:    "Account",
		Handler:     c.handleStart,
	})

	c.registry.MustRegister(telegram.CommandConfig{
		Name:        "help",
		Aliases:     []string{"h"},
		Description: "Show available commands",
		Category:    "Account",
		Handler:     c.handleHelp,
	})

	c.registry.MustRegister(telegram.CommandConfig{
		Name:        "strategies",
		Aliases:     []string{"list"},
		Description: "List available strategies",
		Category:    "Strategies",
		Handler:     c.handleStrategies,
	})

	c.registry.MustRegister(telegram.CommandConfig{
		Name:        "subscribe",
		Aliases:     []string{"sub"},
		Description: "Subscribe to a strategy's signals",
		Usage:       "/subscribe <strategy> [min_confidence]",
		Category:    "Strategies",
		Middleware:  []telegram.CommandMiddleware{telegram.AuthRequiredMiddleware()},
		Handler:     c.handleSubscribe,
	})

	c.registry.MustRegister(telegram.CommandConfig{
		Name:        "unsubscribe",
		Aliases:     []string{"unsub"},
		Description: "Unsubscribe from a strategy",
		Usage:       "/unsubscribe <strategy>",
		Category:    "Strategies",
		Middleware:  []telegram.CommandMiddleware{telegram.AuthRequiredMiddleware()},
		Handler:     c.handleUnsubscribe,
	})

	c.registry.MustRegister(telegram.CommandConfig{
		Name:        "subscriptions",
		Aliases:     []string{"subs"},
		Description: "Show your active subscriptions",
		Category:    "Strategies",
		Middleware:  []telegram.CommandMiddleware{telegram.AuthRequiredMiddleware()},
		Handler:     c.handleSubscriptions,
	})

	c.registry.MustRegister(telegram.CommandConfig{
		Name:        "signals",
		Aliases:     []string{"s"},
		Description: "Show recent signals",
		Usage:       "/signals [symbol]",
		Category:    "Signals",
		Middleware:  []telegram.CommandMiddleware{telegram.AuthRequiredMiddleware()},
		Handler:     c.handleSignals,
	})

	c.registry.MustRegister(telegram.CommandConfig{
		Name:        "settings",
		Description: "View or change delivery settings",
		Usage:       "/settings [threshold <0..1> | notifications <on|off>]",
		Category:    "Account",
		Middleware:  []telegram.CommandMiddleware{telegram.AuthRequiredMiddleware()},
		Handler:     c.handleSettings,
	})
}

func (c *Commands) handleStart(ctx *telegram.CommandContext) error {
	usr, ok := ctx.User.(*user.User)
	if !ok || usr == nil {
		return errors.Wrap(errors.ErrInternal, "user missing from context")
	}

	name := usr.FirstName
	if name == "" {
		name = usr.TelegramUsername
	}

	text := fmt.Sprintf(
		"👋 Welcome, %s!\n\n"+
			"I deliver trading signals generated by AI strategy workflows.\n\n"+
			"• /strategies shows what you can follow\n"+
			"• /subscribe <name> starts signal delivery\n"+
			"• /signals shows the latest calls\n"+
			"• /settings tunes your confidence threshold\n\n"+
			"Use /help for the full command list.",
		name,
	)

	return ctx.Bot.SendMessage(ctx.ChatID, text)
}

func (c *Commands) handleHelp(ctx *telegram.CommandContext) error {
	grouped := c.registry.GetCommandsByCategory(false)

	var b strings.Builder
	b.WriteString("*Available commands*\n")

	for _, category := range []string{"Account", "Strategies", "Signals", "General"} {
		cmds, ok := grouped[category]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("\n*%s*\n", category))
		for _, cmd := range cmds {
			b.WriteString(fmt.Sprintf("/%s", cmd.Name))
			if cmd.Description != "" {
				b.WriteString(" - " + cmd.Description)
			}
			b.WriteString("\n")
		}
	}

	return ctx.Bot.SendMessage(ctx.ChatID, b.String())
}

func (c *Commands) handleStrategies(ctx *telegram.CommandContext) error {
	strategies, err := c.strategies.List(ctx.Ctx, 20, 0)
	if err != nil {
		return errors.Wrap(err, "list strategies")
	}

	if len(strategies) == 0 {
		return ctx.Bot.SendMessage(ctx.ChatID, "No strategies available yet.")
	}

	var b strings.Builder
	b.WriteString("*Strategies*\n")

	for _, st := range strategies {
		status := "▶️"
		if st.Status == strategy.StatusPaused {
			status = "⏸️"
		}
		b.WriteString(fmt.Sprintf("\n%s *%s*\n", status, st.Name))
		if st.Description != "" {
			b.WriteString(st.Description + "\n")
		}
		b.WriteString(fmt.Sprintf("Symbols: %s\n", strings.Join(st.Symbols, ", ")))
		b.WriteString(fmt.Sprintf("Evaluates every %s\n", (time.Duration(st.IntervalSeconds) * time.Second).String()))
	}

	b.WriteString("\nSubscribe with /subscribe <name>")
	return ctx.Bot.SendMessage(ctx.ChatID, b.String())
}

func (c *Commands) handleSubscribe(ctx *telegram.CommandContext) error {
	usr := ctx.User.(*user.User)

	fields := strings.Fields(ctx.Args)
	if len(fields) == 0 {
		return telegram.ValidationError{Field: "strategy", Message: "Usage: /subscribe <strategy> [min_confidence]"}
	}

	name := fields[0]
	minConfidence := usr.Settings.MinConfidence
	if len(fields) > 1 {
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || v < 0 || v > 1 {
			return telegram.ValidationError{Field: "min_confidence", Message: "Confidence must be a number between 0 and 1"}
		}
		minConfidence = v
	}

	st, err := c.strategies.GetByName(ctx.Ctx, name)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return telegram.ValidationError{Field: "strategy", Message: fmt.Sprintf("Strategy %q not found. See /strategies.", name)}
		}
		return errors.Wrap(err, "get strategy")
	}

	sub, err := c.subscriptions.Subscribe(ctx.Ctx, usr.ID, st.ID, subscription.Channels{subscription.ChannelTelegram}, minConfidence)
	if err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return telegram.ValidationError{Field: "strategy", Message: fmt.Sprintf("You are already subscribed to %q.", st.Name)}
		}
		return errors.Wrap(err, "subscribe")
	}

	c.log.Infow("user subscribed",
		"user_id", usr.ID,
		"strategy_id", st.ID,
		"subscription_id", sub.ID,
	)

	return ctx.Bot.SendMessage(ctx.ChatID, fmt.Sprintf(
		"✅ Subscribed to *%s*\nMinimum confidence: %.0f%%\n\nSignals will arrive here as they are generated.",
		st.Name, minConfidence*100,
	))
}

func (c *Commands) handleUnsubscribe(ctx *telegram.CommandContext) error {
	usr := ctx.User.(*user.User)

	name := strings.TrimSpace(ctx.Args)
	if name == "" {
		return telegram.ValidationError{Field: "strategy", Message: "Usage: /unsubscribe <strategy>"}
	}

	st, err := c.strategies.GetByName(ctx.Ctx, name)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return telegram.ValidationError{Field: "strategy", Message: fmt.Sprintf("Strategy %q not found.", name)}
		}
		return errors.Wrap(err, "get strategy")
	}

	if err := c.subscriptions.Unsubscribe(ctx.Ctx, usr.ID, st.ID); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return telegram.ValidationError{Field: "strategy", Message: fmt.Sprintf("You are not subscribed to %q.", st.Name)}
		}
		return errors.Wrap(err, "unsubscribe")
	}

	return ctx.Bot.SendMessage(ctx.ChatID, fmt.Sprintf("✅ Unsubscribed from *%s*.", st.Name))
}

func (c *Commands) handleSubscriptions(ctx *telegram.CommandContext) error {
	usr := ctx.User.(*user.User)

	subs, err := c.subscriptions.ListByUser(ctx.Ctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "list subscriptions")
	}

	if len(subs) == 0 {
		return ctx.Bot.SendMessage(ctx.ChatID, "You have no subscriptions. See /strategies to get started.")
	}

	var b strings.Builder
	b.WriteString("*Your subscriptions*\n")

	for _, sub := range subs {
		st, err := c.strategies.GetByID(ctx.Ctx, sub.StrategyID)
		if err != nil {
			c.log.Warnw("Subscription references missing strategy",
				"subscription_id", sub.ID,
				"strategy_id", sub.StrategyID,
				"error", err,
			)
			continue
		}
		state := "active"
		if !sub.IsActive {
			state = "paused"
		}
		b.WriteString(fmt.Sprintf("\n• *%s* (%s)\n  min confidence %.0f%%, since %s\n",
			st.Name, state, sub.MinConfidence*100, humanize.Time(sub.CreatedAt)))
	}

	return ctx.Bot.SendMessage(ctx.ChatID, b.String())
}

func (c *Commands) handleSignals(ctx *telegram.CommandContext) error {
	q := signal.Query{Limit: signalsDefaultLimit}
	if symbol := strings.TrimSpace(ctx.Args); symbol != "" {
		q.Symbol = symbol
	}

	sigs, err := c.signals.List(ctx.Ctx, q)
	if err != nil {
		return errors.Wrap(err, "list signals")
	}

	if len(sigs) == 0 {
		return ctx.Bot.SendMessage(ctx.ChatID, "No signals yet.")
	}

	var b strings.Builder
	b.WriteString("*Recent signals*\n")

	for _, sig := range sigs {
		b.WriteString(fmt.Sprintf("\n%s *%s* %s\n", kindEmoji(sig.Kind), strings.ToUpper(string(sig.Kind)), sig.Symbol))
		b.WriteString(fmt.Sprintf("Confidence %.0f%% (%s), price %s\n", sig.Confidence*100, sig.Tier, sig.Price.StringFixed(2)))
		b.WriteString(fmt.Sprintf("_%s_\n", humanize.Time(sig.CreatedAt)))
	}

	return ctx.Bot.SendMessage(ctx.ChatID, b.String())
}

func (c *Commands) handleSettings(ctx *telegram.CommandContext) error {
	usr := ctx.User.(*user.User)

	fields := strings.Fields(ctx.Args)
	if len(fields) == 0 {
		return c.showSettings(ctx, usr)
	}

	settings := usr.Settings

	switch strings.ToLower(fields[0]) {
	case "threshold":
		if len(fields) < 2 {
			return telegram.ValidationError{Field: "threshold", Message: "Usage: /settings threshold <0..1>"}
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || v < 0 || v > 1 {
			return telegram.ValidationError{Field: "threshold", Message: "Threshold must be a number between 0 and 1"}
		}
		settings.MinConfidence = v

	case "notifications":
		if len(fields) < 2 {
			return telegram.ValidationError{Field: "notifications", Message: "Usage: /settings notifications <on|off>"}
		}
		switch strings.ToLower(fields[1]) {
		case "on":
			settings.NotificationsOn = true
		case "off":
			settings.NotificationsOn = false
		default:
			return telegram.ValidationError{Field: "notifications", Message: "Use on or off"}
		}

	default:
		return telegram.ValidationError{Field: "settings", Message: "Unknown setting. Use threshold or notifications."}
	}

	if err := c.users.UpdateSettings(ctx.Ctx, usr.ID, settings); err != nil {
		return errors.Wrap(err, "update settings")
	}
	usr.Settings = settings

	return c.showSettings(ctx, usr)
}

func (c *Commands) showSettings(ctx *telegram.CommandContext, usr *user.User) error {
	s := usr.Settings

	notifications := "on"
	if !s.NotificationsOn {
		notifications = "off"
	}

	quietHours := "not set"
	if s.QuietHoursStart != "" && s.QuietHoursEnd != "" {
		quietHours = fmt.Sprintf("%s to %s", s.QuietHoursStart, s.QuietHoursEnd)
	}

	text := fmt.Sprintf(
		"*Your settings*\n\n"+
			"Notifications: %s\n"+
			"Confidence threshold: %.0f%%\n"+
			"Channels: %s\n"+
			"Quiet hours: %s\n"+
			"Max subscriptions: %d\n\n"+
			"Change with /settings threshold <0..1> or /settings notifications <on|off>",
		notifications, s.MinConfidence*100, strings.Join(s.Channels, ", "), quietHours, s.MaxSubscriptions,
	)

	return ctx.Bot.SendMessage(ctx.ChatID, text)
}

func kindEmoji(kind signal.Kind) string {
	switch kind {
	case signal.KindBuy:
		return "🟢"
	case signal.KindSell:
		return "🔴"
	case signal.KindHold:
		return "⚪"
	case signal.KindObserve:
		return "👀"
	case signal.KindAlert:
		return "🚨"
	default:
		return "ℹ️"
	}
}
