package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"minerva/internal/domain/user"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
	"minerva/pkg/telegram"
)

// Handler processes Telegram updates using the command framework
type Handler struct {
	bot             *Bot
	commandRegistry *telegram.CommandRegistry
	users           *user.Service
	log             *logger.Logger
}

// NewHandler creates a new telegram handler
func NewHandler(
	bot *Bot,
	commandRegistry *telegram.CommandRegistry,
	users *user.Service,
	log *logger.Logger,
) *Handler {
	return &Handler{
		bot:             bot,
		commandRegistry: commandRegistry,
		users:           users,
		log:             log.With("component", "telegram_handler"),
	}
}

// HandleUpdate is the entry point for all updates from the bot.
func (h *Handler) HandleUpdate(update tgbotapi.Update) {
	ctx := context.Background()

	if update.Message == nil {
		return
	}

	if err := h.handleMessage(ctx, update.Message); err != nil {
		h.log.Errorw("Failed to handle message",
			"message_id", update.Message.MessageID,
			"error", err,
		)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	telegramID := msg.From.ID
	chatID := msg.Chat.ID
	text := msg.Text

	h.log.Debugw("Processing message",
		"telegram_id", telegramID,
		"username", msg.From.UserName,
		"text", text,
	)

	usr, err := h.getOrCreateUser(ctx, msg.From)
	if err != nil {
		_ = h.bot.SendMessage(chatID, "❌ Failed to process your request. Please try again.")
		return errors.Wrap(err, "failed to get or create user")
	}

	if msg.IsCommand() {
		return h.commandRegistry.Handle(ctx, usr, telegramID, chatID, msg.Command(), msg.CommandArguments(), text)
	}

	// Non-command text gets a nudge toward the command surface
	return h.bot.SendMessage(chatID, "Use /help to see what I can do.")
}

// getOrCreateUser resolves the sender to a platform user, registering
// them on first contact.
func (h *Handler) getOrCreateUser(ctx context.Context, from *tgbotapi.User) (*user.User, error) {
	usr, err := h.users.GetByTelegramID(ctx, from.ID)
	if err == nil {
		return usr, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	usr, err = h.users.Register(ctx, &user.User{
		TelegramID:       from.ID,
		TelegramUsername: from.UserName,
		FirstName:        from.FirstName,
		LastName:         from.LastName,
		LanguageCode:     from.LanguageCode,
	})
	if err != nil {
		return nil, err
	}

	h.log.Infow("Registered new user from Telegram",
		"user_id", usr.ID,
		"telegram_id", usr.TelegramID,
		"username", usr.TelegramUsername,
	)

	return usr, nil
}
