package telegram

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// Bot wraps the Telegram Bot API with rate limiting and lifecycle management.
type Bot struct {
	api         *tgbotapi.BotAPI
	updates     tgbotapi.UpdatesChannel
	log         *logger.Logger
	mu          sync.RWMutex
	running     bool
	msgHandler  func(tgbotapi.Update)
	rateLimiter *rate.Limiter
}

// Config contains Telegram bot configuration
type Config struct {
	Token          string
	Debug          bool
	Timeout        int // Update timeout in seconds
	BufferSize     int // Update channel buffer size
	HTTPTimeout    time.Duration
	RateLimitBurst int // Rate limiter burst (default: 30)
	RateLimitRate  int // Rate limiter per second (default: 20)
}

// NewBot creates a new Telegram bot instance
func NewBot(cfg Config, log *logger.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "telegram bot token is required")
	}

	// Set defaults
	if cfg.Timeout == 0 {
		cfg.Timeout = 60
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 100
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 30 // Telegram allows bursts
	}
	if cfg.RateLimitRate == 0 {
		cfg.RateLimitRate = 20 // Conservative: 20 msg/sec (Telegram limit is 30)
	}

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}

	api.Debug = cfg.Debug

	log.Infof("Authorized on account %s", api.Self.UserName)

	rateLimiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRate), cfg.RateLimitBurst)

	return &Bot{
		api:         api,
		log:         log.With("component", "telegram_bot"),
		rateLimiter: rateLimiter,
	}, nil
}

// Start begins polling for updates until the context is cancelled
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return errors.New("bot is already running")
	}
	b.running = true
	b.mu.Unlock()

	b.log.Infow("Starting Telegram bot in polling mode...")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.updates = updates

	b.log.Infow("✓ Telegram bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.log.Infow("Telegram bot stopping (context cancelled)")
			b.Stop()
			return nil

		case update := <-updates:
			// Handle update in goroutine to avoid blocking
			go b.handleUpdate(update)
		}
	}
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}

	b.log.Infow("Stopping Telegram bot...")
	b.api.StopReceivingUpdates()
	b.running = false
	b.log.Infow("✓ Telegram bot stopped")
}

// handleUpdate processes a single update
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	b.log.Debugw("Handling Telegram update",
		"update_id", update.UpdateID,
	)

	if b.msgHandler != nil {
		b.msgHandler(update)
		return
	}

	if update.Message != nil {
		b.log.Debugw("Received message (no handler registered)",
			"update_id", update.UpdateID,
			"from", update.Message.From.UserName,
			"from_id", update.Message.From.ID,
			"text", update.Message.Text,
		)
	} else {
		b.log.Debugw("Received update with no recognized type (no handler registered)",
			"update_id", update.UpdateID,
		)
	}
}

// SetMessageHandler registers a handler for incoming updates
func (b *Bot) SetMessageHandler(handler func(tgbotapi.Update)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgHandler = handler
}

// SendMessage sends a text message to a chat
func (b *Bot) SendMessage(chatID int64, text string) error {
	return b.SendMessageWithContext(context.Background(), chatID, text)
}

// SendMessageWithContext sends a text message to a chat with context support
func (b *Bot) SendMessageWithContext(ctx context.Context, chatID int64, text string) error {
	if err := b.rateLimiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter wait failed")
	}

	b.log.Debugw("Sending message",
		"chat_id", chatID,
		"text_length", len(text),
	)

	start := time.Now()

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"

	_, err := b.api.Send(msg)

	duration := time.Since(start)

	if err != nil {
		b.log.Errorw("Failed to send message",
			"chat_id", chatID,
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		return errors.Wrap(err, "failed to send message")
	}

	b.log.Debugw("Message sent successfully",
		"chat_id", chatID,
		"duration_ms", duration.Milliseconds(),
	)

	return nil
}

// SendMessageWithRetry sends a message with exponential backoff retries
func (b *Bot) SendMessageWithRetry(chatID int64, text string, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := b.SendMessage(chatID, text)
		if err == nil {
			return nil
		}

		lastErr = err
		b.log.Warnw("Failed to send message, retrying...",
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"error", err,
		)

		time.Sleep(time.Duration(attempt+1) * time.Second)
	}

	return errors.Wrapf(lastErr, "failed to send message after %d retries", maxRetries)
}

// BroadcastMessage sends a message to multiple chats
func (b *Bot) BroadcastMessage(chatIDs []int64, text string) error {
	var wg sync.WaitGroup
	errChan := make(chan error, len(chatIDs))

	for _, chatID := range chatIDs {
		wg.Add(1)
		go func(cid int64) {
			defer wg.Done()
			if err := b.SendMessage(cid, text); err != nil {
				errChan <- fmt.Errorf("chat %d: %w", cid, err)
			}
		}(chatID)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Wrapf(errors.ErrInternal, "failed to send to %d chats: %v", len(errs), errs)
	}

	return nil
}

// SendTyping sends "typing..." action to chat
func (b *Bot) SendTyping(chatID int64) error {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, err := b.api.Send(action)
	return err
}

// GetAPI returns the underlying Telegram Bot API instance
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}

// IsRunning returns whether the bot is currently running
func (b *Bot) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}
