package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"minerva/internal/domain/signal"
	"minerva/internal/domain/strategy"
	"minerva/internal/domain/user"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
	"minerva/pkg/templates"
)

const signalTemplateID = "notifications/signal"

// strategyResolver resolves strategy names for rendered notifications
type strategyResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*strategy.Strategy, error)
}

// messageSender abstracts the bot send path
type messageSender interface {
	SendMessageWithContext(ctx context.Context, chatID int64, text string) error
}

// Notifier delivers signals to users over Telegram. It implements
// notification.Sender.
type Notifier struct {
	bot        messageSender
	strategies strategyResolver
	templates  *templates.Registry
	log        *logger.Logger
}

// NewNotifier creates a Telegram signal notifier.
func NewNotifier(bot messageSender, strategies strategyResolver, tmpl *templates.Registry, log *logger.Logger) *Notifier {
	if tmpl == nil {
		tmpl = templates.Get()
	}
	return &Notifier{
		bot:        bot,
		strategies: strategies,
		templates:  tmpl,
		log:        log.With("component", "telegram_notifier"),
	}
}

// Channel reports the transport this sender serves.
func (n *Notifier) Channel() string {
	return "telegram"
}

// Send renders and delivers a signal to the user's Telegram chat.
// Deliveries inside the user's quiet hours are rejected so the
// notification layer can retry them later.
func (n *Notifier) Send(ctx context.Context, u *user.User, sig *signal.Signal) error {
	if u.TelegramID == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "user has no telegram id")
	}
	if u.InQuietHours(time.Now()) {
		return errors.Wrapf(errors.ErrRateLimitExceeded, "user %s is in quiet hours", u.ID)
	}

	text, err := n.render(ctx, sig)
	if err != nil {
		return errors.Wrap(err, "render signal notification")
	}

	if err := n.bot.SendMessageWithContext(ctx, u.TelegramID, text); err != nil {
		return errors.Wrap(err, "send signal notification")
	}

	n.log.Debugw("Signal delivered",
		"user_id", u.ID,
		"signal_id", sig.ID,
		"symbol", sig.Symbol,
		"kind", sig.Kind,
	)

	return nil
}

func (n *Notifier) render(ctx context.Context, sig *signal.Signal) (string, error) {
	strategyName := "unknown"
	if st, err := n.strategies.GetByID(ctx, sig.StrategyID); err == nil {
		strategyName = st.Name
	}

	data := map[string]interface{}{
		"KindEmoji":   kindEmoji(sig.Kind),
		"KindLabel":   strings.ToUpper(string(sig.Kind)),
		"Symbol":      sig.Symbol,
		"Strategy":    strategyName,
		"Confidence":  formatPercent(sig.Confidence),
		"Tier":        sig.Tier,
		"Price":       sig.Price.StringFixed(2),
		"TargetPrice": nullDecimalString(sig.TargetPrice),
		"StopLoss":    nullDecimalString(sig.StopLoss),
		"Reasoning":   []string(sig.Reasoning),
		"RiskFactors": []string(sig.RiskFactors),
		"CreatedAt":   sig.CreatedAt.Format("2006-01-02 15:04 MST"),
	}

	return n.templates.Render(signalTemplateID, data)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func nullDecimalString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}
