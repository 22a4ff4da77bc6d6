package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"minerva/internal/domain/signal"
	"minerva/internal/domain/strategy"
	"minerva/internal/domain/subscription"
	"minerva/internal/domain/user"
	"minerva/internal/workers"
	"minerva/pkg/errors"
	"minerva/pkg/templates"
)

const (
	digestTemplateID = "notifications/digest"
	digestUserBatch  = 200
	digestLockTTL    = 23 * time.Hour
)

type lockManager interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
}

type digestSender interface {
	SendMessageWithContext(ctx context.Context, chatID int64, text string) error
}

// DigestWorker sends each user a once-a-day summary of the signals
// their subscriptions produced over the last 24 hours. Delivery time
// follows the user's configured digest time and timezone.
type DigestWorker struct {
	*workers.BaseWorker
	users         *user.Service
	subscriptions *subscription.Service
	strategies    *strategy.Service
	signals       *signal.Service
	sender        digestSender
	locker        lockManager
	templates     *templates.Registry
}

// NewDigestWorker creates the daily digest worker.
func NewDigestWorker(
	users *user.Service,
	subscriptions *subscription.Service,
	strategies *strategy.Service,
	signals *signal.Service,
	sender digestSender,
	locker lockManager,
	interval time.Duration,
	enabled bool,
) *DigestWorker {
	return &DigestWorker{
		BaseWorker:    workers.NewBaseWorker("daily_digest", interval, enabled),
		users:         users,
		subscriptions: subscriptions,
		strategies:    strategies,
		signals:       signals,
		sender:        sender,
		locker:        locker,
		templates:     templates.Get(),
	}
}

// Run checks every user whose digest time has passed today and sends
// at most one digest per user per local day
func (dw *DigestWorker) Run(ctx context.Context) error {
	offset := 0
	sent := 0
	for {
		batch, err := dw.users.List(ctx, digestUserBatch, offset)
		if err != nil {
			return errors.Wrap(err, "list users")
		}
		if len(batch) == 0 {
			break
		}

		for _, u := range batch {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ok, err := dw.maybeSend(ctx, u)
			if err != nil {
				dw.Log().Warnw("Digest delivery failed", "user_id", u.ID, "error", err)
				continue
			}
			if ok {
				sent++
			}
		}

		if len(batch) < digestUserBatch {
			break
		}
		offset += digestUserBatch
	}

	if sent > 0 {
		dw.Log().Infow("Daily digests sent", "count", sent)
	}
	return nil
}

func (dw *DigestWorker) maybeSend(ctx context.Context, u *user.User) (bool, error) {
	if !u.IsActive || !u.Settings.NotificationsOn || u.TelegramID == 0 {
		return false, nil
	}

	loc, err := time.LoadLocation(u.Settings.Timezone)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)

	target, err := time.ParseInLocation("15:04", u.Settings.DailyDigestTime, loc)
	if err != nil {
		return false, nil
	}
	due := time.Date(now.Year(), now.Month(), now.Day(), target.Hour(), target.Minute(), 0, 0, loc)
	if now.Before(due) {
		return false, nil
	}

	lockName := fmt.Sprintf("digest:%s:%s", u.ID, now.Format("2006-01-02"))
	acquired, err := dw.locker.Acquire(ctx, lockName, digestLockTTL)
	if err != nil {
		return false, errors.Wrap(err, "acquire digest lock")
	}
	if !acquired {
		return false, nil
	}

	text, err := dw.render(ctx, u, now)
	if err != nil {
		return false, err
	}

	if err := dw.sender.SendMessageWithContext(ctx, u.TelegramID, text); err != nil {
		return false, errors.Wrap(err, "send digest")
	}
	return true, nil
}

func (dw *DigestWorker) render(ctx context.Context, u *user.User, now time.Time) (string, error) {
	subs, err := dw.subscriptions.ListByUser(ctx, u.ID)
	if err != nil {
		return "", errors.Wrap(err, "list subscriptions")
	}

	since := now.Add(-24 * time.Hour).UTC()
	var lines []map[string]interface{}
	for _, sub := range subs {
		if !sub.IsActive {
			continue
		}
		sigs, err := dw.signals.List(ctx, signal.Query{
			StrategyID: &sub.StrategyID,
			Since:      since,
			Limit:      20,
		})
		if err != nil {
			dw.Log().Warnw("Failed to load signals for digest", "strategy_id", sub.StrategyID, "error", err)
			continue
		}

		name := dw.strategyName(ctx, sub.StrategyID)
		for _, sig := range sigs {
			if sig.Confidence < sub.MinConfidence || sig.Confidence < u.Settings.MinConfidence {
				continue
			}
			lines = append(lines, map[string]interface{}{
				"KindEmoji":  kindEmoji(sig.Kind),
				"KindLabel":  strings.ToUpper(string(sig.Kind)),
				"Symbol":     sig.Symbol,
				"Confidence": fmt.Sprintf("%.0f%%", sig.Confidence*100),
				"Strategy":   name,
			})
		}
	}

	return dw.templates.Render(digestTemplateID, map[string]interface{}{
		"Date":    now.Format("2006-01-02"),
		"Signals": lines,
	})
}

func (dw *DigestWorker) strategyName(ctx context.Context, id uuid.UUID) string {
	st, err := dw.strategies.GetByID(ctx, id)
	if err != nil {
		return "unknown"
	}
	return st.Name
}

func kindEmoji(k signal.Kind) string {
	switch k {
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
