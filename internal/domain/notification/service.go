package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"minerva/internal/domain/signal"
	"minerva/internal/domain/subscription"
	"minerva/internal/domain/user"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// Sender delivers a signal to a user over one transport.
type Sender interface {
	Channel() string
	Send(ctx context.Context, u *user.User, sig *signal.Signal) error
}

// Audience resolves which subscriptions should receive a signal.
type Audience interface {
	Audience(ctx context.Context, strategyID uuid.UUID, confidence float64) ([]*subscription.Subscription, error)
}

// Service fans generated signals out to subscribers over their chosen
// channels and records every delivery attempt.
type Service struct {
	repo     Repository
	users    user.Repository
	audience Audience
	senders  map[string]Sender
	log      *logger.Logger
}

// NewService constructs a notification service instance.
func NewService(repo Repository, users user.Repository, audience Audience, senders []Sender) *Service {
	byChannel := make(map[string]Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	return &Service{
		repo:     repo,
		users:    users,
		audience: audience,
		senders:  byChannel,
		log:      logger.Get().With("component", "notification_service"),
	}
}

// Dispatch delivers the signal to every matching subscriber. Delivery
// failures are recorded per notification and never abort the fan-out.
func (s *Service) Dispatch(ctx context.Context, sig *signal.Signal) error {
	if sig == nil {
		return errors.Wrap(errors.ErrInvalidInput, "signal is nil")
	}

	subs, err := s.audience.Audience(ctx, sig.StrategyID, sig.Confidence)
	if err != nil {
		return errors.Wrap(err, "dispatch")
	}

	delivered := 0
	for _, sub := range subs {
		u, err := s.users.GetByID(ctx, sub.UserID)
		if err != nil {
			s.log.Warnw("skipping subscriber, user lookup failed", "user_id", sub.UserID, "error", err)
			continue
		}
		if u.Settings.MinConfidence > sig.Confidence {
			continue
		}
		for _, channel := range sub.Channels {
			if !u.WantsChannel(string(channel)) {
				continue
			}
			if s.deliver(ctx, u, sig, string(channel)) {
				delivered++
			}
		}
	}

	s.log.Infow("signal fan-out complete",
		"signal_id", sig.ID,
		"subscribers", len(subs),
		"delivered", delivered,
	)
	return nil
}

func (s *Service) deliver(ctx context.Context, u *user.User, sig *signal.Signal, channel string) bool {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    u.ID,
		SignalID:  sig.ID,
		Channel:   channel,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.log.Errorw("failed to record notification", "user_id", u.ID, "error", err)
		return false
	}

	sender, ok := s.senders[channel]
	if !ok {
		_ = s.repo.MarkFailed(ctx, n.ID, "no sender for channel "+channel)
		return false
	}

	if err := sender.Send(ctx, u, sig); err != nil {
		s.log.Warnw("delivery failed", "notification_id", n.ID, "channel", channel, "error", err)
		_ = s.repo.MarkFailed(ctx, n.ID, err.Error())
		return false
	}

	_ = s.repo.MarkSent(ctx, n.ID, time.Now().UTC())
	return true
}

// RetryPending re-attempts undelivered notifications. Used by the
// periodic sweep worker.
func (s *Service) RetryPending(ctx context.Context, limit int, loadSignal func(context.Context, uuid.UUID) (*signal.Signal, error)) error {
	pending, err := s.repo.ListPending(ctx, limit)
	if err != nil {
		return errors.Wrap(err, "retry pending")
	}
	for _, n := range pending {
		u, err := s.users.GetByID(ctx, n.UserID)
		if err != nil {
			_ = s.repo.MarkFailed(ctx, n.ID, "user lookup failed: "+err.Error())
			continue
		}
		sig, err := loadSignal(ctx, n.SignalID)
		if err != nil {
			_ = s.repo.MarkFailed(ctx, n.ID, "signal lookup failed: "+err.Error())
			continue
		}
		sender, ok := s.senders[n.Channel]
		if !ok {
			_ = s.repo.MarkFailed(ctx, n.ID, "no sender for channel "+n.Channel)
			continue
		}
		if err := sender.Send(ctx, u, sig); err != nil {
			_ = s.repo.MarkFailed(ctx, n.ID, err.Error())
			continue
		}
		_ = s.repo.MarkSent(ctx, n.ID, time.Now().UTC())
	}
	return nil
}
