package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"

	"minerva/internal/domain/user"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// Service provides business logic for subscription operations.
type Service struct {
	repo  Repository
	users user.Repository
	log   *logger.Logger
}

// NewService constructs a subscription service instance.
func NewService(repo Repository, users user.Repository) *Service {
	return &Service{repo: repo, users: users, log: logger.Get()}
}

// Subscribe creates a subscription, enforcing per-user limits and
// rejecting duplicates.
func (s *Service) Subscribe(ctx context.Context, userID, strategyID uuid.UUID, channels Channels, minConfidence float64) (*Subscription, error) {
	if userID == uuid.Nil || strategyID == uuid.Nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "user and strategy ids required")
	}
	if minConfidence < 0 || minConfidence > 1 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "min confidence must be in [0,1]")
	}
	if len(channels) == 0 {
		channels = Channels{ChannelTelegram}
	}
	for _, c := range channels {
		if !c.Valid() {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown channel %q", c)
		}
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "subscribe")
	}
	if !u.IsActive {
		return nil, errors.Wrap(errors.ErrInvalidInput, "user is inactive")
	}

	if _, err := s.repo.GetByUserAndStrategy(ctx, userID, strategyID); err == nil {
		return nil, errors.Wrap(errors.ErrAlreadyExists, "subscription exists")
	} else if !errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Wrap(err, "subscribe")
	}

	if limit := u.Settings.MaxSubscriptions; limit > 0 {
		count, err := s.repo.CountActiveByUser(ctx, userID)
		if err != nil {
			return nil, errors.Wrap(err, "subscribe")
		}
		if count >= limit {
			return nil, errors.Wrapf(errors.ErrRateLimitExceeded, "subscription limit %d reached", limit)
		}
	}

	now := time.Now().UTC()
	sub := &Subscription{
		ID:            uuid.New(),
		UserID:        userID,
		StrategyID:    strategyID,
		Channels:      channels,
		MinConfidence: minConfidence,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, errors.Wrap(err, "subscribe")
	}
	s.log.Infow("subscription created", "subscription_id", sub.ID, "user_id", userID, "strategy_id", strategyID)
	return sub, nil
}

// Unsubscribe removes the user's subscription to the strategy.
func (s *Service) Unsubscribe(ctx context.Context, userID, strategyID uuid.UUID) error {
	sub, err := s.repo.GetByUserAndStrategy(ctx, userID, strategyID)
	if err != nil {
		return errors.Wrap(err, "unsubscribe")
	}
	return s.repo.Delete(ctx, sub.ID)
}

// ListByUser returns all of the user's subscriptions.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Subscription, error) {
	if userID == uuid.Nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "user id required")
	}
	return s.repo.ListByUser(ctx, userID)
}

// Audience returns the active subscriptions to notify for a strategy
// signal at the given confidence.
func (s *Service) Audience(ctx context.Context, strategyID uuid.UUID, confidence float64) ([]*Subscription, error) {
	subs, err := s.repo.ListActiveByStrategy(ctx, strategyID)
	if err != nil {
		return nil, errors.Wrap(err, "audience")
	}
	matched := make([]*Subscription, 0, len(subs))
	for _, sub := range subs {
		if confidence >= sub.MinConfidence {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

// SetActive toggles delivery without deleting the subscription.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "set active")
	}
	sub.IsActive = active
	sub.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, sub)
}
