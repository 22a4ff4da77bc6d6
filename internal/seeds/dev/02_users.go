package dev

import (
	"context"
	"strings"

	"minerva/internal/domain/subscription"
	"minerva/internal/testsupport/seeds"
)

// SeedUsers creates a developer user subscribed to the seeded strategies (idempotent)
func SeedUsers(ctx context.Context, s *seeds.Seeder) error {
	log := s.Log()

	devUser, err := s.User().
		WithTelegramID(123456789).
		WithUsername("dev_user").
		WithFirstName("Dev").
		WithActive(true).
		WithMinConfidence(0.5).
		Insert()
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			log.Infow("User already exists, skipping", "telegram_id", 123456789)
			return nil
		}
		return err
	}

	log.Infow("Created user", "telegram_id", 123456789, "username", "dev_user")

	_, err = s.Subscription().
		WithUser(devUser.ID).
		WithStrategy(MomentumStrategyID).
		WithChannels(subscription.ChannelTelegram, subscription.ChannelWebSocket).
		WithMinConfidence(0.6).
		Insert()
	if err != nil && !strings.Contains(err.Error(), "duplicate key") {
		return err
	}

	_, err = s.Subscription().
		WithUser(devUser.ID).
		WithStrategy(TrendStrategyID).
		WithChannels(subscription.ChannelWebSocket).
		WithMinConfidence(0.75).
		Insert()
	if err != nil && !strings.Contains(err.Error(), "duplicate key") {
		return err
	}

	log.Infow("Created subscriptions", "user_id", devUser.ID)
	return nil
}
