package test

import (
	"context"
	"strings"

	"minerva/internal/domain/subscription"
	"minerva/internal/testsupport/seeds"
)

// SeedUsers creates a test user subscribed to the test strategy (idempotent)
func SeedUsers(ctx context.Context, s *seeds.Seeder) error {
	usr, err := s.User().
		WithTelegramID(900000001).
		WithUsername("test_user").
		WithActive(true).
		Insert()
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			s.Log().Infow("User already exists, skipping", "telegram_id", 900000001)
			return nil
		}
		return err
	}

	_, err = s.Subscription().
		WithUser(usr.ID).
		WithStrategy(TestStrategyID).
		WithChannels(subscription.ChannelTelegram).
		Insert()
	if err != nil && !strings.Contains(err.Error(), "duplicate key") {
		return err
	}

	s.Log().Infow("Created test user", "telegram_id", 900000001)
	return nil
}
