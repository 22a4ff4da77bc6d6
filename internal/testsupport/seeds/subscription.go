package seeds

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"minerva/internal/domain/subscription"
)

// SubscriptionBuilder provides a fluent API for creating Subscription entities
type SubscriptionBuilder struct {
	db     DBTX
	ctx    context.Context
	entity *subscription.Subscription
}

// NewSubscriptionBuilder creates a new SubscriptionBuilder with sensible defaults
func NewSubscriptionBuilder(db DBTX, ctx context.Context) *SubscriptionBuilder {
	now := time.Now()
	return &SubscriptionBuilder{
		db:  db,
		ctx: ctx,
		entity: &subscription.Subscription{
			ID:            uuid.New(),
			Channels:      subscription.Channels{subscription.ChannelTelegram},
			MinConfidence: 0.5,
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

// WithID sets a specific ID
func (b *SubscriptionBuilder) WithID(id uuid.UUID) *SubscriptionBuilder {
	b.entity.ID = id
	return b
}

// WithUser sets the subscribing user (required)
func (b *SubscriptionBuilder) WithUser(userID uuid.UUID) *SubscriptionBuilder {
	b.entity.UserID = userID
	return b
}

// WithStrategy sets the subscribed strategy (required)
func (b *SubscriptionBuilder) WithStrategy(strategyID uuid.UUID) *SubscriptionBuilder {
	b.entity.StrategyID = strategyID
	return b
}

// WithChannels sets the delivery channels
func (b *SubscriptionBuilder) WithChannels(channels ...subscription.Channel) *SubscriptionBuilder {
	b.entity.Channels = channels
	return b
}

// WithMinConfidence sets the confidence threshold
func (b *SubscriptionBuilder) WithMinConfidence(threshold float64) *SubscriptionBuilder {
	b.entity.MinConfidence = threshold
	return b
}

// WithActive sets the active flag
func (b *SubscriptionBuilder) WithActive(active bool) *SubscriptionBuilder {
	b.entity.IsActive = active
	return b
}

// Build returns the built entity without inserting to DB
func (b *SubscriptionBuilder) Build() *subscription.Subscription {
	return b.entity
}

// Insert inserts the subscription into the database and returns the entity
func (b *SubscriptionBuilder) Insert() (*subscription.Subscription, error) {
	if b.entity.UserID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	if b.entity.StrategyID == uuid.Nil {
		return nil, fmt.Errorf("strategy_id is required")
	}

	channels, err := json.Marshal(b.entity.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal channels: %w", err)
	}

	query := `
		INSERT INTO subscriptions (
			id, user_id, strategy_id, channels, min_confidence,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = b.db.ExecContext(
		b.ctx,
		query,
		b.entity.ID,
		b.entity.UserID,
		b.entity.StrategyID,
		channels,
		b.entity.MinConfidence,
		b.entity.IsActive,
		b.entity.CreatedAt,
		b.entity.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to insert subscription: %w", err)
	}

	return b.entity, nil
}

// MustInsert inserts the subscription and panics on error (useful for tests)
func (b *SubscriptionBuilder) MustInsert() *subscription.Subscription {
	entity, err := b.Insert()
	if err != nil {
		panic(err)
	}
	return entity
}
