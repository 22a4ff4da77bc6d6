package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for subscription data access
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	GetByUserAndStrategy(ctx context.Context, userID, strategyID uuid.UUID) (*Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Subscription, error)

	// ListActiveByStrategy returns active subscriptions for fan-out
	// when the strategy emits a signal
	ListActiveByStrategy(ctx context.Context, strategyID uuid.UUID) ([]*Subscription, error)

	CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Update(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, id uuid.UUID) error
}
