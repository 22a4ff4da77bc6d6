package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"minerva/internal/domain/subscription"
	"minerva/pkg/errors"
)

// Compile-time check that we implement the interface
var _ subscription.Repository = (*SubscriptionRepository)(nil)

// SubscriptionRepository implements subscription.Repository using sqlx
type SubscriptionRepository struct {
	db DBTX
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, strategy_id, channels, min_confidence,
	is_active, created_at, updated_at`

// Create inserts a new subscription
func (r *SubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	channelsJSON, err := json.Marshal(sub.Channels)
	if err != nil {
		return errors.Wrap(err, "failed to marshal channels")
	}

	query := `
		INSERT INTO subscriptions (
			id, user_id, strategy_id, channels, min_confidence,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.StrategyID, channelsJSON, sub.MinConfidence,
		sub.IsActive, sub.CreatedAt, sub.UpdatedAt,
	)
	return err
}

func scanSubscription(scan func(dest ...interface{}) error) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	var channelsJSON []byte

	err := scan(
		&sub.ID, &sub.UserID, &sub.StrategyID, &channelsJSON, &sub.MinConfidence,
		&sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "subscription not found")
	}
	if err != nil {
		return nil, err
	}

	if len(channelsJSON) > 0 {
		if err := json.Unmarshal(channelsJSON, &sub.Channels); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal channels")
		}
	}
	return &sub, nil
}

// GetByID retrieves a subscription by ID
func (r *SubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	return scanSubscription(r.db.QueryRowContext(ctx, query, id).Scan)
}

// GetByUserAndStrategy retrieves the unique user/strategy pair
func (r *SubscriptionRepository) GetByUserAndStrategy(ctx context.Context, userID, strategyID uuid.UUID) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE user_id = $1 AND strategy_id = $2`
	return scanSubscription(r.db.QueryRowContext(ctx, query, userID, strategyID).Scan)
}

func (r *SubscriptionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*subscription.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*subscription.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// ListByUser retrieves all subscriptions for a user
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListActiveByStrategy retrieves active subscriptions for fan-out
func (r *SubscriptionRepository) ListActiveByStrategy(ctx context.Context, strategyID uuid.UUID) ([]*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE strategy_id = $1 AND is_active = true`
	return r.list(ctx, query, strategyID)
}

// CountActiveByUser counts the user's active subscriptions
func (r *SubscriptionRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM subscriptions WHERE user_id = $1 AND is_active = true`, userID)
	return count, err
}

// Update updates an existing subscription
func (r *SubscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	channelsJSON, err := json.Marshal(sub.Channels)
	if err != nil {
		return errors.Wrap(err, "failed to marshal channels")
	}

	query := `
		UPDATE subscriptions SET
			channels = $2,
			min_confidence = $3,
			is_active = $4,
			updated_at = NOW()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, sub.ID, channelsJSON, sub.MinConfidence, sub.IsActive)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrap(errors.ErrNotFound, "subscription not found")
	}
	return nil
}

// Delete removes a subscription
func (r *SubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrap(errors.ErrNotFound, "subscription not found")
	}
	return nil
}
