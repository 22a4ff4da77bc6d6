package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"minerva/internal/domain/notification"
	"minerva/pkg/errors"
)

// Compile-time check that we implement the interface
var _ notification.Repository = (*NotificationRepository)(nil)

// NotificationRepository implements notification.Repository using sqlx
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, signal_id, channel, status, error, sent_at, created_at`

// Create inserts a new notification record
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, signal_id, channel, status, error, sent_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.SignalID, n.Channel, n.Status, n.Error, n.SentAt, n.CreatedAt,
	)
	return err
}

func scanNotification(scan func(dest ...interface{}) error) (*notification.Notification, error) {
	var n notification.Notification
	err := scan(&n.ID, &n.UserID, &n.SignalID, &n.Channel, &n.Status, &n.Error, &n.SentAt, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "notification not found")
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	return scanNotification(r.db.QueryRowContext(ctx, query, id).Scan)
}

// MarkSent records successful delivery
func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = 'sent', sent_at = $2, error = '' WHERE id = $1`, id, at)
	return err
}

// MarkFailed records a delivery failure
func (r *NotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = 'failed', error = $2 WHERE id = $1`, id, reason)
	return err
}

func (r *NotificationRepository) list(ctx context.Context, query string, args ...interface{}) ([]*notification.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ListPending returns undelivered notifications oldest first
func (r *NotificationRepository) ListPending(ctx context.Context, limit int) ([]*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE status = 'pending' ORDER BY created_at LIMIT $1`
	return r.list(ctx, query, limit)
}

// ListByUser returns the user's notification history
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	return r.list(ctx, query, userID, limit)
}
