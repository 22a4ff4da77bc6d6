package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for notification data access
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// MarkSent records successful delivery
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error

	// MarkFailed records a delivery failure with its reason
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error

	// ListPending returns undelivered notifications for retry sweeps
	ListPending(ctx context.Context, limit int) ([]*Notification, error)

	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Notification, error)
}
