package notification

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks delivery lifecycle
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Notification records one delivery attempt of a signal to a user on
// one channel.
type Notification struct {
	ID       uuid.UUID `db:"id"`
	UserID   uuid.UUID `db:"user_id"`
	SignalID uuid.UUID `db:"signal_id"`

	Channel string `db:"channel"`
	Status  Status `db:"status"`

	// Error holds the delivery failure reason when Status is failed
	Error string `db:"error"`

	SentAt    *time.Time `db:"sent_at"`
	CreatedAt time.Time  `db:"created_at"`
}
