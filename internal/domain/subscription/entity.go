package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Channel names a delivery transport
type Channel string

const (
	ChannelTelegram  Channel = "telegram"
	ChannelWebSocket Channel = "websocket"
)

// Valid checks if channel is valid
func (c Channel) Valid() bool {
	return c == ChannelTelegram || c == ChannelWebSocket
}

// Subscription binds a user to a strategy's signal stream
type Subscription struct {
	ID         uuid.UUID `db:"id"`
	UserID     uuid.UUID `db:"user_id"`
	StrategyID uuid.UUID `db:"strategy_id"`

	// Channels to deliver on, stored as JSONB
	Channels Channels `db:"channels"`

	// MinConfidence filters signals below this threshold; the user's
	// account-level threshold still applies on top
	MinConfidence float64 `db:"min_confidence"`

	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Channels is a JSONB-backed channel list
type Channels []Channel

// Has reports whether the subscription includes the channel.
func (c Channels) Has(channel Channel) bool {
	for _, x := range c {
		if x == channel {
			return true
		}
	}
	return false
}
