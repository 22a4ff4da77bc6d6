package ws

import (
	"context"
	"encoding/json"
	"time"

	"minerva/internal/domain/signal"
	"minerva/internal/domain/user"
	"minerva/pkg/errors"
)

// signalPayload is the wire shape pushed to websocket subscribers
type signalPayload struct {
	Type        string    `json:"type"`
	SignalID    string    `json:"signal_id"`
	StrategyID  string    `json:"strategy_id"`
	Symbol      string    `json:"symbol"`
	Kind        string    `json:"kind"`
	Confidence  float64   `json:"confidence"`
	Tier        string    `json:"tier"`
	Price       string    `json:"price"`
	TargetPrice string    `json:"target_price,omitempty"`
	StopLoss    string    `json:"stop_loss,omitempty"`
	Reasoning   []string  `json:"reasoning,omitempty"`
	RiskFactors []string  `json:"risk_factors,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Sender delivers signals over the websocket hub. It implements
// notification.Sender.
type Sender struct {
	hub *Hub
}

// NewSender wraps a hub as a notification channel.
func NewSender(hub *Hub) *Sender {
	return &Sender{hub: hub}
}

// Channel reports the transport this sender serves.
func (s *Sender) Channel() string {
	return "websocket"
}

// Send pushes the signal to every open connection of the user. A user
// with no connections is a delivery failure so the notification layer
// can retry once they reconnect.
func (s *Sender) Send(ctx context.Context, u *user.User, sig *signal.Signal) error {
	payload := signalPayload{
		Type:       "signal",
		SignalID:   sig.ID.String(),
		StrategyID: sig.StrategyID.String(),
		Symbol:     sig.Symbol,
		Kind:       string(sig.Kind),
		Confidence: sig.Confidence,
		Tier:       sig.Tier,
		Price:      sig.Price.String(),
		Reasoning:  []string(sig.Reasoning),
		CreatedAt:  sig.CreatedAt,
	}
	if sig.TargetPrice.Valid {
		payload.TargetPrice = sig.TargetPrice.Decimal.String()
	}
	if sig.StopLoss.Valid {
		payload.StopLoss = sig.StopLoss.Decimal.String()
	}
	if len(sig.RiskFactors) > 0 {
		payload.RiskFactors = []string(sig.RiskFactors)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal signal payload")
	}

	if !s.hub.SendToUser(u.ID, data) {
		return errors.Wrapf(errors.ErrNotFound, "user %s has no websocket connections", u.ID)
	}

	return nil
}
