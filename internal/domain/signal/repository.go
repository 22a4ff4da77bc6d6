package signal

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for signal data access
type Repository interface {
	Create(ctx context.Context, sig *Signal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Signal, error)
	List(ctx context.Context, q Query) ([]*Signal, error)

	// GetLatestBySymbol returns the most recent signal a strategy
	// produced for the symbol
	GetLatestBySymbol(ctx context.Context, strategyID uuid.UUID, symbol string) (*Signal, error)
}
