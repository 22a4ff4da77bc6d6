package strategy

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines operations for strategy persistence
type Repository interface {
	// Create creates a new strategy
	Create(ctx context.Context, strategy *Strategy) error

	// GetByID retrieves a strategy by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Strategy, error)

	// GetByName retrieves a strategy by its unique name
	GetByName(ctx context.Context, name string) (*Strategy, error)

	// List retrieves strategies with pagination
	List(ctx context.Context, limit, offset int) ([]*Strategy, error)

	// ListActive retrieves all active strategies
	ListActive(ctx context.Context) ([]*Strategy, error)

	// ListDue retrieves active strategies whose evaluation interval has
	// elapsed at the given time
	ListDue(ctx context.Context, now time.Time) ([]*Strategy, error)

	// Update updates an existing strategy
	Update(ctx context.Context, strategy *Strategy) error

	// MarkRun records the last evaluation time without loading the
	// full strategy
	MarkRun(ctx context.Context, id uuid.UUID, at time.Time) error

	// Archive soft-deletes a strategy (sets status to archived)
	Archive(ctx context.Context, id uuid.UUID) error
}
