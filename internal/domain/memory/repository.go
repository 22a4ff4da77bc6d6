package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Repository handles decision-memory persistence and retrieval
type Repository interface {
	Store(ctx context.Context, memory *Memory) error
	GetByID(ctx context.Context, id uuid.UUID) (*Memory, error)

	// SearchSimilar performs cosine-similarity retrieval scoped to a
	// strategy and symbol
	SearchSimilar(ctx context.Context, strategyID uuid.UUID, symbol string, embedding pgvector.Vector, limit int) ([]*Memory, error)

	GetBySymbol(ctx context.Context, strategyID uuid.UUID, symbol string, limit int) ([]*Memory, error)
	GetByType(ctx context.Context, strategyID uuid.UUID, memType Type, limit int) ([]*Memory, error)
	DeleteExpired(ctx context.Context) (int64, error)
}
