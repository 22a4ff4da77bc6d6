package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"minerva/internal/domain/memory"
	"minerva/pkg/errors"
)

// Compile-time check
var _ memory.Repository = (*MemoryRepository)(nil)

// MemoryRepository implements memory.Repository using sqlx and pgvector
type MemoryRepository struct {
	db DBTX
}

// NewMemoryRepository creates a new memory repository
func NewMemoryRepository(db DBTX) *MemoryRepository {
	return &MemoryRepository{db: db}
}

const memoryColumns = `id, strategy_id, agent_id, run_id, type, content, embedding,
	embedding_model, embedding_dimensions, symbol, importance, metadata, created_at, expires_at`

// Store inserts a new memory
func (r *MemoryRepository) Store(ctx context.Context, m *memory.Memory) error {
	metadataJSON, err := json.Marshal(m.Metadata)
	if err != nil {
		return errors.Wrap(err, "failed to marshal metadata")
	}

	query := `
		INSERT INTO memories (
			id, strategy_id, agent_id, run_id, type, content, embedding,
			embedding_model, embedding_dimensions, symbol, importance, metadata, created_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)`

	_, err = r.db.ExecContext(ctx, query,
		m.ID, m.StrategyID, m.AgentID, m.RunID, m.Type, m.Content, m.Embedding,
		m.EmbeddingModel, m.EmbeddingDimensions, m.Symbol, m.Importance, metadataJSON,
		m.CreatedAt, m.ExpiresAt,
	)
	return err
}

func scanMemory(scan func(dest ...interface{}) error) (*memory.Memory, error) {
	var m memory.Memory
	var metadataJSON []byte

	err := scan(
		&m.ID, &m.StrategyID, &m.AgentID, &m.RunID, &m.Type, &m.Content, &m.Embedding,
		&m.EmbeddingModel, &m.EmbeddingDimensions, &m.Symbol, &m.Importance, &metadataJSON,
		&m.CreatedAt, &m.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "memory not found")
	}
	if err != nil {
		return nil, err
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &m.Metadata); err != nil {
			m.Metadata = nil
		}
	}
	return &m, nil
}

func (r *MemoryRepository) list(ctx context.Context, query string, args ...interface{}) ([]*memory.Memory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*memory.Memory
	for rows.Next() {
		m, err := scanMemory(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetByID retrieves a memory by ID
func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*memory.Memory, error) {
	query := `SELECT ` + memoryColumns + ` FROM memories WHERE id = $1`
	return scanMemory(r.db.QueryRowContext(ctx, query, id).Scan)
}

// SearchSimilar performs semantic search using pgvector cosine distance
func (r *MemoryRepository) SearchSimilar(ctx context.Context, strategyID uuid.UUID, symbol string, embedding pgvector.Vector, limit int) ([]*memory.Memory, error) {
	query := `
		SELECT ` + memoryColumns + `
		FROM memories
		WHERE strategy_id = $1 AND symbol = $2
		  AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY embedding <=> $3
		LIMIT $4`
	return r.list(ctx, query, strategyID, symbol, embedding, limit)
}

// GetBySymbol retrieves recent memories for a strategy/symbol pair
func (r *MemoryRepository) GetBySymbol(ctx context.Context, strategyID uuid.UUID, symbol string, limit int) ([]*memory.Memory, error) {
	query := `
		SELECT ` + memoryColumns + `
		FROM memories
		WHERE strategy_id = $1 AND symbol = $2
		  AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY created_at DESC
		LIMIT $3`
	return r.list(ctx, query, strategyID, symbol, limit)
}

// GetByType retrieves memories by type, ranked by importance
func (r *MemoryRepository) GetByType(ctx context.Context, strategyID uuid.UUID, memType memory.Type, limit int) ([]*memory.Memory, error) {
	query := `
		SELECT ` + memoryColumns + `
		FROM memories
		WHERE strategy_id = $1 AND type = $2
		  AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY importance DESC, created_at DESC
		LIMIT $3`
	return r.list(ctx, query, strategyID, memType, limit)
}

// DeleteExpired removes expired memories
func (r *MemoryRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM memories WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
