package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Memory is a stored decision trace with its vector embedding.
// Agents retrieve similar past cases as optional context before
// reasoning about a symbol again.
type Memory struct {
	ID         uuid.UUID `db:"id"`
	StrategyID uuid.UUID `db:"strategy_id"`
	AgentID    string    `db:"agent_id"`
	RunID      string    `db:"run_id"`

	Type    Type   `db:"type"`
	Content string `db:"content"`

	// Embedding metadata (critical for search compatibility)
	Embedding           pgvector.Vector `db:"embedding"` // pgvector handles this automatically
	EmbeddingModel      string          `db:"embedding_model"`
	EmbeddingDimensions int             `db:"embedding_dimensions"`

	// Columns kept out of metadata for fast filtering
	Symbol     string  `db:"symbol"`
	Importance float64 `db:"importance"` // 0-1, for retrieval ranking

	// Flexible metadata storage (confidence, tier, related signal id)
	Metadata map[string]interface{} `db:"metadata"`

	CreatedAt time.Time  `db:"created_at"`
	ExpiresAt *time.Time `db:"expires_at"` // TTL for short-lived entries
}

// Type defines the kind of memory
type Type string

const (
	TypeDecision    Type = "decision"    // reasoning behind a signal
	TypeOutcome     Type = "outcome"     // how the signal played out
	TypeObservation Type = "observation" // market observation
	TypeLesson      Type = "lesson"      // learned pattern
)

// Valid checks if memory type is valid
func (t Type) Valid() bool {
	switch t {
	case TypeDecision, TypeOutcome, TypeObservation, TypeLesson:
		return true
	}
	return false
}
