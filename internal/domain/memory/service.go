package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// Embedder generates vector embeddings for memory content.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Name() string
}

// Service stores decision traces with embeddings and recalls similar
// past cases.
type Service struct {
	repo     Repository
	embedder Embedder
	log      *logger.Logger
}

// NewService constructs a memory service.
func NewService(repo Repository, embedder Embedder) *Service {
	return &Service{repo: repo, embedder: embedder, log: logger.Get()}
}

// Remember embeds the content and persists it as a memory entry.
func (s *Service) Remember(ctx context.Context, m *Memory) error {
	if m == nil {
		return errors.ErrInvalidInput
	}
	if m.StrategyID == uuid.Nil || m.Content == "" {
		return errors.ErrInvalidInput
	}
	if !m.Type.Valid() {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown memory type %q", m.Type)
	}

	vec, err := s.embedder.GenerateEmbedding(ctx, m.Content)
	if err != nil {
		return errors.Wrap(err, "embed memory")
	}
	m.Embedding = pgvector.NewVector(vec)
	m.EmbeddingModel = s.embedder.Name()
	m.EmbeddingDimensions = s.embedder.Dimensions()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.Store(ctx, m); err != nil {
		return errors.Wrap(err, "store memory")
	}
	return nil
}

// Recall embeds the query and returns the most similar stored cases
// for the strategy/symbol pair.
func (s *Service) Recall(ctx context.Context, strategyID uuid.UUID, symbol, query string, limit int) ([]*Memory, error) {
	if strategyID == uuid.Nil || query == "" {
		return nil, errors.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 5
	}

	vec, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}

	results, err := s.repo.SearchSimilar(ctx, strategyID, symbol, pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, errors.Wrap(err, "search memory")
	}
	return results, nil
}

// Prune removes expired entries. Run from the periodic sweep worker.
func (s *Service) Prune(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "prune memory")
	}
	if n > 0 {
		s.log.Infow("expired memories pruned", "count", n)
	}
	return n, nil
}
