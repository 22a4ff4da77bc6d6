package signal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// Service provides business logic for signal operations.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService constructs a signal service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.Get()}
}

// Record validates and persists a generated signal.
func (s *Service) Record(ctx context.Context, sig *Signal) error {
	if sig == nil {
		return errors.Wrap(errors.ErrInvalidInput, "signal is nil")
	}
	if sig.StrategyID == uuid.Nil {
		return errors.Wrap(errors.ErrInvalidInput, "strategy id required")
	}
	if sig.Symbol == "" {
		return errors.Wrap(errors.ErrInvalidInput, "symbol required")
	}
	if !sig.Kind.Valid() {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown signal kind %q", sig.Kind)
	}
	if sig.Confidence < 0 || sig.Confidence > 1 {
		return errors.Wrap(errors.ErrInvalidInput, "confidence must be in [0,1]")
	}

	if sig.ID == uuid.Nil {
		sig.ID = uuid.New()
	}
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.Create(ctx, sig); err != nil {
		return errors.Wrap(err, "record signal")
	}
	s.log.Infow("signal recorded",
		"signal_id", sig.ID,
		"strategy_id", sig.StrategyID,
		"symbol", sig.Symbol,
		"kind", sig.Kind,
		"confidence", sig.Confidence,
	)
	return nil
}

// GetByID fetches a signal by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Signal, error) {
	if id == uuid.Nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "signal id required")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns signals matching the query.
func (s *Service) List(ctx context.Context, q Query) ([]*Signal, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	return s.repo.List(ctx, q)
}

// LatestBySymbol returns the most recent signal for a strategy/symbol pair.
func (s *Service) LatestBySymbol(ctx context.Context, strategyID uuid.UUID, symbol string) (*Signal, error) {
	if strategyID == uuid.Nil || symbol == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "strategy id and symbol required")
	}
	return s.repo.GetLatestBySymbol(ctx, strategyID, symbol)
}
