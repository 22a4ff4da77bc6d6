package strategy

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

const defaultIntervalSeconds = 3600

// Service provides business logic for strategy operations.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService constructs a strategy service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.Get()}
}

// Create validates and persists a new strategy.
func (s *Service) Create(ctx context.Context, st *Strategy) error {
	if st == nil {
		return errors.Wrap(errors.ErrInvalidInput, "strategy is nil")
	}
	if st.Name == "" {
		return errors.Wrap(errors.ErrInvalidInput, "strategy name required")
	}
	if len(st.Symbols) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "strategy needs at least one symbol")
	}
	if st.Workflow == "" {
		st.Workflow = WorkflowStrategyDecision
	}
	if !st.Workflow.Valid() {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown workflow kind %q", st.Workflow)
	}

	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	if st.Status == "" {
		st.Status = StatusActive
	}
	if st.IntervalSeconds <= 0 {
		st.IntervalSeconds = defaultIntervalSeconds
	}
	if st.Parameters == nil {
		st.Parameters = json.RawMessage("{}")
	}
	now := time.Now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now

	if err := s.repo.Create(ctx, st); err != nil {
		return errors.Wrap(err, "create strategy")
	}
	s.log.Infow("strategy created", "strategy_id", st.ID, "name", st.Name, "workflow", st.Workflow)
	return nil
}

// GetByID retrieves a strategy by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Strategy, error) {
	if id == uuid.Nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "strategy id required")
	}
	return s.repo.GetByID(ctx, id)
}

// GetByName retrieves a strategy by its unique name.
func (s *Service) GetByName(ctx context.Context, name string) (*Strategy, error) {
	if name == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "strategy name required")
	}
	return s.repo.GetByName(ctx, name)
}

// List returns a page of strategies.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Strategy, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, limit, offset)
}

// ListDue returns active strategies ready for evaluation.
func (s *Service) ListDue(ctx context.Context, now time.Time) ([]*Strategy, error) {
	return s.repo.ListDue(ctx, now)
}

// SetStatus transitions the strategy lifecycle state.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown status %q", status)
	}
	st, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if st.Status == StatusArchived {
		return errors.Wrap(errors.ErrInvalidInput, "archived strategies cannot change status")
	}
	st.Status = status
	st.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, st)
}

// MarkRun records a completed evaluation.
func (s *Service) MarkRun(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.repo.MarkRun(ctx, id, at)
}

// Archive soft-deletes the strategy.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.Wrap(errors.ErrInvalidInput, "strategy id required")
	}
	return s.repo.Archive(ctx, id)
}
