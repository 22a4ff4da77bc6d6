package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// Service provides business logic for user operations.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService constructs a user service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.Get()}
}

// Register creates a user from a Telegram identity, or returns the
// existing one. Settings default when not provided.
func (s *Service) Register(ctx context.Context, u *User) (*User, error) {
	if u == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "user is nil")
	}
	if u.TelegramID == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "telegram id required")
	}

	existing, err := s.repo.GetByTelegramID(ctx, u.TelegramID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Wrap(err, "register user")
	}

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.IsActive = true
	if len(u.Settings.Channels) == 0 {
		u.Settings = DefaultSettings()
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, "register user")
	}
	s.log.Infow("user registered", "user_id", u.ID, "telegram_id", u.TelegramID)
	return u, nil
}

// GetByID fetches a user by UUID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if id == uuid.Nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "user id required")
	}
	return s.repo.GetByID(ctx, id)
}

// GetByTelegramID fetches a user using the Telegram identifier.
func (s *Service) GetByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	if telegramID == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "telegram id required")
	}
	return s.repo.GetByTelegramID(ctx, telegramID)
}

// UpdateSettings replaces the user's delivery preferences.
func (s *Service) UpdateSettings(ctx context.Context, id uuid.UUID, settings Settings) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if settings.MinConfidence < 0 || settings.MinConfidence > 1 {
		return errors.Wrap(errors.ErrInvalidInput, "min confidence must be in [0,1]")
	}
	u.Settings = settings
	u.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, u)
}

// Deactivate marks the user inactive without deleting history.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.IsActive = false
	u.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, u)
}

// List returns a paginated list of users.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, limit, offset)
}
