package subscription_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/domain/subscription"
	"minerva/internal/domain/user"
	"minerva/pkg/errors"
)

type mockSubRepo struct {
	byPair map[string]*subscription.Subscription
	active []*subscription.Subscription
	count  int
}

func pairKey(userID, strategyID uuid.UUID) string {
	return userID.String() + "/" + strategyID.String()
}

func (m *mockSubRepo) Create(ctx context.Context, sub *subscription.Subscription) error {
	if m.byPair == nil {
		m.byPair = make(map[string]*subscription.Subscription)
	}
	m.byPair[pairKey(sub.UserID, sub.StrategyID)] = sub
	return nil
}

func (m *mockSubRepo) GetByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	for _, sub := range m.byPair {
		if sub.ID == id {
			return sub, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (m *mockSubRepo) GetByUserAndStrategy(ctx context.Context, userID, strategyID uuid.UUID) (*subscription.Subscription, error) {
	if sub, ok := m.byPair[pairKey(userID, strategyID)]; ok {
		return sub, nil
	}
	return nil, errors.ErrNotFound
}

func (m *mockSubRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*subscription.Subscription, error) {
	return nil, nil
}

func (m *mockSubRepo) ListActiveByStrategy(ctx context.Context, strategyID uuid.UUID) ([]*subscription.Subscription, error) {
	return m.active, nil
}

func (m *mockSubRepo) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.count, nil
}

func (m *mockSubRepo) Update(ctx context.Context, sub *subscription.Subscription) error { return nil }
func (m *mockSubRepo) Delete(ctx context.Context, id uuid.UUID) error                   { return nil }

type mockUserRepo struct {
	user *user.User
}

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) error { return nil }

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.user != nil {
		return m.user, nil
	}
	return nil, errors.ErrNotFound
}

func (m *mockUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	return nil, errors.ErrNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, u *user.User) error { return nil }
func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	return nil, nil
}
func (m *mockUserRepo) ListActive(ctx context.Context) ([]*user.User, error) { return nil, nil }

func activeUser() *user.User {
	return &user.User{ID: uuid.New(), IsActive: true, Settings: user.DefaultSettings()}
}

func TestSubscribe_Defaults(t *testing.T) {
	u := activeUser()
	repo := &mockSubRepo{}
	svc := subscription.NewService(repo, &mockUserRepo{user: u})

	sub, err := svc.Subscribe(context.Background(), u.ID, uuid.New(), nil, 0.6)
	require.NoError(t, err)

	assert.True(t, sub.IsActive)
	assert.Equal(t, subscription.Channels{subscription.ChannelTelegram}, sub.Channels)
	assert.Equal(t, 0.6, sub.MinConfidence)
}

func TestSubscribe_Duplicate(t *testing.T) {
	u := activeUser()
	repo := &mockSubRepo{}
	svc := subscription.NewService(repo, &mockUserRepo{user: u})

	strategyID := uuid.New()
	_, err := svc.Subscribe(context.Background(), u.ID, strategyID, nil, 0.5)
	require.NoError(t, err)

	_, err = svc.Subscribe(context.Background(), u.ID, strategyID, nil, 0.5)
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))
}

func TestSubscribe_LimitReached(t *testing.T) {
	u := activeUser()
	u.Settings.MaxSubscriptions = 2
	repo := &mockSubRepo{count: 2}
	svc := subscription.NewService(repo, &mockUserRepo{user: u})

	_, err := svc.Subscribe(context.Background(), u.ID, uuid.New(), nil, 0.5)
	assert.True(t, errors.Is(err, errors.ErrRateLimitExceeded))
}

func TestSubscribe_InactiveUser(t *testing.T) {
	u := activeUser()
	u.IsActive = false
	svc := subscription.NewService(&mockSubRepo{}, &mockUserRepo{user: u})

	_, err := svc.Subscribe(context.Background(), u.ID, uuid.New(), nil, 0.5)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestAudience_ConfidenceFilter(t *testing.T) {
	strict := &subscription.Subscription{ID: uuid.New(), MinConfidence: 0.8, IsActive: true}
	loose := &subscription.Subscription{ID: uuid.New(), MinConfidence: 0.3, IsActive: true}
	repo := &mockSubRepo{active: []*subscription.Subscription{strict, loose}}
	svc := subscription.NewService(repo, &mockUserRepo{})

	audience, err := svc.Audience(context.Background(), uuid.New(), 0.6)
	require.NoError(t, err)

	require.Len(t, audience, 1)
	assert.Equal(t, loose.ID, audience[0].ID)
}
