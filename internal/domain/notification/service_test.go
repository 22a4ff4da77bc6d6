package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/domain/notification"
	"minerva/internal/domain/signal"
	"minerva/internal/domain/subscription"
	"minerva/internal/domain/user"
	"minerva/pkg/errors"
)

type memRepo struct {
	created []*notification.Notification
	sent    []uuid.UUID
	failed  map[uuid.UUID]string
}

func newMemRepo() *memRepo {
	return &memRepo{failed: make(map[uuid.UUID]string)}
}

func (m *memRepo) Create(ctx context.Context, n *notification.Notification) error {
	m.created = append(m.created, n)
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	return nil, errors.ErrNotFound
}

func (m *memRepo) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.sent = append(m.sent, id)
	return nil
}

func (m *memRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	m.failed[id] = reason
	return nil
}

func (m *memRepo) ListPending(ctx context.Context, limit int) ([]*notification.Notification, error) {
	return nil, nil
}

func (m *memRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*notification.Notification, error) {
	return nil, nil
}

type stubUsers struct {
	users map[uuid.UUID]*user.User
}

func (s *stubUsers) Create(ctx context.Context, u *user.User) error { return nil }

func (s *stubUsers) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, errors.ErrNotFound
}

func (s *stubUsers) GetByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	return nil, errors.ErrNotFound
}

func (s *stubUsers) Update(ctx context.Context, u *user.User) error { return nil }
func (s *stubUsers) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (s *stubUsers) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	return nil, nil
}
func (s *stubUsers) ListActive(ctx context.Context) ([]*user.User, error) { return nil, nil }

type stubAudience struct {
	subs []*subscription.Subscription
}

func (s *stubAudience) Audience(ctx context.Context, strategyID uuid.UUID, confidence float64) ([]*subscription.Subscription, error) {
	return s.subs, nil
}

type stubSender struct {
	channel string
	sent    []uuid.UUID
	err     error
}

func (s *stubSender) Channel() string { return s.channel }

func (s *stubSender) Send(ctx context.Context, u *user.User, sig *signal.Signal) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, u.ID)
	return nil
}

func testSignal(confidence float64) *signal.Signal {
	return &signal.Signal{
		ID:         uuid.New(),
		StrategyID: uuid.New(),
		Symbol:     "600519",
		Kind:       signal.KindBuy,
		Confidence: confidence,
	}
}

func TestDispatch_DeliversToMatchingSubscribers(t *testing.T) {
	u := &user.User{ID: uuid.New(), IsActive: true, Settings: user.DefaultSettings()}
	sub := &subscription.Subscription{
		UserID:   u.ID,
		Channels: subscription.Channels{subscription.ChannelTelegram},
		IsActive: true,
	}

	repo := newMemRepo()
	sender := &stubSender{channel: "telegram"}
	svc := notification.NewService(
		repo,
		&stubUsers{users: map[uuid.UUID]*user.User{u.ID: u}},
		&stubAudience{subs: []*subscription.Subscription{sub}},
		[]notification.Sender{sender},
	)

	err := svc.Dispatch(context.Background(), testSignal(0.8))
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Len(t, repo.sent, 1)
	assert.Equal(t, []uuid.UUID{u.ID}, sender.sent)
}

func TestDispatch_UserThresholdFilters(t *testing.T) {
	u := &user.User{ID: uuid.New(), IsActive: true, Settings: user.DefaultSettings()}
	u.Settings.MinConfidence = 0.9
	sub := &subscription.Subscription{
		UserID:   u.ID,
		Channels: subscription.Channels{subscription.ChannelTelegram},
		IsActive: true,
	}

	repo := newMemRepo()
	sender := &stubSender{channel: "telegram"}
	svc := notification.NewService(
		repo,
		&stubUsers{users: map[uuid.UUID]*user.User{u.ID: u}},
		&stubAudience{subs: []*subscription.Subscription{sub}},
		[]notification.Sender{sender},
	)

	err := svc.Dispatch(context.Background(), testSignal(0.6))
	require.NoError(t, err)

	assert.Empty(t, repo.created)
	assert.Empty(t, sender.sent)
}

func TestDispatch_SenderFailureRecorded(t *testing.T) {
	u := &user.User{ID: uuid.New(), IsActive: true, Settings: user.DefaultSettings()}
	sub := &subscription.Subscription{
		UserID:   u.ID,
		Channels: subscription.Channels{subscription.ChannelTelegram},
		IsActive: true,
	}

	repo := newMemRepo()
	sender := &stubSender{channel: "telegram", err: errors.New("chat blocked")}
	svc := notification.NewService(
		repo,
		&stubUsers{users: map[uuid.UUID]*user.User{u.ID: u}},
		&stubAudience{subs: []*subscription.Subscription{sub}},
		[]notification.Sender{sender},
	)

	err := svc.Dispatch(context.Background(), testSignal(0.8))
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Empty(t, repo.sent)
	assert.Equal(t, "chat blocked", repo.failed[repo.created[0].ID])
}

func TestDispatch_DisabledChannelSkipped(t *testing.T) {
	u := &user.User{ID: uuid.New(), IsActive: true, Settings: user.DefaultSettings()}
	u.Settings.Channels = []string{"websocket"}
	sub := &subscription.Subscription{
		UserID:   u.ID,
		Channels: subscription.Channels{subscription.ChannelTelegram},
		IsActive: true,
	}

	repo := newMemRepo()
	sender := &stubSender{channel: "telegram"}
	svc := notification.NewService(
		repo,
		&stubUsers{users: map[uuid.UUID]*user.User{u.ID: u}},
		&stubAudience{subs: []*subscription.Subscription{sub}},
		[]notification.Sender{sender},
	)

	err := svc.Dispatch(context.Background(), testSignal(0.8))
	require.NoError(t, err)

	assert.Empty(t, repo.created)
}
