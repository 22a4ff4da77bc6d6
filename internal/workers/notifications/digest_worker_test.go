package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/domain/signal"
	"minerva/internal/domain/strategy"
	"minerva/internal/domain/subscription"
	"minerva/internal/domain/user"
	"minerva/pkg/errors"
)

type mockUserRepo struct {
	users []*user.User
}

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) error { return nil }
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.ErrNotFound
}
func (m *mockUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	return nil, errors.ErrNotFound
}
func (m *mockUserRepo) Update(ctx context.Context, u *user.User) error { return nil }
func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	if offset >= len(m.users) {
		return nil, nil
	}
	return m.users[offset:], nil
}
func (m *mockUserRepo) ListActive(ctx context.Context) ([]*user.User, error) { return m.users, nil }

type mockSubRepo struct {
	subs []*subscription.Subscription
}

func (m *mockSubRepo) Create(ctx context.Context, sub *subscription.Subscription) error { return nil }
func (m *mockSubRepo) GetByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	return nil, errors.ErrNotFound
}
func (m *mockSubRepo) GetByUserAndStrategy(ctx context.Context, userID, strategyID uuid.UUID) (*subscription.Subscription, error) {
	return nil, errors.ErrNotFound
}
func (m *mockSubRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*subscription.Subscription, error) {
	return m.subs, nil
}
func (m *mockSubRepo) ListActiveByStrategy(ctx context.Context, strategyID uuid.UUID) ([]*subscription.Subscription, error) {
	return m.subs, nil
}
func (m *mockSubRepo) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return len(m.subs), nil
}
func (m *mockSubRepo) Update(ctx context.Context, sub *subscription.Subscription) error { return nil }
func (m *mockSubRepo) Delete(ctx context.Context, id uuid.UUID) error                   { return nil }

type mockStrategyRepo struct {
	byID map[uuid.UUID]*strategy.Strategy
}

func (m *mockStrategyRepo) Create(ctx context.Context, s *strategy.Strategy) error { return nil }
func (m *mockStrategyRepo) GetByID(ctx context.Context, id uuid.UUID) (*strategy.Strategy, error) {
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return nil, errors.ErrNotFound
}
func (m *mockStrategyRepo) GetByName(ctx context.Context, name string) (*strategy.Strategy, error) {
	return nil, errors.ErrNotFound
}
func (m *mockStrategyRepo) List(ctx context.Context, limit, offset int) ([]*strategy.Strategy, error) {
	return nil, nil
}
func (m *mockStrategyRepo) ListActive(ctx context.Context) ([]*strategy.Strategy, error) {
	return nil, nil
}
func (m *mockStrategyRepo) ListDue(ctx context.Context, now time.Time) ([]*strategy.Strategy, error) {
	return nil, nil
}
func (m *mockStrategyRepo) Update(ctx context.Context, s *strategy.Strategy) error        { return nil }
func (m *mockStrategyRepo) MarkRun(ctx context.Context, id uuid.UUID, at time.Time) error { return nil }
func (m *mockStrategyRepo) Archive(ctx context.Context, id uuid.UUID) error               { return nil }

type mockSignalRepo struct {
	signals []*signal.Signal
}

func (m *mockSignalRepo) Create(ctx context.Context, sig *signal.Signal) error { return nil }
func (m *mockSignalRepo) GetByID(ctx context.Context, id uuid.UUID) (*signal.Signal, error) {
	return nil, errors.ErrNotFound
}
func (m *mockSignalRepo) List(ctx context.Context, q signal.Query) ([]*signal.Signal, error) {
	return m.signals, nil
}
func (m *mockSignalRepo) GetLatestBySymbol(ctx context.Context, strategyID uuid.UUID, symbol string) (*signal.Signal, error) {
	return nil, errors.ErrNotFound
}

type mockDigestSender struct {
	sent []string
}

func (m *mockDigestSender) SendMessageWithContext(ctx context.Context, chatID int64, text string) error {
	m.sent = append(m.sent, text)
	return nil
}

type stubLocker struct {
	denied bool
}

func (s *stubLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return !s.denied, nil
}
func (s *stubLocker) Release(ctx context.Context, name string) error { return nil }

func digestUser() *user.User {
	u := &user.User{
		ID:         uuid.New(),
		TelegramID: 42,
		IsActive:   true,
		Settings:   user.DefaultSettings(),
	}
	u.Settings.Timezone = "UTC"
	u.Settings.DailyDigestTime = "00:00"
	u.Settings.MinConfidence = 0
	return u
}

func newDigestWorker(u *user.User, repos func(*mockSubRepo, *mockStrategyRepo, *mockSignalRepo), sender *mockDigestSender, locker lockManager) *DigestWorker {
	subRepo := &mockSubRepo{}
	stratRepo := &mockStrategyRepo{byID: map[uuid.UUID]*strategy.Strategy{}}
	sigRepo := &mockSignalRepo{}
	if repos != nil {
		repos(subRepo, stratRepo, sigRepo)
	}
	userRepo := &mockUserRepo{users: []*user.User{u}}

	return NewDigestWorker(
		user.NewService(userRepo),
		subscription.NewService(subRepo, userRepo),
		strategy.NewService(stratRepo),
		signal.NewService(sigRepo),
		sender,
		locker,
		time.Minute,
		true,
	)
}

func TestDigestWorker_SendsSummary(t *testing.T) {
	u := digestUser()
	st := &strategy.Strategy{ID: uuid.New(), Name: "momentum_breakout"}

	sender := &mockDigestSender{}
	worker := newDigestWorker(u, func(subRepo *mockSubRepo, stratRepo *mockStrategyRepo, sigRepo *mockSignalRepo) {
		stratRepo.byID[st.ID] = st
		subRepo.subs = []*subscription.Subscription{{
			ID:         uuid.New(),
			UserID:     u.ID,
			StrategyID: st.ID,
			IsActive:   true,
		}}
		sigRepo.signals = []*signal.Signal{{
			ID:         uuid.New(),
			StrategyID: st.ID,
			Symbol:     "600519",
			Kind:       signal.KindBuy,
			Confidence: 0.82,
			CreatedAt:  time.Now().Add(-time.Hour),
		}}
	}, sender, &stubLocker{})

	require.NoError(t, worker.Run(context.Background()))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Daily digest")
	assert.Contains(t, sender.sent[0], "600519")
	assert.Contains(t, sender.sent[0], "momentum_breakout")
	assert.Contains(t, sender.sent[0], "82%")
}

func TestDigestWorker_EmptyDigestStillSends(t *testing.T) {
	u := digestUser()
	sender := &mockDigestSender{}
	worker := newDigestWorker(u, nil, sender, &stubLocker{})

	require.NoError(t, worker.Run(context.Background()))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "No signals in the last 24 hours.")
}

func TestDigestWorker_OncePerDay(t *testing.T) {
	u := digestUser()
	sender := &mockDigestSender{}
	worker := newDigestWorker(u, nil, sender, &stubLocker{denied: true})

	require.NoError(t, worker.Run(context.Background()))

	assert.Empty(t, sender.sent)
}

func TestDigestWorker_SkipsBeforeDigestTime(t *testing.T) {
	u := digestUser()
	u.Settings.DailyDigestTime = "23:59"
	sender := &mockDigestSender{}
	worker := newDigestWorker(u, nil, sender, &stubLocker{})

	require.NoError(t, worker.Run(context.Background()))

	assert.Empty(t, sender.sent)
}

func TestDigestWorker_SkipsMutedUsers(t *testing.T) {
	u := digestUser()
	u.Settings.NotificationsOn = false
	sender := &mockDigestSender{}
	worker := newDigestWorker(u, nil, sender, &stubLocker{})

	require.NoError(t, worker.Run(context.Background()))

	assert.Empty(t, sender.sent)
}
