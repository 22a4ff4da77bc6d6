package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/domain/subscription"
	"minerva/internal/testsupport"
	"minerva/internal/testsupport/seeds"
	"minerva/pkg/errors"
)

func TestSubscriptionRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	seeder := seeds.New(testDB.Tx())
	u := seeder.User().MustInsert()
	st := seeder.Strategy().WithCreatedBy(u.ID).MustInsert()

	repo := NewSubscriptionRepository(testDB.Tx())
	ctx := context.Background()

	sub := seeds.NewSubscriptionBuilder(testDB.Tx(), ctx).
		WithUser(u.ID).
		WithStrategy(st.ID).
		WithMinConfidence(0.6).
		Build()

	err := repo.Create(ctx, sub)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, retrieved.UserID)
	assert.Equal(t, st.ID, retrieved.StrategyID)
	assert.Equal(t, 0.6, retrieved.MinConfidence)
	assert.True(t, retrieved.Channels.Has(subscription.ChannelTelegram))

	byPair, err := repo.GetByUserAndStrategy(ctx, u.ID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, byPair.ID)

	_, err = repo.GetByUserAndStrategy(ctx, u.ID, uuid.New())
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestSubscriptionRepository_ListActiveByStrategy(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	seeder := seeds.New(testDB.Tx())
	st := seeder.Strategy().WithCreatedBy(seeder.User().MustInsert().ID).MustInsert()

	active := seeder.Subscription().
		WithUser(seeder.User().MustInsert().ID).
		WithStrategy(st.ID).
		MustInsert()

	seeder.Subscription().
		WithUser(seeder.User().MustInsert().ID).
		WithStrategy(st.ID).
		WithActive(false).
		MustInsert()

	repo := NewSubscriptionRepository(testDB.Tx())
	ctx := context.Background()

	subs, err := repo.ListActiveByStrategy(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, active.ID, subs[0].ID)
}

func TestSubscriptionRepository_CountActiveByUser(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	seeder := seeds.New(testDB.Tx())
	u := seeder.User().MustInsert()

	for i := 0; i < 3; i++ {
		st := seeder.Strategy().WithCreatedBy(u.ID).MustInsert()
		seeder.Subscription().WithUser(u.ID).WithStrategy(st.ID).MustInsert()
	}

	repo := NewSubscriptionRepository(testDB.Tx())

	count, err := repo.CountActiveByUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSubscriptionRepository_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	seeder := seeds.New(testDB.Tx())
	u := seeder.User().MustInsert()
	st := seeder.Strategy().WithCreatedBy(u.ID).MustInsert()
	sub := seeder.Subscription().WithUser(u.ID).WithStrategy(st.ID).MustInsert()

	repo := NewSubscriptionRepository(testDB.Tx())
	ctx := context.Background()

	err := repo.Delete(ctx, sub.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, sub.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
