package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/domain/signal"
	"minerva/internal/testsupport"
	"minerva/internal/testsupport/seeds"
)

func TestSignalRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	seeder := seeds.New(testDB.Tx())
	u := seeder.User().MustInsert()
	st := seeder.Strategy().WithCreatedBy(u.ID).MustInsert()

	repo := NewSignalRepository(testDB.Tx())
	ctx := context.Background()

	sig := seeds.NewSignalBuilder(testDB.Tx(), ctx).
		WithStrategy(st.ID).
		WithKind(signal.KindBuy).
		WithConfidence(0.82).
		WithTier("high").
		WithPrice(decimal.NewFromFloat(1708.5)).
		WithTargets(decimal.NewFromFloat(1800), decimal.NewFromFloat(1650)).
		WithReasoning("momentum breakout", "volume confirmation").
		Build()

	err := repo.Create(ctx, sig)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(ctx, sig.ID)
	require.NoError(t, err)
	assert.Equal(t, st.ID, retrieved.StrategyID)
	assert.Equal(t, signal.KindBuy, retrieved.Kind)
	assert.Equal(t, 0.82, retrieved.Confidence)
	assert.True(t, retrieved.Price.Equal(decimal.NewFromFloat(1708.5)))
	assert.True(t, retrieved.TargetPrice.Valid)
	assert.Len(t, retrieved.Reasoning, 2)
}

func TestSignalRepository_ListWithFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	seeder := seeds.New(testDB.Tx())
	u := seeder.User().MustInsert()
	st := seeder.Strategy().WithCreatedBy(u.ID).MustInsert()

	symbol := testsupport.UniqueSymbol("TEST")

	seeder.Signal().WithStrategy(st.ID).WithSymbol(symbol).WithKind(signal.KindBuy).MustInsert()
	seeder.Signal().WithStrategy(st.ID).WithSymbol(symbol).WithKind(signal.KindSell).MustInsert()
	seeder.Signal().WithStrategy(st.ID).WithKind(signal.KindHold).MustInsert()

	repo := NewSignalRepository(testDB.Tx())
	ctx := context.Background()

	bySymbol, err := repo.List(ctx, signal.Query{Symbol: symbol})
	require.NoError(t, err)
	assert.Len(t, bySymbol, 2)

	buys, err := repo.List(ctx, signal.Query{Symbol: symbol, Kind: signal.KindBuy})
	require.NoError(t, err)
	require.Len(t, buys, 1)
	assert.Equal(t, signal.KindBuy, buys[0].Kind)

	byStrategy, err := repo.List(ctx, signal.Query{StrategyID: &st.ID})
	require.NoError(t, err)
	assert.Len(t, byStrategy, 3)
}

func TestSignalRepository_GetLatestBySymbol(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	seeder := seeds.New(testDB.Tx())
	u := seeder.User().MustInsert()
	st := seeder.Strategy().WithCreatedBy(u.ID).MustInsert()

	symbol := testsupport.UniqueSymbol("TEST")
	now := time.Now()

	seeder.Signal().WithStrategy(st.ID).WithSymbol(symbol).
		WithKind(signal.KindHold).WithCreatedAt(now.Add(-time.Hour)).MustInsert()
	latest := seeder.Signal().WithStrategy(st.ID).WithSymbol(symbol).
		WithKind(signal.KindBuy).WithCreatedAt(now).MustInsert()

	// a newer signal under another strategy must not leak in
	other := seeder.Strategy().WithCreatedBy(u.ID).MustInsert()
	seeder.Signal().WithStrategy(other.ID).WithSymbol(symbol).
		WithKind(signal.KindSell).WithCreatedAt(now.Add(time.Minute)).MustInsert()

	repo := NewSignalRepository(testDB.Tx())

	result, err := repo.GetLatestBySymbol(context.Background(), st.ID, symbol)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, result.ID)
	assert.Equal(t, signal.KindBuy, result.Kind)
}
