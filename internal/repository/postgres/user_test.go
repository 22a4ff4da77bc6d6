package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/domain/user"
	"minerva/internal/testsupport"
	"minerva/pkg/errors"
)

func newTestUser() *user.User {
	now := time.Now()
	return &user.User{
		ID:               uuid.New(),
		TelegramID:       testsupport.UniqueTelegramID(),
		TelegramUsername: testsupport.UniqueUsername(),
		FirstName:        "Test",
		LastName:         "User",
		LanguageCode:     "en",
		IsActive:         true,
		IsPremium:        false,
		Settings:         user.DefaultSettings(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestUserRepository_Create(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewUserRepository(testDB.Tx())
	ctx := context.Background()

	u := newTestUser()

	err := repo.Create(ctx, u)
	require.NoError(t, err, "Create should not return error")

	retrieved, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.TelegramID, retrieved.TelegramID)
	assert.Equal(t, u.TelegramUsername, retrieved.TelegramUsername)
	assert.Equal(t, u.FirstName, retrieved.FirstName)
	assert.Equal(t, u.Settings.MinConfidence, retrieved.Settings.MinConfidence)
}

func TestUserRepository_GetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewUserRepository(testDB.Tx())
	ctx := context.Background()

	u := newTestUser()
	u.IsPremium = true

	err := repo.Create(ctx, u)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, retrieved.ID)
	assert.Equal(t, u.TelegramID, retrieved.TelegramID)
	assert.True(t, retrieved.IsPremium)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.Error(t, err, "Should return error for non-existent ID")
	assert.ErrorIs(t, err, errors.ErrNotFound, "Should return ErrNotFound for non-existent ID")
}

func TestUserRepository_GetByTelegramID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewUserRepository(testDB.Tx())
	ctx := context.Background()

	u := newTestUser()
	u.LanguageCode = "zh"

	err := repo.Create(ctx, u)
	require.NoError(t, err)

	retrieved, err := repo.GetByTelegramID(ctx, u.TelegramID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, retrieved.ID)
	assert.Equal(t, u.TelegramID, retrieved.TelegramID)
	assert.Equal(t, "zh", retrieved.LanguageCode)

	// ErrNotFound drives get-or-create during registration
	_, err = repo.GetByTelegramID(ctx, 999999999)
	assert.Error(t, err, "Should return error for non-existent Telegram ID")
	assert.ErrorIs(t, err, errors.ErrNotFound, "Should return ErrNotFound for non-existent Telegram ID")
}

func TestUserRepository_Update(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewUserRepository(testDB.Tx())
	ctx := context.Background()

	u := newTestUser()

	err := repo.Create(ctx, u)
	require.NoError(t, err)

	u.FirstName = "Updated"
	u.LastName = "Name"
	u.TelegramUsername = "updated_username"
	u.IsPremium = true
	u.Settings.MinConfidence = 0.75
	u.Settings.MaxSubscriptions = 20

	err = repo.Update(ctx, u)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", retrieved.FirstName)
	assert.Equal(t, "Name", retrieved.LastName)
	assert.Equal(t, "updated_username", retrieved.TelegramUsername)
	assert.True(t, retrieved.IsPremium)
	assert.Equal(t, 0.75, retrieved.Settings.MinConfidence)
	assert.Equal(t, 20, retrieved.Settings.MaxSubscriptions)
}

func TestUserRepository_List(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewUserRepository(testDB.Tx())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		u := newTestUser()
		u.IsPremium = i%2 == 0
		err := repo.Create(ctx, u)
		require.NoError(t, err)
	}

	users, err := repo.List(ctx, 3, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(users), 3, "Should respect limit")

	users2, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(users2), 2, "Should respect limit with offset")
}

func TestUserRepository_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewUserRepository(testDB.Tx())
	ctx := context.Background()

	u := newTestUser()

	err := repo.Create(ctx, u)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)

	err = repo.Delete(ctx, u.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, u.ID)
	assert.Error(t, err, "Should return error after deletion")
	assert.ErrorIs(t, err, errors.ErrNotFound, "Should return ErrNotFound after deletion")
}

func TestUserRepository_SettingsJSONB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewUserRepository(testDB.Tx())
	ctx := context.Background()

	customSettings := user.Settings{
		NotificationsOn:  false,
		Channels:         []string{"telegram", "websocket"},
		MinConfidence:    0.8,
		QuietHoursStart:  "23:00",
		QuietHoursEnd:    "07:00",
		Timezone:         "America/New_York",
		DailyDigestTime:  "18:00",
		MaxSubscriptions: 25,
	}

	u := newTestUser()
	u.Settings = customSettings

	err := repo.Create(ctx, u)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)

	assert.False(t, retrieved.Settings.NotificationsOn)
	assert.Equal(t, 0.8, retrieved.Settings.MinConfidence)
	assert.Equal(t, "23:00", retrieved.Settings.QuietHoursStart)
	assert.Equal(t, "America/New_York", retrieved.Settings.Timezone)
	assert.Equal(t, 25, retrieved.Settings.MaxSubscriptions)
	assert.Len(t, retrieved.Settings.Channels, 2)
	assert.Contains(t, retrieved.Settings.Channels, "websocket")
}
