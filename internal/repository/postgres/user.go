package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"minerva/internal/domain/user"
	"minerva/pkg/errors"
)

// Compile-time check that we implement the interface
var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository using sqlx
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, telegram_id, telegram_username, first_name, last_name,
	language_code, is_active, is_premium, settings, created_at, updated_at`

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	settingsJSON, err := json.Marshal(u.Settings)
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}

	query := `
		INSERT INTO users (
			id, telegram_id, telegram_username, first_name, last_name,
			language_code, is_active, is_premium, settings, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err = r.db.ExecContext(ctx, query,
		u.ID, u.TelegramID, u.TelegramUsername, u.FirstName, u.LastName,
		u.LanguageCode, u.IsActive, u.IsPremium, settingsJSON, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *UserRepository) scanUser(row *sql.Row) (*user.User, error) {
	var u user.User
	var settingsJSON []byte

	err := row.Scan(
		&u.ID, &u.TelegramID, &u.TelegramUsername, &u.FirstName, &u.LastName,
		&u.LanguageCode, &u.IsActive, &u.IsPremium, &settingsJSON, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}

	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &u.Settings); err != nil {
			u.Settings = user.DefaultSettings()
		}
	} else {
		u.Settings = user.DefaultSettings()
	}
	return &u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByTelegramID retrieves a user by Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, telegramID))
}

// Update updates user data
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	settingsJSON, err := json.Marshal(u.Settings)
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}

	query := `
		UPDATE users SET
			telegram_username = $2,
			first_name = $3,
			last_name = $4,
			language_code = $5,
			is_active = $6,
			is_premium = $7,
			settings = $8,
			updated_at = NOW()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		u.ID, u.TelegramUsername, u.FirstName, u.LastName,
		u.LanguageCode, u.IsActive, u.IsPremium, settingsJSON,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrap(errors.ErrNotFound, "user not found")
	}
	return nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrap(errors.ErrNotFound, "user not found")
	}
	return nil
}

func (r *UserRepository) listQuery(ctx context.Context, query string, args ...interface{}) ([]*user.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		var settingsJSON []byte
		if err := rows.Scan(
			&u.ID, &u.TelegramID, &u.TelegramUsername, &u.FirstName, &u.LastName,
			&u.LanguageCode, &u.IsActive, &u.IsPremium, &settingsJSON, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if len(settingsJSON) > 0 {
			if err := json.Unmarshal(settingsJSON, &u.Settings); err != nil {
				u.Settings = user.DefaultSettings()
			}
		} else {
			u.Settings = user.DefaultSettings()
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// List retrieves users with pagination
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.listQuery(ctx, query, limit, offset)
}

// ListActive retrieves all active users
func (r *UserRepository) ListActive(ctx context.Context) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = true ORDER BY created_at`
	return r.listQuery(ctx, query)
}
