package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/langportal/pkg/models"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, telegram_chat_id, notification_enabled, notification_hour, words_per_day, created_at, updated_at`

// UserRepository handles database operations for user reminder settings
type UserRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, r.db, &user, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

// Upsert inserts a user or updates the settings of an existing one
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	// ON CONFLICT ... DO UPDATE is understood by both SQLite (3.24+) and PostgreSQL
	query := r.db.Rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			telegram_chat_id = EXCLUDED.telegram_chat_id,
			notification_enabled = EXCLUDED.notification_enabled,
			notification_hour = EXCLUDED.notification_hour,
			words_per_day = EXCLUDED.words_per_day,
			updated_at = EXCLUDED.updated_at
	`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.TelegramChatID,
		user.NotificationEnabled,
		user.NotificationHour,
		user.WordsPerDay,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUsersForNotification returns users that want a reminder at this hour
func (r *UserRepository) GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error) {
	users := []models.User{}
	query := r.db.Rebind(`
		SELECT ` + userColumns + ` FROM users
		WHERE notification_enabled = ? AND notification_hour = ? AND telegram_chat_id IS NOT NULL
		ORDER BY id
	`)
	if err := sqlx.SelectContext(ctx, r.db, &users, query, true, hour); err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %w", err)
	}
	return users, nil
}
