package api

import (
	"context"
	"time"

	"github.com/example/langportal/internal/database"
	"github.com/example/langportal/internal/session"
	"github.com/jmoiron/sqlx"
)

// ReminderSender sends an on-demand review reminder
type ReminderSender interface {
	RunManualCheck(ctx context.Context, userID string) (bool, error)
}

// Handler serves the study portal API
type Handler struct {
	sessions  *session.Service
	progress  *database.WordProgressRepository
	words     *database.WordRepository
	users     *database.UserRepository
	reminders ReminderSender
	now       func() time.Time
}

// NewHandler wires the handlers to db. reminders may be nil, which disables
// on-demand reminders; a nil clock means time.Now.
func NewHandler(db *sqlx.DB, sessions *session.Service, reminders ReminderSender, clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		sessions:  sessions,
		progress:  database.NewWordProgressRepository(db),
		words:     database.NewWordRepository(db),
		users:     database.NewUserRepository(db),
		reminders: reminders,
		now:       clock,
	}
}
