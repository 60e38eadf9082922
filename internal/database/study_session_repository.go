package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/langportal/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const sessionColumns = `id, user_id, session_data, status, performance, completed_at, created_at, updated_at`

// SessionFilter narrows a user's session listing
type SessionFilter struct {
	UserID    string
	Status    models.SessionStatus // empty means any
	StartDate *time.Time
	EndDate   *time.Time
	Page      int // 1-based
	Limit     int
}

// StudySessionRepository handles database operations for study sessions
type StudySessionRepository struct {
	db sqlx.ExtContext
}

// NewStudySessionRepository creates a repository on a DB or a transaction
func NewStudySessionRepository(db sqlx.ExtContext) *StudySessionRepository {
	return &StudySessionRepository{db: db}
}

// Create inserts a new session. ID and timestamps are filled when empty.
func (r *StudySessionRepository) Create(ctx context.Context, s *models.StudySession) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.UpdatedAt = s.CreatedAt

	query := r.db.Rebind(`
		INSERT INTO study_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.SessionData,
		s.Status,
		s.Performance,
		s.CompletedAt,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create study session: %w", err)
	}
	return nil
}

// GetByID returns a session or ErrNotFound
func (r *StudySessionRepository) GetByID(ctx context.Context, id string) (*models.StudySession, error) {
	var s models.StudySession
	query := r.db.Rebind(`SELECT ` + sessionColumns + ` FROM study_sessions WHERE id = ?`)
	err := sqlx.GetContext(ctx, r.db, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get study session: %w", err)
	}
	return &s, nil
}

// List returns one page of a user's sessions, newest first, and the total match count
func (r *StudySessionRepository) List(ctx context.Context, f SessionFilter) ([]models.StudySession, int, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{f.UserID}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.StartDate != nil {
		where = append(where, "created_at >= ?")
		args = append(args, f.StartDate.UTC())
	}
	if f.EndDate != nil {
		where = append(where, "created_at <= ?")
		args = append(args, f.EndDate.UTC())
	}
	clause := strings.Join(where, " AND ")

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM study_sessions WHERE ` + clause)
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count study sessions: %w", err)
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	sessions := []models.StudySession{}
	listQuery := r.db.Rebind(`
		SELECT ` + sessionColumns + ` FROM study_sessions
		WHERE ` + clause + `
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`)
	listArgs := append(args, limit, (page-1)*limit)
	if err := sqlx.SelectContext(ctx, r.db, &sessions, listQuery, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list study sessions: %w", err)
	}
	return sessions, total, nil
}

// Update rewrites the mutable fields of a session that is still in progress.
// Returns ErrConflict if the session already reached a terminal state.
func (r *StudySessionRepository) Update(ctx context.Context, s *models.StudySession) error {
	s.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`
		UPDATE study_sessions SET
			session_data = ?,
			performance = ?,
			updated_at = ?
		WHERE id = ? AND status = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		s.SessionData,
		s.Performance,
		s.UpdatedAt,
		s.ID,
		models.StatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("failed to update study session: %w", err)
	}
	return expectOneRow(result, ErrConflict)
}

// TransitionStatus moves a session from one status to another atomically.
// Returns ErrConflict if the session is not currently in status from.
func (r *StudySessionRepository) TransitionStatus(ctx context.Context, id string, from, to models.SessionStatus, at time.Time) error {
	var completedAt *time.Time
	if to == models.StatusCompleted {
		t := at.UTC()
		completedAt = &t
	}

	query := r.db.Rebind(`
		UPDATE study_sessions SET
			status = ?,
			completed_at = ?,
			updated_at = ?
		WHERE id = ? AND status = ?
	`)
	result, err := r.db.ExecContext(ctx, query, to, completedAt, at.UTC(), id, from)
	if err != nil {
		return fmt.Errorf("failed to change study session status: %w", err)
	}
	return expectOneRow(result, ErrConflict)
}

// Delete removes a session
func (r *StudySessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM study_sessions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete study session: %w", err)
	}
	return expectOneRow(result, ErrNotFound)
}

func expectOneRow(result sql.Result, errNone error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return errNone
	}
	return nil
}
