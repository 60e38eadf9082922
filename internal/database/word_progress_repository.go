package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/langportal/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const progressColumns = `id, user_id, word_id, mastery_level, times_reviewed, review_history,
	next_review_date, version, created_at, updated_at`

// MasteredThreshold is the mastery level from which a word counts as mastered
const MasteredThreshold = 80

// WordProgressRepository handles database operations for word progress
type WordProgressRepository struct {
	db sqlx.ExtContext
}

// NewWordProgressRepository creates a repository on a DB or a transaction
func NewWordProgressRepository(db sqlx.ExtContext) *WordProgressRepository {
	return &WordProgressRepository{db: db}
}

// GetByUserAndWord returns progress for a specific user and word, or nil if the
// pair has never been reviewed
func (r *WordProgressRepository) GetByUserAndWord(ctx context.Context, userID, wordID string) (*models.WordProgress, error) {
	var progress models.WordProgress
	query := r.db.Rebind(`SELECT ` + progressColumns + ` FROM word_progress WHERE user_id = ? AND word_id = ?`)
	err := sqlx.GetContext(ctx, r.db, &progress, query, userID, wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word progress: %w", err)
	}
	return &progress, nil
}

// Create inserts a new progress record. Returns ErrConflict if the
// (user, word) pair already has one.
func (r *WordProgressRepository) Create(ctx context.Context, p *models.WordProgress) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Version = 1

	query := r.db.Rebind(`
		INSERT INTO word_progress (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.WordID,
		p.MasteryLevel,
		p.TimesReviewed,
		p.ReviewHistory,
		p.NextReviewDate,
		p.Version,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		// another transaction created the row first
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create word progress: %w", err)
	}
	return nil
}

// Update writes a progress record back if nobody changed it since it was read.
// Returns ErrConflict when the stored version moved on.
func (r *WordProgressRepository) Update(ctx context.Context, p *models.WordProgress) error {
	updatedAt := time.Now().UTC()
	query := r.db.Rebind(`
		UPDATE word_progress SET
			mastery_level = ?,
			times_reviewed = ?,
			review_history = ?,
			next_review_date = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ? AND version = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		p.MasteryLevel,
		p.TimesReviewed,
		p.ReviewHistory,
		p.NextReviewDate,
		updatedAt,
		p.ID,
		p.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update word progress: %w", err)
	}
	if err := expectOneRow(result, ErrConflict); err != nil {
		return err
	}
	p.Version++
	p.UpdatedAt = updatedAt
	return nil
}

// ListByUser returns all of a user's progress rows, weakest first
func (r *WordProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.WordProgress, error) {
	progress := []models.WordProgress{}
	query := r.db.Rebind(`
		SELECT ` + progressColumns + ` FROM word_progress
		WHERE user_id = ?
		ORDER BY mastery_level ASC, word_id
	`)
	if err := sqlx.SelectContext(ctx, r.db, &progress, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list word progress: %w", err)
	}
	return progress, nil
}

// GetDueForUser returns words due for review at now, most overdue first.
// A limit <= 0 returns every due row.
func (r *WordProgressRepository) GetDueForUser(ctx context.Context, userID string, now time.Time, limit int) ([]models.WordProgress, error) {
	progress := []models.WordProgress{}
	query := `
		SELECT ` + progressColumns + ` FROM word_progress
		WHERE user_id = ? AND next_review_date IS NOT NULL AND next_review_date <= ?
		ORDER BY next_review_date ASC, word_id
	`
	args := []interface{}{userID, now.UTC()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	if err := sqlx.SelectContext(ctx, r.db, &progress, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get due words: %w", err)
	}
	return progress, nil
}

// CountDueForUser counts words due for review at now
func (r *WordProgressRepository) CountDueForUser(ctx context.Context, userID string, now time.Time) (int, error) {
	var count int
	query := r.db.Rebind(`
		SELECT COUNT(*) FROM word_progress
		WHERE user_id = ? AND next_review_date IS NOT NULL AND next_review_date <= ?
	`)
	if err := sqlx.GetContext(ctx, r.db, &count, query, userID, now.UTC()); err != nil {
		return 0, fmt.Errorf("failed to count due words: %w", err)
	}
	return count, nil
}

// GetUserStatistics returns statistics about a user's progress.
// "Due today" means due within the next 24 hours of now.
func (r *WordProgressRepository) GetUserStatistics(ctx context.Context, userID string, now time.Time) (*models.ProgressStatistics, error) {
	var stats models.ProgressStatistics
	query := r.db.Rebind(`
		SELECT
			COUNT(*) AS total_words,
			COALESCE(SUM(CASE WHEN next_review_date IS NOT NULL AND next_review_date <= ? THEN 1 ELSE 0 END), 0) AS due_today,
			COALESCE(SUM(CASE WHEN mastery_level >= ? THEN 1 ELSE 0 END), 0) AS mastered,
			COALESCE(AVG(mastery_level), 0) AS average_mastery
		FROM word_progress
		WHERE user_id = ?
	`)
	err := sqlx.GetContext(ctx, r.db, &stats, query, now.UTC().Add(24*time.Hour), MasteredThreshold, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress statistics: %w", err)
	}
	return &stats, nil
}
