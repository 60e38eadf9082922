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

const wordColumns = `id, text, translation, diacritics, category, difficulty, created_at, updated_at`

// WordRepository handles database operations for words
type WordRepository struct {
	db sqlx.ExtContext
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db sqlx.ExtContext) *WordRepository {
	return &WordRepository{db: db}
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id string) (*models.Word, error) {
	var word models.Word
	err := sqlx.GetContext(ctx, r.db, &word, r.db.Rebind(`SELECT `+wordColumns+` FROM words WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %w", err)
	}
	return &word, nil
}

// GetByText returns the word with exactly this text, or nil
func (r *WordRepository) GetByText(ctx context.Context, text string) (*models.Word, error) {
	var word models.Word
	err := sqlx.GetContext(ctx, r.db, &word, r.db.Rebind(`SELECT `+wordColumns+` FROM words WHERE text = ?`), text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word by text: %w", err)
	}
	return &word, nil
}

// GetByIDs returns the words that exist among ids, keyed by ID
func (r *WordRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Word, error) {
	result := make(map[string]models.Word, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT `+wordColumns+` FROM words WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build word query: %w", err)
	}
	var words []models.Word
	if err := sqlx.SelectContext(ctx, r.db, &words, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get words: %w", err)
	}
	for _, w := range words {
		result[w.ID] = w
	}
	return result, nil
}

// Create inserts a new word. Returns ErrConflict if the text already exists.
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if word.ID == "" {
		word.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	word.CreatedAt, word.UpdatedAt = now, now

	query := r.db.Rebind(`
		INSERT INTO words (` + wordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		word.ID,
		word.Text,
		word.Translation,
		word.Diacritics,
		word.Category,
		word.Difficulty,
		word.CreatedAt,
		word.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	return nil
}

// Update modifies an existing word. Returns ErrConflict if the new text is
// taken by another word.
func (r *WordRepository) Update(ctx context.Context, word *models.Word) error {
	word.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`
		UPDATE words SET
			text = ?,
			translation = ?,
			diacritics = ?,
			category = ?,
			difficulty = ?,
			updated_at = ?
		WHERE id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		word.Text,
		word.Translation,
		word.Diacritics,
		word.Category,
		word.Difficulty,
		word.UpdatedAt,
		word.ID,
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update word: %w", err)
	}
	return expectOneRow(result, ErrNotFound)
}

// Delete removes a word
func (r *WordRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM words WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return expectOneRow(result, ErrNotFound)
}

// GetRelated returns up to limit other words of the same category
func (r *WordRepository) GetRelated(ctx context.Context, word *models.Word, limit int) ([]models.Word, error) {
	related := []models.Word{}
	if word.Category == "" {
		return related, nil
	}
	if limit < 1 {
		limit = 10
	}
	query := r.db.Rebind(`
		SELECT ` + wordColumns + ` FROM words
		WHERE category = ? AND id <> ?
		ORDER BY text
		LIMIT ?
	`)
	if err := sqlx.SelectContext(ctx, r.db, &related, query, word.Category, word.ID, limit); err != nil {
		return nil, fmt.Errorf("failed to get related words: %w", err)
	}
	return related, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search finds words whose text or translation contains query, case-insensitively
func (r *WordRepository) Search(ctx context.Context, query string, page, limit int) ([]models.Word, int, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	where := `WHERE LOWER(text) LIKE ? ESCAPE '\' OR LOWER(translation) LIKE ? ESCAPE '\'`

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, r.db.Rebind(`SELECT COUNT(*) FROM words `+where), pattern, pattern); err != nil {
		return nil, 0, fmt.Errorf("failed to count words: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	words := []models.Word{}
	sqlQuery := r.db.Rebind(`SELECT ` + wordColumns + ` FROM words ` + where + ` ORDER BY text LIMIT ? OFFSET ?`)
	if err := sqlx.SelectContext(ctx, r.db, &words, sqlQuery, pattern, pattern, limit, (page-1)*limit); err != nil {
		return nil, 0, fmt.Errorf("failed to search words: %w", err)
	}
	return words, total, nil
}
