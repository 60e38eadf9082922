package models

import (
	"database/sql/driver"
	"time"
)

// ReviewEntry is one review of a word
type ReviewEntry struct {
	Date         time.Time `json:"date"`
	Correct      bool      `json:"correct"`
	ResponseTime float64   `json:"responseTime"` // seconds
}

// ReviewHistory is append-only and kept in insertion order
type ReviewHistory []ReviewEntry

// Value implements driver.Valuer
func (h ReviewHistory) Value() (driver.Value, error) {
	if h == nil {
		h = ReviewHistory{}
	}
	return jsonValue([]ReviewEntry(h))
}

// Scan implements sql.Scanner
func (h *ReviewHistory) Scan(src interface{}) error {
	return scanJSON(src, (*[]ReviewEntry)(h))
}

// WordProgress tracks one user's mastery of one word.
// TimesReviewed always equals len(ReviewHistory).
type WordProgress struct {
	ID             string        `json:"id" db:"id"`
	UserID         string        `json:"userId" db:"user_id"`
	WordID         string        `json:"wordId" db:"word_id"`
	MasteryLevel   float64       `json:"masteryLevel" db:"mastery_level"` // 0-100
	TimesReviewed  int           `json:"timesReviewed" db:"times_reviewed"`
	ReviewHistory  ReviewHistory `json:"reviewHistory" db:"review_history"`
	NextReviewDate *time.Time    `json:"nextReviewDate" db:"next_review_date"`
	Version        int           `json:"-" db:"version"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// ProgressStatistics is an aggregate over a user's progress rows
type ProgressStatistics struct {
	TotalWords     int     `json:"totalWords" db:"total_words"`
	DueToday       int     `json:"dueToday" db:"due_today"`
	Mastered       int     `json:"mastered" db:"mastered"`
	AverageMastery float64 `json:"averageMastery" db:"average_mastery"`
}
