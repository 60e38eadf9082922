package models

import "time"

// Word is a vocabulary entry
type Word struct {
	ID          string    `json:"id" db:"id"`
	Text        string    `json:"text" db:"text"`
	Translation string    `json:"translation" db:"translation"`
	Diacritics  string    `json:"diacritics,omitempty" db:"diacritics"`
	Category    string    `json:"category,omitempty" db:"category"`
	Difficulty  int       `json:"difficulty" db:"difficulty"` // 1-5 scale
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
