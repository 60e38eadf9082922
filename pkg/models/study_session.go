package models

import (
	"database/sql/driver"
	"time"
)

// SessionStatus is the lifecycle state of a study session
type SessionStatus string

const (
	StatusInProgress  SessionStatus = "in_progress"
	StatusCompleted   SessionStatus = "completed"
	StatusInterrupted SessionStatus = "interrupted"
)

// Valid reports whether s is one of the known statuses
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusInterrupted:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed out of s
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusInterrupted
}

// SessionData is what the learner did during a session
type SessionData struct {
	WordsStudied     []string `json:"wordsStudied"`
	CorrectAnswers   int      `json:"correctAnswers"`
	IncorrectAnswers int      `json:"incorrectAnswers"`
	Duration         int      `json:"duration"` // seconds
}

// Value implements driver.Valuer
func (d SessionData) Value() (driver.Value, error) {
	if d.WordsStudied == nil {
		d.WordsStudied = []string{}
	}
	return jsonValue(d)
}

// Scan implements sql.Scanner
func (d *SessionData) Scan(src interface{}) error {
	return scanJSON(src, d)
}

// Performance summarizes a session's outcome
type Performance struct {
	Accuracy            float64 `json:"accuracy"`
	AverageResponseTime float64 `json:"averageResponseTime"`
	MasteryLevel        float64 `json:"masteryLevel"`
}

// Value implements driver.Valuer
func (p Performance) Value() (driver.Value, error) {
	return jsonValue(p)
}

// Scan implements sql.Scanner
func (p *Performance) Scan(src interface{}) error {
	return scanJSON(src, p)
}

// StudySession is one study attempt owned by a single user
type StudySession struct {
	ID          string        `json:"id" db:"id"`
	UserID      string        `json:"userId" db:"user_id"`
	SessionData SessionData   `json:"sessionData" db:"session_data"`
	Status      SessionStatus `json:"status" db:"status"`
	Performance Performance   `json:"performance" db:"performance"`
	CompletedAt *time.Time    `json:"completedAt,omitempty" db:"completed_at"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}
