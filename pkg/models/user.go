package models

import "time"

// User holds the reminder preferences of an authenticated learner.
// Accounts themselves are owned by the identity provider that issues tokens.
type User struct {
	ID                  string    `json:"id" db:"id"`
	TelegramChatID      *int64    `json:"telegramChatId" db:"telegram_chat_id"`
	NotificationEnabled bool      `json:"notificationEnabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notificationHour" db:"notification_hour"` // 0-23
	WordsPerDay         int       `json:"wordsPerDay" db:"words_per_day"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
}
