package api

import (
	"errors"
	"net/http"

	"github.com/example/langportal/internal/database"
	"github.com/example/langportal/pkg/models"
	"github.com/gin-gonic/gin"
)

// Reminder settings for users that never saved any
const (
	defaultNotificationHour = 9
	defaultWordsPerDay      = 10
)

type notificationRequest struct {
	TelegramChatID      *int64 `json:"telegramChatId"`
	NotificationEnabled *bool  `json:"notificationEnabled"`
	NotificationHour    *int   `json:"notificationHour" binding:"omitempty,min=0,max=23"`
	WordsPerDay         *int   `json:"wordsPerDay" binding:"omitempty,min=1,max=100"`
}

// GetCurrentUser handles GET /api/users/me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := h.loadUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}

// UpdateNotifications handles PUT /api/users/me/notifications
func (h *Handler) UpdateNotifications(c *gin.Context) {
	var req notificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	user, err := h.loadUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.TelegramChatID != nil {
		user.TelegramChatID = req.TelegramChatID
	}
	if req.NotificationEnabled != nil {
		user.NotificationEnabled = *req.NotificationEnabled
	}
	if req.NotificationHour != nil {
		user.NotificationHour = *req.NotificationHour
	}
	if req.WordsPerDay != nil {
		user.WordsPerDay = *req.WordsPerDay
	}

	if err := h.users.Upsert(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}

// SendReminder handles POST /api/users/me/reminder
func (h *Handler) SendReminder(c *gin.Context) {
	if h.reminders == nil {
		abortWithMessage(c, http.StatusServiceUnavailable, "reminders are not available")
		return
	}
	sent, err := h.reminders.RunManualCheck(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"sent": sent})
}

// loadUser returns the caller's settings, or defaults when none are stored
func (h *Handler) loadUser(c *gin.Context) (*models.User, error) {
	id := callerID(c)
	user, err := h.users.GetByID(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		return &models.User{
			ID:                  id,
			NotificationEnabled: true,
			NotificationHour:    defaultNotificationHour,
			WordsPerDay:         defaultWordsPerDay,
		}, nil
	}
	return user, err
}
