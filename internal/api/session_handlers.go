package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/example/langportal/internal/database"
	"github.com/example/langportal/internal/session"
	"github.com/example/langportal/pkg/models"
	"github.com/gin-gonic/gin"
)

type sessionDataRequest struct {
	WordsStudied     []string `json:"wordsStudied" binding:"omitempty,dive,required"`
	CorrectAnswers   int      `json:"correctAnswers" binding:"gte=0"`
	IncorrectAnswers int      `json:"incorrectAnswers" binding:"gte=0"`
	Duration         int      `json:"duration" binding:"gte=0"`
}

type createSessionRequest struct {
	UserID      string               `json:"userId"`
	SessionData sessionDataRequest   `json:"sessionData"`
	Status      models.SessionStatus `json:"status" binding:"omitempty,oneof=in_progress completed interrupted"`
}

type sessionDataPatchRequest struct {
	WordsStudied     []string `json:"wordsStudied" binding:"omitempty,dive,required"`
	CorrectAnswers   *int     `json:"correctAnswers" binding:"omitempty,gte=0"`
	IncorrectAnswers *int     `json:"incorrectAnswers" binding:"omitempty,gte=0"`
	Duration         *int     `json:"duration" binding:"omitempty,gte=0"`
}

type updateSessionRequest struct {
	SessionData *sessionDataPatchRequest `json:"sessionData"`
	Status      *models.SessionStatus    `json:"status" binding:"omitempty,oneof=in_progress completed interrupted"`
}

type listSessionsQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=in_progress completed interrupted"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Page      int    `form:"page,default=1" binding:"min=1"`
	Limit     int    `form:"limit,default=10" binding:"min=1,max=100"`
}

// CreateSession handles POST /api/study-sessions
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	caller := callerID(c)
	if req.UserID != "" && req.UserID != caller {
		respondError(c, errForbidden)
		return
	}

	s, err := h.sessions.Create(c.Request.Context(), session.CreateInput{
		UserID: caller,
		SessionData: models.SessionData{
			WordsStudied:     req.SessionData.WordsStudied,
			CorrectAnswers:   req.SessionData.CorrectAnswers,
			IncorrectAnswers: req.SessionData.IncorrectAnswers,
			Duration:         req.SessionData.Duration,
		},
		Status: req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, s)
}

// ListUserSessions handles GET /api/study-sessions/user/:userId
func (h *Handler) ListUserSessions(c *gin.Context) {
	userID := c.Param("userId")
	if userID != callerID(c) {
		respondError(c, errForbidden)
		return
	}

	var q listSessionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}
	filter := database.SessionFilter{
		UserID: userID,
		Status: models.SessionStatus(q.Status),
		Page:   q.Page,
		Limit:  q.Limit,
	}
	var err error
	if filter.StartDate, err = parseDate(q.StartDate, false); err != nil {
		respondError(c, err)
		return
	}
	if filter.EndDate, err = parseDate(q.EndDate, true); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.sessions.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, res)
}

// GetSession handles GET /api/study-sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	s, err := h.sessions.Get(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, s)
}

// UpdateSession handles PUT /api/study-sessions/:id
func (h *Handler) UpdateSession(c *gin.Context) {
	var req updateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	in := session.UpdateInput{Status: req.Status}
	if req.SessionData != nil {
		in.SessionData = &session.DataPatch{
			WordsStudied:     req.SessionData.WordsStudied,
			CorrectAnswers:   req.SessionData.CorrectAnswers,
			IncorrectAnswers: req.SessionData.IncorrectAnswers,
			Duration:         req.SessionData.Duration,
		}
	}

	s, err := h.sessions.Update(c.Request.Context(), callerID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, s)
}

// DeleteSession handles DELETE /api/study-sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseDate accepts RFC 3339 or a plain date. A plain end date covers the whole day.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", errBadRequest, s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
