package api

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/example/langportal/internal/session"
	"github.com/example/langportal/pkg/models"
	"github.com/gin-gonic/gin"
)

type searchWordsQuery struct {
	Query string `form:"query"`
	Page  int    `form:"page,default=1" binding:"min=1"`
	Limit int    `form:"limit,default=20" binding:"min=1,max=100"`
}

type wordPage struct {
	Words      []models.Word      `json:"words"`
	Pagination session.Pagination `json:"pagination"`
}

// SearchWords handles GET /api/words/search
func (h *Handler) SearchWords(c *gin.Context) {
	var q searchWordsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	words, total, err := h.words.Search(c.Request.Context(), q.Query, q.Page, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, wordPage{
		Words: words,
		Pagination: session.Pagination{
			Total: total,
			Page:  q.Page,
			Limit: q.Limit,
			Pages: int(math.Ceil(float64(total) / float64(q.Limit))),
		},
	})
}

// GetWord handles GET /api/words/:id
func (h *Handler) GetWord(c *gin.Context) {
	word, err := h.words.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, word)
}

const (
	relatedWordsLimit = 10
	defaultDifficulty = 3
)

type createWordRequest struct {
	Text        string `json:"text" binding:"required"`
	Translation string `json:"translation" binding:"required"`
	Diacritics  string `json:"diacritics"`
	Category    string `json:"category"`
	Difficulty  int    `json:"difficulty" binding:"omitempty,min=1,max=5"`
}

type updateWordRequest struct {
	Text        *string `json:"text" binding:"omitempty,min=1"`
	Translation *string `json:"translation" binding:"omitempty,min=1"`
	Diacritics  *string `json:"diacritics"`
	Category    *string `json:"category"`
	Difficulty  *int    `json:"difficulty" binding:"omitempty,min=1,max=5"`
}

// CreateWord handles POST /api/words
func (h *Handler) CreateWord(c *gin.Context) {
	var req createWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	word := &models.Word{
		Text:        strings.TrimSpace(req.Text),
		Translation: strings.TrimSpace(req.Translation),
		Diacritics:  req.Diacritics,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
	}
	if word.Difficulty == 0 {
		word.Difficulty = defaultDifficulty
	}
	if err := h.words.Create(c.Request.Context(), word); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, word)
}

// UpdateWord handles PUT /api/words/:id
func (h *Handler) UpdateWord(c *gin.Context) {
	var req updateWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ctx := c.Request.Context()
	word, err := h.words.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Text != nil {
		word.Text = strings.TrimSpace(*req.Text)
	}
	if req.Translation != nil {
		word.Translation = strings.TrimSpace(*req.Translation)
	}
	if req.Diacritics != nil {
		word.Diacritics = *req.Diacritics
	}
	if req.Category != nil {
		word.Category = *req.Category
	}
	if req.Difficulty != nil {
		word.Difficulty = *req.Difficulty
	}
	if word.Text == "" || word.Translation == "" {
		respondError(c, fmt.Errorf("%w: text and translation must not be blank", errBadRequest))
		return
	}

	if err := h.words.Update(ctx, word); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, word)
}

// DeleteWord handles DELETE /api/words/:id
func (h *Handler) DeleteWord(c *gin.Context) {
	if err := h.words.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RelatedWords handles GET /api/words/:id/related
func (h *Handler) RelatedWords(c *gin.Context) {
	ctx := c.Request.Context()
	word, err := h.words.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	related, err := h.words.GetRelated(ctx, word, relatedWordsLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, related)
}
