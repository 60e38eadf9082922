package api

import (
	"bytes"
	"net/http"

	"github.com/example/langportal/internal/excel"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type dueQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// ListProgress handles GET /api/progress
func (h *Handler) ListProgress(c *gin.Context) {
	progress, err := h.progress.ListByUser(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, progress)
}

// DueProgress handles GET /api/progress/due
func (h *Handler) DueProgress(c *gin.Context) {
	var q dueQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}
	due, err := h.progress.GetDueForUser(c.Request.Context(), callerID(c), h.now().UTC(), q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, due)
}

// ProgressStats handles GET /api/progress/stats
func (h *Handler) ProgressStats(c *gin.Context) {
	stats, err := h.progress.GetUserStatistics(c.Request.Context(), callerID(c), h.now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats)
}

// ExportProgress handles GET /api/progress/export
func (h *Handler) ExportProgress(c *gin.Context) {
	ctx := c.Request.Context()
	progress, err := h.progress.ListByUser(ctx, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]string, 0, len(progress))
	for _, p := range progress {
		ids = append(ids, p.WordID)
	}
	words, err := h.words.GetByIDs(ctx, ids)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := excel.WriteProgress(&buf, progress, words); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="progress.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
