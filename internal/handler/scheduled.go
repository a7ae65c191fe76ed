package handler

import (
	"net/http"
	"time"

	"poultryops/internal/apierror"
	"poultryops/internal/service"

	"github.com/gin-gonic/gin"
)

// ScheduledHandler exposes the cron entry points over HTTP so external
// schedulers can trigger them. Guarded by the cron-secret middleware, not JWT.
type ScheduledHandler struct{ points service.PointsService }

func NewScheduledHandler(points service.PointsService) *ScheduledHandler {
	return &ScheduledHandler{points: points}
}

// MissedSettlements penalizes managers of stores with no settlement for the
// given date (default: yesterday). Idempotent, safe to re-trigger.
func (h *ScheduledHandler) MissedSettlements(c *gin.Context) {
	date := time.Now().UTC().AddDate(0, 0, -1)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid date, expected YYYY-MM-DD"))
			return
		}
		date = parsed
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	n, err := h.points.CheckMissedSettlements(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date.Format("2006-01-02"), "penalties": n})
}
