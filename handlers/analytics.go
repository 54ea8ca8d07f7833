package handlers

import (
	"net/http"

	"repairdesk/models"
	"repairdesk/services/analytics"
	"repairdesk/utils"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	Analytics analytics.AnalyticsService
}

func NewAnalyticsHandler(as analytics.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Analytics: as}
}

// ShopAnalyticsHandler reports on the calling shop. Missing timeRange means all time.
func (h *AnalyticsHandler) ShopAnalyticsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	r := models.TimeRange(c.Query("timeRange"))
	if r != "" && !r.Valid() {
		utils.JSONError(c, http.StatusBadRequest, "Invalid timeRange", "expected week, month or all")
		return
	}

	report, err := h.Analytics.ShopAnalytics(c.Request.Context(), actor.ID, r)
	if err != nil {
		respondError(c, "Failed to compute analytics", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
