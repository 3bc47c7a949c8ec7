package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/selahstudy/academy-backend/internal/http/response"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
	"github.com/selahstudy/academy-backend/internal/services"
)

type AnalyticsHandler struct {
	log              *logger.Logger
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(baseLog *logger.Logger, analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		log:              baseLog.With("handler", "AnalyticsHandler"),
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) Overview(c *gin.Context) {
	overview, err := h.analyticsService.GetOverview(c.Request.Context())
	if err != nil {
		h.log.Error("overview failed", "error", err)
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"overview": overview})
}
