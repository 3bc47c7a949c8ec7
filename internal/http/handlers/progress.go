package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selahstudy/academy-backend/internal/http/dto"
	"github.com/selahstudy/academy-backend/internal/http/response"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
	"github.com/selahstudy/academy-backend/internal/services"
)

type ProgressHandler struct {
	log             *logger.Logger
	progressService services.ProgressService
}

func NewProgressHandler(baseLog *logger.Logger, progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:             baseLog.With("handler", "ProgressHandler"),
		progressService: progressService,
	}
}

func (h *ProgressHandler) RecordSlideView(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.SlideViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	row, err := h.progressService.RecordSlideView(c.Request.Context(), rd.UserID, lessonID, req.TimeSpentSeconds)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": row})
}

func (h *ProgressHandler) CompleteLesson(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	row, err := h.progressService.CompleteLesson(c.Request.Context(), rd.UserID, lessonID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": row})
}
